package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docquery/docquery/internal/retrieval"
	"github.com/spf13/cobra"
)

var (
	askTopK   int
	askSource string
)

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", retrieval.DefaultTopK, "Number of chunks considered for the answer")
	askCmd.Flags().StringVarP(&askSource, "source", "s", "", "Restrict the answer to one source document")
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieve the chunks most similar to the question and select the text
span most likely to answer it.

The answer is always a verbatim span of an indexed chunk. When no
candidate reaches the configured confidence floor, the answer is empty
and no confidence is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := strings.TrimSpace(args[0])
	if question == "" {
		exitWithError(ExitError, "question cannot be empty")
	}

	svc, _, cleanup := buildService(ctx)
	defer cleanup()

	result, err := svc.Answer(ctx, question, askTopK, askSource)
	if err != nil {
		if errors.Is(err, retrieval.ErrIndexNotReady) {
			exitWithError(ExitNotReady, "no documents indexed yet\n\nRun 'dq ingest <file.pdf>' first.")
		}
		exitWithError(ExitError, "answering question: %v", err)
	}

	if humanOutput {
		if result.Answer == "" {
			fmt.Println("No adequate answer found.")
		} else {
			fmt.Printf("%s\n\nconfidence: %.2f\n", result.Answer, *result.Confidence)
		}
		for i, s := range result.Sources {
			fmt.Printf("\n%d. [%.2f] %s p.%d chunk %d\n   %s\n",
				i+1, s.Score, s.Source, s.Page, s.ChunkID, truncateString(s.Text, TextPreviewMaxLen))
		}
	} else {
		outputJSON(result)
	}

	return nil
}
