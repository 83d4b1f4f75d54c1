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
	searchTopK   int
	searchSource string
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 5, "Maximum number of results")
	searchCmd.Flags().StringVarP(&searchSource, "source", "s", "", "Restrict results to one source document")
}

// SearchResult is one retrieved chunk in search output.
type SearchResult struct {
	Source  string  `json:"source"`
	Page    int     `json:"page"`
	ChunkID int     `json:"chunk_id"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// SearchResponse is the response for the search command.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find the chunks most similar to a query",
	Long: `Rank indexed chunks by embedding similarity to the query, without
running answer extraction. Useful for inspecting what 'dq ask' would
see as context.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := strings.TrimSpace(args[0])
	if query == "" {
		exitWithError(ExitError, "search query cannot be empty")
	}

	svc, _, cleanup := buildService(ctx)
	defer cleanup()

	candidates, err := svc.Search(ctx, query, searchTopK, searchSource)
	if err != nil {
		if errors.Is(err, retrieval.ErrIndexNotReady) {
			exitWithError(ExitNotReady, "no documents indexed yet\n\nRun 'dq ingest <file.pdf>' first.")
		}
		exitWithError(ExitError, "searching: %v", err)
	}

	results := make([]SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = SearchResult{
			Source:  c.Chunk.Source,
			Page:    c.Chunk.Page,
			ChunkID: c.Chunk.ChunkID,
			Text:    c.Chunk.Text,
			Score:   c.Score,
		}
	}

	if humanOutput {
		fmt.Printf("Search: %q\n\n", query)
		for i, r := range results {
			fmt.Printf("%d. [%.2f] %s p.%d chunk %d\n   %s\n\n",
				i+1, r.Score, r.Source, r.Page, r.ChunkID, truncateString(r.Text, TextPreviewMaxLen))
		}
	} else {
		outputJSON(SearchResponse{Query: query, Results: results, Total: len(results)})
	}

	return nil
}
