package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docquery/docquery/internal/chunker"
	"github.com/docquery/docquery/internal/pdf"
	"github.com/docquery/docquery/internal/store"
	"github.com/spf13/cobra"
)

var ingestSource string

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVarP(&ingestSource, "source", "s", "", "Source name to index under (default: file name)")
}

// IngestResponse is the response for the ingest command.
type IngestResponse struct {
	Source    string `json:"source"`
	NumChunks int    `json:"num_chunks"`
	Pages     int    `json:"pages"`
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>",
	Short: "Index a PDF document for question answering",
	Long: `Extract text from a PDF, split it into overlapping chunks, embed the
chunks, and append them to the local index.

Ingesting the same document twice accumulates duplicate chunks; run
'dq clear' first to start over.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]

	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		exitWithError(ExitDataError, "only PDF files are accepted, got %q", filepath.Base(path))
	}

	source := ingestSource
	if source == "" {
		source = filepath.Base(path)
	}

	pages, err := pdf.ExtractPages(path)
	if err != nil {
		exitWithError(ExitDataError, "extracting text: %v", err)
	}

	svc, _, cleanup := buildService(ctx)
	defer cleanup()

	numChunks, err := svc.Ingest(ctx, source, pages)
	if err != nil {
		if errors.Is(err, chunker.ErrNoChunks) {
			exitWithError(ExitDataError, "no text found in %s", filepath.Base(path))
		}
		if errors.Is(err, store.ErrPersist) {
			// The document is indexed in memory; only the disk write failed.
			outputWarning("%v", err)
		} else {
			exitWithError(ExitError, "ingesting document: %v", err)
		}
	}

	if humanOutput {
		fmt.Printf("Indexed %s: %d chunks from %d pages\n", source, numChunks, len(pages))
	} else {
		outputJSON(IngestResponse{Source: source, NumChunks: numChunks, Pages: len(pages)})
	}

	return nil
}
