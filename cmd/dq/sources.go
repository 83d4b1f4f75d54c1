package main

import (
	"context"
	"fmt"

	"github.com/docquery/docquery/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

// SourcesResponse is the response for the sources command.
type SourcesResponse struct {
	Sources []store.SourceCount `json:"sources"`
	Total   int                 `json:"total"`
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List indexed documents and their chunk counts",
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

func runSources(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, _, cleanup := buildService(ctx)
	defer cleanup()

	sources, err := svc.Sources()
	if err != nil {
		exitWithError(ExitError, "listing sources: %v", err)
	}

	if humanOutput {
		if len(sources) == 0 {
			fmt.Println("No documents indexed.")
		}
		for _, s := range sources {
			fmt.Printf("%s: %d chunks\n", s.Source, s.Count)
		}
	} else {
		if sources == nil {
			sources = []store.SourceCount{}
		}
		outputJSON(SourcesResponse{Sources: sources, Total: len(sources)})
	}

	return nil
}
