package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index record counts",
	Long: `Report the number of vectors in the index and the number of chunk
metadata records. The two counts are equal in a healthy index; a
mismatch means the persisted state is corrupt.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, _, cleanup := buildService(ctx)
	defer cleanup()

	stats, err := svc.Stats()
	if err != nil {
		exitWithError(ExitError, "reading stats: %v", err)
	}

	if stats.VectorCount != stats.MetadataCount {
		outputWarning("vector count %d != metadata count %d: index is corrupt", stats.VectorCount, stats.MetadataCount)
	}

	if humanOutput {
		fmt.Printf("vectors:  %d\nmetadata: %d\n", stats.VectorCount, stats.MetadataCount)
	} else {
		outputJSON(stats)
	}

	return nil
}
