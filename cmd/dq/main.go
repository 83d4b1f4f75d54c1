// Package main provides the dq CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dq",
	Short: "Ask questions of your PDF documents",
	Long: `dq indexes PDF documents into a local vector store and answers
free-text questions from their content.

Answers are extractive: dq retrieves the most similar text chunks,
selects the span most likely to answer the question, and reports the
source document, page, and chunk together with a confidence score.
All commands output JSON by default for easy scripting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
