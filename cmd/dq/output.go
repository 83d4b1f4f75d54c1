package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// TextPreviewMaxLen caps chunk text shown in human-readable output.
const TextPreviewMaxLen = 160

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputWarning writes a warning to stderr without affecting the exit
// code.
func outputWarning(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// exitWithError outputs an error in the appropriate format (human or
// JSON) and exits with the given code.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		enc := json.NewEncoder(os.Stderr)
		enc.Encode(map[string]string{"error": msg})
	}
	os.Exit(code)
}

// truncateString shortens s to at most max characters, appending an
// ellipsis when truncated.
func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
