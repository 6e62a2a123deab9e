// Package main is the nextcv command line: document extraction, prompt
// preview and resume or career analyses against the configured provider.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"nextcv/internal/analyses"
	"nextcv/internal/shared/telemetry"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()
	// Keep stdout for command output.
	telemetry.SetOutput(os.Stderr)

	if err := newRootCmd().Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints the user message for typed failures and the raw error
// for everything else, such as flag mistakes.
func reportError(w io.Writer, err error) {
	msg := analyses.Describe(err)
	if msg.Category == analyses.ErrorCodeInternal {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", msg.Text)
	if verbose {
		fmt.Fprintf(w, "  (%s: %s)\n", msg.Category, msg.Diagnostic)
	}
}
