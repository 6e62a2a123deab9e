package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nextcv/internal/extract"
)

func newExtractCmd() *cobra.Command {
	var textOnly bool
	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Extract normalized text from a PDF, DOCX or TXT resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			doc, err := extract.ExtractDocument(cmd.Context(), filepath.Base(path), data)
			if err != nil {
				return err
			}
			if textOnly {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), doc.Text)
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"fileName": filepath.Base(path),
				"format":   doc.Format,
				"text":     doc.Text,
			})
		},
	}
	cmd.Flags().BoolVar(&textOnly, "text", false, "Print only the extracted text")
	return cmd
}

// readResumeFile extracts resume text from path, or returns "" for an empty path.
func readResumeFile(cmd *cobra.Command, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read resume: %w", err)
	}
	return extract.ExtractText(cmd.Context(), filepath.Base(path), data)
}

// readTextFile reads a job description. Supported document formats are
// extracted; anything else is read as plain text.
func readTextFile(cmd *cobra.Command, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if _, ferr := extract.FormatFromName(path); ferr == nil {
		return extract.ExtractText(cmd.Context(), filepath.Base(path), data)
	}
	return string(data), nil
}
