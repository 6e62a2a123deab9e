package extract

import (
	"context"
	"path/filepath"
	"strings"
)

// Format is the document family chosen from the file extension.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatWord Format = "word"
	FormatText Format = "text"
)

// Document is an uploaded file after extraction. Text is the normalized output.
type Document struct {
	Raw    []byte
	Format Format
	Text   string
}

// FormatFromName maps a file name to a Format. Content is never sniffed.
func FormatFromName(fileName string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(fileName)))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx", ".doc":
		return FormatWord, nil
	case ".txt":
		return FormatText, nil
	default:
		return "", unsupported(fileName, ext)
	}
}

// ExtractText extracts and normalizes the text of an in-memory file.
func ExtractText(ctx context.Context, fileName string, data []byte) (string, error) {
	doc, err := ExtractDocument(ctx, fileName, data)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}

// ExtractDocument extracts an in-memory file into a Document.
// Libraries used: github.com/ledongthuc/pdf (PDF) and github.com/nguyenthenguyen/docx (DOCX).
func ExtractDocument(ctx context.Context, fileName string, data []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	format, err := FormatFromName(fileName)
	if err != nil {
		return Document{}, err
	}

	var raw string
	switch format {
	case FormatPDF:
		raw, err = extractPDF(data)
	case FormatWord:
		raw, err = extractDOCX(data)
	case FormatText:
		raw, err = extractPlain(data)
	}
	if err != nil {
		return Document{}, decodeFailure(fileName, err)
	}

	return Document{
		Raw:    data,
		Format: format,
		Text:   Normalize(raw),
	}, nil
}
