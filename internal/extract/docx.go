package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	body := doc.Editable().GetContent()
	if strings.TrimSpace(body) == "" {
		return "", errors.New("document.xml is empty")
	}
	return docxParagraphs(body)
}

// docxParagraphs walks WordprocessingML and returns one trimmed paragraph per
// block, blocks separated by a blank line. Empty paragraphs are dropped.
func docxParagraphs(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
	)
	flush := func() {
		if p := strings.TrimSpace(current.String()); p != "" {
			paragraphs = append(paragraphs, p)
		}
		current.Reset()
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = true
			case "tab":
				if inPara {
					current.WriteString("\t")
				}
			case "br", "cr":
				if inPara {
					current.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
				inPara = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return strings.Join(paragraphs, "\n\n"), nil
}
