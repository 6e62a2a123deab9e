package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"word/document.xml":            document,
		"word/_rels/document.xml.rels": docxRels,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// buildPDF writes a minimal uncompressed PDF with one text line per page.
func buildPDF(pages ...string) []byte {
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")
	kids := make([]string, 0, len(pages))
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+i*2))
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+i*2))
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestFormatFromName(t *testing.T) {
	cases := map[string]Format{
		"cv.pdf":        FormatPDF,
		"CV.PDF":        FormatPDF,
		"resume.docx":   FormatWord,
		"resume.doc":    FormatWord,
		"notes.txt":     FormatText,
		" spaced.Txt  ": FormatText,
	}
	for name, want := range cases {
		got, err := FormatFromName(name)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", name, err)
		}
		if got != want {
			t.Fatalf("%q: expected %s, got %s", name, want, got)
		}
	}
}

func TestExtractText_UnsupportedExtension(t *testing.T) {
	for _, name := range []string{"photo.png", "archive.zip", "README", "resume.pdf.exe"} {
		_, err := ExtractText(context.Background(), name, []byte("whatever"))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("%q: expected ErrUnsupportedFormat, got %v", name, err)
		}
		var extractErr *Error
		if !errors.As(err, &extractErr) || extractErr.FileName != name {
			t.Fatalf("%q: expected *Error carrying the file name, got %#v", name, err)
		}
	}
}

func TestExtractText_PlainTextYearBreak(t *testing.T) {
	data := []byte("Experience\n\n2020\n2022\nSoftware Engineer")
	got, err := ExtractText(context.Background(), "resume.txt", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Experience\n\n2020 - 2022\nSoftware Engineer" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractText_PlainTextStripsBOM(t *testing.T) {
	got, err := ExtractText(context.Background(), "resume.txt", []byte("\ufeffJane Doe\r\nbackend developer"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Jane Doe\nbackend developer" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractText_PlainTextInvalidUTF8(t *testing.T) {
	_, err := ExtractText(context.Background(), "resume.txt", []byte{0xff, 0xfe, 0x00, 'a'})
	if !errors.Is(err, ErrDecodeFailure) {
		t.Fatalf("expected ErrDecodeFailure, got %v", err)
	}
}

func TestExtractDocument_KeepsRawAndFormat(t *testing.T) {
	data := []byte("hello")
	doc, err := ExtractDocument(context.Background(), "a.txt", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Format != FormatText || !bytes.Equal(doc.Raw, data) || doc.Text != "hello" {
		t.Fatalf("unexpected document: %#v", doc)
	}
}

func TestExtractText_Docx(t *testing.T) {
	body := `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p></w:p>` +
		`<w:p><w:r><w:t>EXPERIENCE</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">Acme </w:t></w:r><w:r><w:t>Corp</w:t></w:r><w:r><w:tab/><w:t>2019-2021</w:t></w:r></w:p>`
	got, err := ExtractText(context.Background(), "resume.docx", buildDocx(t, body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Jane Doe\n\nEXPERIENCE\n\nAcme Corp\t2019 - 2021"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExtractText_DocxNotAZip(t *testing.T) {
	_, err := ExtractText(context.Background(), "resume.doc", []byte("\xd0\xcf\x11\xe0legacy word"))
	if !errors.Is(err, ErrDecodeFailure) {
		t.Fatalf("expected ErrDecodeFailure, got %v", err)
	}
}

func TestExtractText_DocxEmpty(t *testing.T) {
	_, err := ExtractText(context.Background(), "resume.docx", nil)
	if !errors.Is(err, ErrDecodeFailure) {
		t.Fatalf("expected ErrDecodeFailure, got %v", err)
	}
}

func TestExtractText_PDFPagesInOrder(t *testing.T) {
	got, err := ExtractText(context.Background(), "resume.pdf", buildPDF("FirstPage", "SecondPage"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, second := strings.Index(got, "FirstPage"), strings.Index(got, "SecondPage")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected both pages in order, got %q", got)
	}
}

func TestExtractText_CorruptPDF(t *testing.T) {
	_, err := ExtractText(context.Background(), "resume.pdf", []byte("%PDF-1.4\nthis is not a pdf"))
	if !errors.Is(err, ErrDecodeFailure) {
		t.Fatalf("expected ErrDecodeFailure, got %v", err)
	}
}

func TestExtractText_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ExtractText(ctx, "resume.txt", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
