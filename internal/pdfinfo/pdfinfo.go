// Package pdfinfo introspects PDF files: page count and per-page plain text.
// Page text feeds token estimation; the page count is authoritative for chunk
// planning.
package pdfinfo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrNotPDF is returned when a file does not carry the PDF magic bytes.
var ErrNotPDF = errors.New("not a PDF file")

// pdfMagic is the file signature every PDF starts with.
var pdfMagic = []byte("%PDF-")

// Document holds the introspection result for one PDF.
type Document struct {
	Path      string
	PageCount int

	// PageText holds the extracted plain text per page, zero-indexed.
	// A page whose text could not be extracted has an empty entry; that is
	// a zero-token page, not an error.
	PageText []string
}

// ValidateMagic checks the PDF file signature without parsing the file.
func ValidateMagic(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		return fmt.Errorf("%w: %s", ErrNotPDF, path)
	}
	if !bytes.Equal(head, pdfMagic) {
		return fmt.Errorf("%w: %s", ErrNotPDF, path)
	}
	return nil
}

// Read introspects the PDF at path. The page count comes from pdfcpu, which
// also rejects encrypted or structurally broken files; text extraction uses
// a second reader and degrades per page rather than failing the document.
func Read(path string) (*Document, error) {
	if err := ValidateMagic(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	pageCount, err := api.PageCount(f, nil)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count for %s: %w", path, err)
	}
	if pageCount <= 0 {
		return nil, fmt.Errorf("%s has no pages", path)
	}

	doc := &Document{
		Path:      path,
		PageCount: pageCount,
		PageText:  make([]string, pageCount),
	}

	tf, reader, err := pdf.Open(path)
	if err != nil {
		// Text layer unreadable; every page estimates to zero tokens.
		return doc, nil
	}
	defer tf.Close()

	numPages := reader.NumPage()
	if numPages > pageCount {
		numPages = pageCount
	}
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		doc.PageText[i-1] = text
	}

	return doc, nil
}
