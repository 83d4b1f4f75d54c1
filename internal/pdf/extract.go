// Package pdf extracts per-page text from PDF documents.
package pdf

import (
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Page holds the extracted text of a single PDF page.
// Numbering is 1-based, matching how readers display pages.
type Page struct {
	Number int
	Text   string
}

// ExtractPages extracts the plain text of every page in the PDF at path.
// Pages whose text cannot be decoded are returned with empty text rather
// than failing the whole document.
func ExtractPages(path string) ([]Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	return extractAll(r)
}

// ExtractPagesReader extracts per-page text from an in-memory PDF.
func ExtractPagesReader(r io.ReaderAt, size int64) ([]Page, error) {
	pdfReader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}

	return extractAll(pdfReader)
}

func extractAll(r *pdf.Reader) ([]Page, error) {
	numPages := r.NumPage()
	pages := make([]Page, 0, numPages)

	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Scanned or malformed pages simply contribute no text.
			pages = append(pages, Page{Number: i})
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}

	return pages, nil
}
