package ingestion

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageText is the extracted text of a single PDF page.
type PageText struct {
	// Number is the 1-based page number.
	Number int

	// Text is the plain text content of the page. May be empty for pages
	// that contain only images or vector art.
	Text string
}

// ErrNotPDF is returned when the input filename does not carry a .pdf
// extension. The check runs before any parsing is attempted.
var ErrNotPDF = fmt.Errorf("only PDF files are allowed")

// ErrEmptyFile is returned when the input is zero bytes long.
var ErrEmptyFile = fmt.Errorf("empty file uploaded")

// ValidatePDFName rejects filenames without a .pdf extension
// (case-insensitive). Validation happens before any bytes are parsed so a
// bad upload never reaches the PDF reader.
func ValidatePDFName(filename string) error {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return ErrNotPDF
	}
	return nil
}

// ExtractPages parses a PDF from raw bytes and returns one PageText per page.
// Parsing works directly on the byte slice — no temporary file is created, so
// there is nothing to clean up on any exit path.
func ExtractPages(data []byte) ([]PageText, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("ingestion: open PDF: %w", err)
	}

	numPages := reader.NumPage()
	pages := make([]PageText, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, PageText{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("ingestion: extract page %d: %w", i, err)
		}
		pages = append(pages, PageText{Number: i, Text: text})
	}

	return pages, nil
}

// ExtractPagesFromFile reads a PDF from disk and extracts per-page text.
// The extension check runs before the file is opened.
func ExtractPagesFromFile(path string) ([]PageText, error) {
	if err := ValidatePDFName(filepath.Base(path)); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingestion: read %s: %w", path, err)
	}

	return ExtractPages(data)
}
