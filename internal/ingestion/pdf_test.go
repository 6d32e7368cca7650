package ingestion

import (
	"errors"
	"testing"
)

func TestValidatePDFName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		ok       bool
	}{
		{"report.pdf", true},
		{"REPORT.PDF", true},
		{"mixed.Pdf", true},
		{"notes.txt", false},
		{"archive.pdf.zip", false},
		{"pdf", false},
		{"", false},
	}

	for _, tt := range tests {
		err := ValidatePDFName(tt.filename)
		if tt.ok && err != nil {
			t.Errorf("ValidatePDFName(%q) = %v, want nil", tt.filename, err)
		}
		if !tt.ok && !errors.Is(err, ErrNotPDF) {
			t.Errorf("ValidatePDFName(%q) = %v, want ErrNotPDF", tt.filename, err)
		}
	}
}

func TestExtractPagesRejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := ExtractPages(nil); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("ExtractPages(nil) = %v, want ErrEmptyFile", err)
	}
	if _, err := ExtractPages([]byte{}); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("ExtractPages(empty) = %v, want ErrEmptyFile", err)
	}
	if _, err := ExtractPages([]byte("this is not a pdf")); err == nil {
		t.Error("ExtractPages accepted garbage bytes")
	}
}

func TestExtractPagesFromFileChecksExtensionFirst(t *testing.T) {
	t.Parallel()

	// The path does not exist; the extension check must fire before any read.
	if _, err := ExtractPagesFromFile("/nonexistent/notes.txt"); !errors.Is(err, ErrNotPDF) {
		t.Errorf("err = %v, want ErrNotPDF", err)
	}
}
