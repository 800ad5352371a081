// Package extract provides text extraction from the document formats a
// vault may contain.
package extract

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sagemind/noteai/internal/apperr"
)

// Extractor converts document files into plain text.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content. Failures are
// wrapped as *apperr.ExtractionError so the indexer can isolate them per file.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", &apperr.ExtractionError{Path: path, Err: err}
	}
	text, err := e.ExtractBytes(content, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return "", &apperr.ExtractionError{Path: path, Err: err}
	}
	return text, nil
}

// ExtractBytes extracts text from content based on the given extension
// (including the leading dot). Plain-text and code formats are decoded
// verbatim; binary formats go through a format-specific decoder. Unknown
// extensions fall back to best-effort plain decoding, which never fails on
// invalid bytes.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".doc", ".docx":
		return extractWord(content)
	case ".xlsx":
		return extractExcel(content)
	case ".csv":
		return extractCSV(content)
	case ".html", ".htm":
		return extractHTML(content)
	case ".md", ".txt", ".text", ".js", ".ts", ".kt", ".java", ".py", ".go", ".json", ".xml", "":
		return extractPlain(content), nil
	default:
		return extractPlain(content), nil
	}
}
