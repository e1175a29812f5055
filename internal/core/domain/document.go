package domain

import (
	"fmt"
	"time"
)

// DocumentType identifies the kind of source a document came from.
type DocumentType string

const (
	// DocumentTypePDF is a PDF file on disk.
	DocumentTypePDF DocumentType = "pdf"

	// DocumentTypeWebpage is a live web page fetched over HTTP or a browser.
	DocumentTypeWebpage DocumentType = "webpage"

	// DocumentTypeHTML is a web page saved to disk.
	DocumentTypeHTML DocumentType = "html"
)

// ParseDocumentType converts a string to a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case DocumentTypePDF, DocumentTypeWebpage, DocumentTypeHTML:
		return DocumentType(s), nil
	default:
		return "", fmt.Errorf("%w: document type %q", ErrUnsupportedType, s)
	}
}

// Document is the result of extracting one source.
// Text is raw extractor output until the cleaner has run.
type Document struct {
	// Type is the kind of source.
	Type DocumentType

	// Source is the file name or URL the text came from.
	Source string

	// Title is the page title, when the source has one.
	Title string

	// Text is the extracted text.
	Text string

	// Method is the extraction method that produced Text.
	Method string

	// ExtractedAt is when extraction finished.
	ExtractedAt time.Time

	// Metadata holds source-level key-value pairs copied onto every chunk.
	Metadata map[string]string
}
