package driven

import (
	"context"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

// Extractor turns one source into a cleaned Document.
// There is one implementation per DocumentType.
type Extractor interface {
	// Type returns the document type this extractor produces.
	Type() domain.DocumentType

	// Extract reads the source (a file path or URL) and returns its text and metadata.
	// Empty results return domain.ErrExtractionEmpty.
	Extract(ctx context.Context, source string, opts ExtractOptions) (*domain.Document, error)
}

// MethodLister is implemented by extractors with named strategies.
type MethodLister interface {
	// Methods returns strategy names in the order auto tries them.
	Methods() []string
}

// ExtractOptions tunes a single extraction.
type ExtractOptions struct {
	// Method selects a strategy by name. Empty or "auto" tries every strategy in order.
	Method string

	// OriginalURL is the page a saved HTML file was captured from.
	OriginalURL string
}

// PDFStrategy extracts raw text from a PDF file.
type PDFStrategy interface {
	Name() string
	Extract(ctx context.Context, path string) (string, error)
}

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// PageFetcher retrieves the HTML of a web page.
type PageFetcher interface {
	// Name returns the method name recorded in metadata (http, browser).
	Name() string

	// Fetch returns the page HTML.
	Fetch(ctx context.Context, url string) (*FetchedPage, error)
}

// FetchedPage is a retrieved web page.
type FetchedPage struct {
	URL        string
	StatusCode int
	HTML       string
}
