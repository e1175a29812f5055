package driving

import (
	"context"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

// IngestService turns PDFs, web pages and saved HTML into stored records.
type IngestService interface {
	// Methods lists every accepted --extraction-method value, auto first.
	Methods() []string

	// ValidateMethod returns domain.ErrInvalidMethod for unknown methods.
	ValidateMethod(method string) error

	// Prepare checks the store and creates the collection, dropping it first when reset is set.
	Prepare(ctx context.Context, reset bool) error

	// ProcessPDF extracts, cleans and chunks one PDF into records without embeddings.
	ProcessPDF(ctx context.Context, path, method string) ([]domain.Record, error)

	// ProcessURL fetches, cleans and chunks one live web page.
	ProcessURL(ctx context.Context, rawURL, method string) ([]domain.Record, error)

	// ProcessSavedHTML parses a browser-saved page. originalURL may be empty.
	ProcessSavedHTML(ctx context.Context, path, originalURL string) ([]domain.Record, error)

	// Store embeds and upserts records in batches and returns how many were stored.
	Store(ctx context.Context, records []domain.Record) (int, error)

	// Run performs a full tokenize pass over a URL, a file or a directory.
	Run(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)

	// RunSavedHTML ingests saved HTML files.
	RunSavedHTML(ctx context.Context, req domain.SavedHTMLRequest) (*domain.IngestResult, error)
}
