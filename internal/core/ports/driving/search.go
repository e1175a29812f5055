package driving

import (
	"context"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

// SearchService provides semantic search over the stored collection.
type SearchService interface {
	// Search returns the k nearest chunks to query, ranked from 1.
	Search(ctx context.Context, query string, k int) ([]domain.SearchHit, error)

	// Stats reports the record count and a sample record.
	Stats(ctx context.Context) (*domain.CollectionStats, error)

	// RunPredefined runs the built-in procurement queries.
	RunPredefined(ctx context.Context, k int) ([]domain.PredefinedResult, error)
}
