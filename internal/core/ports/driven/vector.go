package driven

import (
	"context"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

// VectorStore persists chunk records and answers nearest-neighbour queries.
// Distances are cosine distances; similarity is 1 - distance.
type VectorStore interface {
	// Name returns the backend name (chroma, sqlite, redis, milvus, memory).
	Name() string

	// Heartbeat checks the backend is reachable.
	// Failures wrap domain.ErrStoreUnavailable.
	Heartbeat(ctx context.Context) error

	// EnsureCollection creates the collection if missing.
	// When reset is true an existing collection is deleted first.
	EnsureCollection(ctx context.Context, reset bool) error

	// Upsert inserts or replaces records by ID.
	// Every record must carry an embedding.
	Upsert(ctx context.Context, records []domain.Record) error

	// Query returns up to k records nearest to embedding, closest first.
	Query(ctx context.Context, embedding []float32, k int) ([]domain.QueryResult, error)

	// Get returns records matching the filter, without embeddings.
	Get(ctx context.Context, filter domain.GetFilter) ([]domain.Record, error)

	// Count returns the number of records in the collection.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
