package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/core/ports/driving"
	"github.com/custodia-labs/proctok/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultSearchResults is the k used when callers pass zero.
const DefaultSearchResults = 5

// SearchService runs semantic queries against the vector store.
type SearchService struct {
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	collection string
}

// NewSearchService creates a new search service.
func NewSearchService(embedder driven.EmbeddingService, store driven.VectorStore, collection string) *SearchService {
	return &SearchService{embedder: embedder, store: store, collection: collection}
}

// Search embeds query and returns up to k ranked hits.
func (s *SearchService) Search(ctx context.Context, query string, k int) ([]domain.SearchHit, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = DefaultSearchResults
	}
	return search(ctx, s.embedder, s.store, query, k)
}

// Stats returns the collection size and the first record's metadata.
func (s *SearchService) Stats(ctx context.Context) (*domain.CollectionStats, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	stats := &domain.CollectionStats{
		Collection: s.collection,
		Backend:    s.store.Name(),
		Count:      count,
	}
	if count == 0 {
		return stats, nil
	}

	sample, err := s.store.Get(ctx, domain.GetFilter{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	if len(sample) > 0 {
		stats.SampleMetadata = sample[0].Metadata
	}
	return stats, nil
}

// RunPredefined runs every predefined query and reports the top hit of each.
// A failing query is recorded and the rest still run.
func (s *SearchService) RunPredefined(ctx context.Context, k int) ([]domain.PredefinedResult, error) {
	if k <= 0 {
		k = DefaultSearchResults
	}

	results := make([]domain.PredefinedResult, 0, len(domain.PredefinedQueries))
	for _, q := range domain.PredefinedQueries {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r := domain.PredefinedResult{Query: q}
		hits, err := search(ctx, s.embedder, s.store, q, k)
		if err != nil {
			logger.Warn("Query %q failed: %v", q, err)
			r.Error = err.Error()
		} else {
			r.Results = len(hits)
			if len(hits) > 0 {
				top := hits[0]
				r.Top = &top
			}
		}
		results = append(results, r)
	}
	return results, nil
}

// search embeds query, queries the store and ranks hits from 1.
func search(ctx context.Context, embedder driven.EmbeddingService, store driven.VectorStore, query string, k int) ([]domain.SearchHit, error) {
	vec, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := store.Query(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(results))
	for i, r := range results {
		hits = append(hits, domain.SearchHit{
			Rank:       i + 1,
			ID:         r.Record.ID,
			Text:       r.Record.Text,
			Metadata:   r.Record.Metadata,
			Distance:   r.Distance,
			Similarity: r.Similarity(),
		})
	}
	logger.Debug("Query returned %d results", len(hits))
	return hits, nil
}

// truncate shortens s to at most n runes, appending "..." when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
