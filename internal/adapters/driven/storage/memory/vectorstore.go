package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Records are returned by Get in first-insertion order.
type VectorStore struct {
	mu      sync.RWMutex
	records map[string]domain.Record
	order   []string

	// HeartbeatErr is returned by Heartbeat when set.
	HeartbeatErr error
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{records: make(map[string]domain.Record)}
}

// Name returns "memory".
func (s *VectorStore) Name() string {
	return domain.StoreMemory
}

// Heartbeat always succeeds unless HeartbeatErr is set.
func (s *VectorStore) Heartbeat(_ context.Context) error {
	return s.HeartbeatErr
}

// EnsureCollection clears the store when reset is true.
func (s *VectorStore) EnsureCollection(_ context.Context, reset bool) error {
	if !reset {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]domain.Record)
	s.order = nil
	return nil
}

// Upsert inserts or replaces records by ID.
func (s *VectorStore) Upsert(_ context.Context, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("%w: record %s has no embedding", domain.ErrInvalidInput, r.ID)
		}
		if _, ok := s.records[r.ID]; !ok {
			s.order = append(s.order, r.ID)
		}
		s.records[r.ID] = copyRecord(r)
	}
	return nil
}

// Query ranks every record by cosine distance.
func (s *VectorStore) Query(_ context.Context, embedding []float32, k int) ([]domain.QueryResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.QueryResult, 0, len(s.order))
	for _, id := range s.order {
		r := s.records[id]
		rec := copyRecord(r)
		rec.Embedding = nil
		results = append(results, domain.QueryResult{
			Record:   rec,
			Distance: domain.CosineDistance(embedding, r.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Get returns matching records without embeddings.
func (s *VectorStore) Get(_ context.Context, filter domain.GetFilter) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Record{}
	skipped := 0
	for _, id := range s.order {
		r := s.records[id]
		if !filter.Matches(r.Metadata) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		rec := copyRecord(r)
		rec.Embedding = nil
		out = append(out, rec)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}

func copyRecord(r domain.Record) domain.Record {
	md := make(map[string]string, len(r.Metadata))
	for k, v := range r.Metadata {
		md[k] = v
	}
	r.Metadata = md
	if r.Embedding != nil {
		r.Embedding = append([]float32(nil), r.Embedding...)
	}
	return r
}
