package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Field names.
const (
	FieldID       = "id"
	FieldText     = "text"
	FieldMetadata = "metadata"
	FieldVector   = "vector"
)

// Limits.
const (
	maxIDLength   = 512
	maxTextLength = 65535
	pageSize      = 1000
)

// Config holds Milvus connection configuration.
type Config struct {
	Address    string
	Collection string

	// Dimensions is the vector size. Zero defers collection creation to the first upsert.
	Dimensions int
}

// Store implements driven.VectorStore on a Milvus collection.
type Store struct {
	client     *milvusclient.Client
	collection string
	dimensions int

	mu     sync.Mutex
	loaded bool
}

// NewStore connects to Milvus.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Address == "" {
		cfg.Address = "localhost:19530"
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollectionName
	}

	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("%w: milvus: connect %s: %v", domain.ErrStoreUnavailable, cfg.Address, err)
	}
	return &Store{client: client, collection: cfg.Collection, dimensions: cfg.Dimensions}, nil
}

// Name returns "milvus".
func (s *Store) Name() string {
	return domain.StoreMilvus
}

// Heartbeat lists collections as a liveness check.
func (s *Store) Heartbeat(ctx context.Context) error {
	if _, err := s.client.ListCollections(ctx, milvusclient.NewListCollectionOption()); err != nil {
		return fmt.Errorf("%w: milvus: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// EnsureCollection creates and loads the collection when the vector size is known.
// With reset, an existing collection is dropped first.
func (s *Store) EnsureCollection(ctx context.Context, reset bool) error {
	if reset {
		exists, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.collection))
		if err != nil {
			return fmt.Errorf("milvus: has collection: %w", err)
		}
		if exists {
			if err := s.client.DropCollection(ctx, milvusclient.NewDropCollectionOption(s.collection)); err != nil {
				return fmt.Errorf("milvus: drop collection: %w", err)
			}
		}
		s.mu.Lock()
		s.loaded = false
		s.mu.Unlock()
	}
	if s.dimensions == 0 {
		return nil
	}
	return s.ensure(ctx, s.dimensions)
}

func (s *Store) schema(dim int) *entity.Schema {
	return &entity.Schema{
		CollectionName: s.collection,
		Description:    "Procurement documents and web pages",
		Fields: []*entity.Field{
			{
				Name:       FieldID,
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{"max_length": strconv.Itoa(maxIDLength)},
			},
			{
				Name:       FieldText,
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": strconv.Itoa(maxTextLength)},
			},
			{
				Name:     FieldMetadata,
				DataType: entity.FieldTypeJSON,
			},
			{
				Name:       FieldVector,
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": strconv.Itoa(dim)},
			},
		},
	}
}

// ensure creates the collection and index if missing, then loads it.
func (s *Store) ensure(ctx context.Context, dim int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}

	exists, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.collection))
	if err != nil {
		return fmt.Errorf("milvus: has collection: %w", err)
	}
	if !exists {
		if err := s.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(s.collection, s.schema(dim))); err != nil {
			return fmt.Errorf("milvus: create collection: %w", err)
		}
		idx := index.NewHNSWIndex(entity.COSINE, 16, 200)
		task, err := s.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(s.collection, FieldVector, idx))
		if err != nil {
			return fmt.Errorf("milvus: create index: %w", err)
		}
		if err := task.Await(ctx); err != nil {
			return fmt.Errorf("milvus: await index: %w", err)
		}
	}

	task, err := s.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(s.collection))
	if err != nil {
		return fmt.Errorf("milvus: load collection: %w", err)
	}
	if err := task.Await(ctx); err != nil {
		return fmt.Errorf("milvus: await load: %w", err)
	}
	s.loaded = true
	return nil
}

// Upsert writes records column-wise.
func (s *Store) Upsert(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	dim := len(records[0].Embedding)
	ids := make([]string, len(records))
	texts := make([]string, len(records))
	metas := make([][]byte, len(records))
	vecs := make([][]float32, len(records))
	for i, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("%w: record %s has no embedding", domain.ErrInvalidInput, r.ID)
		}
		if len(r.Embedding) != dim {
			return fmt.Errorf("%w: record %s has %d dimensions, want %d", domain.ErrInvalidInput, r.ID, len(r.Embedding), dim)
		}
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		ids[i], texts[i], metas[i], vecs[i] = r.ID, r.Text, meta, r.Embedding
	}

	if err := s.ensure(ctx, dim); err != nil {
		return err
	}

	opt := milvusclient.NewColumnBasedInsertOption(s.collection).
		WithVarcharColumn(FieldID, ids).
		WithVarcharColumn(FieldText, texts).
		WithColumns(column.NewColumnJSONBytes(FieldMetadata, metas)).
		WithFloatVectorColumn(FieldVector, dim, vecs)
	if _, err := s.client.Upsert(ctx, opt); err != nil {
		return fmt.Errorf("milvus: upsert: %w", err)
	}
	return nil
}

// Query runs an ANN search. Milvus reports cosine similarity, converted here to distance.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]domain.QueryResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	opt := milvusclient.NewSearchOption(s.collection, k, []entity.Vector{entity.FloatVector(embedding)}).
		WithANNSField(FieldVector).
		WithOutputFields(FieldText, FieldMetadata).
		WithConsistencyLevel(entity.ClStrong)
	sets, err := s.client.Search(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("milvus: search: %w", err)
	}

	results := []domain.QueryResult{}
	if len(sets) == 0 {
		return results, nil
	}
	rs := sets[0]
	records, err := readRecords(rs.IDs, rs.GetColumn(FieldText), rs.GetColumn(FieldMetadata), rs.ResultCount)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		var score float32
		if i < len(rs.Scores) {
			score = rs.Scores[i]
		}
		results = append(results, domain.QueryResult{Record: rec, Distance: scoreToDistance(score)})
	}
	return results, nil
}

// Get queries by metadata filter. Results are ordered by id.
func (s *Store) Get(ctx context.Context, filter domain.GetFilter) ([]domain.Record, error) {
	expr := filterExpr(filter.Where)

	if filter.Limit > 0 {
		return s.query(ctx, expr, filter.Offset, filter.Limit)
	}

	out := []domain.Record{}
	for offset := filter.Offset; ; offset += pageSize {
		page, err := s.query(ctx, expr, offset, pageSize)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < pageSize {
			return out, nil
		}
	}
}

func (s *Store) query(ctx context.Context, expr string, offset, limit int) ([]domain.Record, error) {
	opt := milvusclient.NewQueryOption(s.collection).
		WithFilter(expr).
		WithOutputFields(FieldID, FieldText, FieldMetadata).
		WithOffset(offset).
		WithLimit(limit).
		WithConsistencyLevel(entity.ClStrong)
	rs, err := s.client.Query(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("milvus: query: %w", err)
	}
	records, err := readRecords(rs.GetColumn(FieldID), rs.GetColumn(FieldText), rs.GetColumn(FieldMetadata), rs.ResultCount)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// Count runs count(*) with strong consistency.
func (s *Store) Count(ctx context.Context) (int, error) {
	opt := milvusclient.NewQueryOption(s.collection).
		WithOutputFields("count(*)").
		WithConsistencyLevel(entity.ClStrong)
	rs, err := s.client.Query(ctx, opt)
	if err != nil {
		return 0, fmt.Errorf("milvus: count: %w", err)
	}
	col := rs.GetColumn("count(*)")
	if col == nil || col.Len() == 0 {
		return 0, nil
	}
	n, err := col.GetAsInt64(0)
	if err != nil {
		return 0, fmt.Errorf("milvus: count: %w", err)
	}
	return int(n), nil
}

// Close closes the client connection.
func (s *Store) Close() error {
	return s.client.Close(context.Background())
}

// readRecords zips id, text and metadata columns into records.
func readRecords(ids, texts, metas column.Column, n int) ([]domain.Record, error) {
	if ids == nil {
		return []domain.Record{}, nil
	}
	if n <= 0 || n > ids.Len() {
		n = ids.Len()
	}
	out := make([]domain.Record, 0, n)
	for i := 0; i < n; i++ {
		id, err := ids.GetAsString(i)
		if err != nil {
			return nil, fmt.Errorf("milvus: read id: %w", err)
		}
		rec := domain.Record{ID: id, Metadata: map[string]string{}}
		if texts != nil && i < texts.Len() {
			if rec.Text, err = texts.GetAsString(i); err != nil {
				return nil, fmt.Errorf("milvus: read text: %w", err)
			}
		}
		if metas != nil && i < metas.Len() {
			raw, err := metas.Get(i)
			if err != nil {
				return nil, fmt.Errorf("milvus: read metadata: %w", err)
			}
			if rec.Metadata, err = decodeMetadata(raw); err != nil {
				return nil, fmt.Errorf("milvus: metadata for %s: %w", id, err)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeMetadata(raw any) (map[string]string, error) {
	md := map[string]string{}
	var b []byte
	switch v := raw.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		return md, nil
	default:
		return nil, fmt.Errorf("unexpected metadata type %T", raw)
	}
	if len(b) == 0 {
		return md, nil
	}
	if err := json.Unmarshal(b, &md); err != nil {
		return nil, err
	}
	return md, nil
}

// filterExpr builds a boolean expression over metadata JSON keys.
func filterExpr(where map[string]string) string {
	if len(where) == 0 {
		return ""
	}
	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s[%s] == %s`, FieldMetadata, strconv.Quote(k), strconv.Quote(where[k])))
	}
	return strings.Join(parts, " and ")
}

// scoreToDistance converts a COSINE similarity score to a distance.
func scoreToDistance(score float32) float64 {
	return 1 - float64(score)
}
