package redis

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// HNSW parameters.
const (
	defaultEFConstruction = 200
	defaultM              = 16
)

// Hash field names.
const (
	fieldText     = "text"
	fieldVector   = "vector"
	fieldMetadata = "metadata"
	fieldSeq      = "seq"
	fieldScore    = "score"
)

// pageSize bounds each FT.SEARCH page when scanning.
const pageSize = 1000

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int

	// Collection names the index and key prefix (default: procurement_docs).
	Collection string

	// Dimensions is the vector size. Zero defers index creation to the first upsert.
	Dimensions int
}

// Store implements driven.VectorStore with RediSearch vector search.
type Store struct {
	client     *goredis.Client
	index      string
	prefix     string
	seqKey     string
	dimensions int

	mu           sync.Mutex
	indexCreated bool
}

// NewStore creates a Redis store. The connection is checked by Heartbeat.
func NewStore(cfg Config) *Store {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollectionName
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		Protocol: 2, // FT.* replies are parsed as RESP2 arrays
	})

	return &Store{
		client:     client,
		index:      "idx:" + cfg.Collection,
		prefix:     cfg.Collection + ":",
		seqKey:     "seq:" + cfg.Collection,
		dimensions: cfg.Dimensions,
	}
}

// Name returns "redis".
func (s *Store) Name() string {
	return domain.StoreRedis
}

// Heartbeat pings the server.
func (s *Store) Heartbeat(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// EnsureCollection creates the index when the vector size is known.
// With reset, the index and its hashes are dropped first.
func (s *Store) EnsureCollection(ctx context.Context, reset bool) error {
	if reset {
		err := s.client.Do(ctx, "FT.DROPINDEX", s.index, "DD").Err()
		if err != nil && !isUnknownIndex(err) {
			return fmt.Errorf("redis: drop index: %w", err)
		}
		if err := s.client.Del(ctx, s.seqKey).Err(); err != nil {
			return fmt.Errorf("redis: reset sequence: %w", err)
		}
		s.mu.Lock()
		s.indexCreated = false
		s.mu.Unlock()
	}
	if s.dimensions == 0 {
		return nil
	}
	return s.ensureIndex(ctx, s.dimensions)
}

// ensureIndex creates the HNSW vector index if it doesn't exist.
func (s *Store) ensureIndex(ctx context.Context, dim int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexCreated {
		return nil
	}

	if err := s.client.Do(ctx, "FT.INFO", s.index).Err(); err == nil {
		s.indexCreated = true
		return nil
	} else if !isUnknownIndex(err) {
		return fmt.Errorf("redis: index info: %w", err)
	}

	err := s.client.Do(ctx, "FT.CREATE", s.index,
		"ON", "HASH",
		"PREFIX", "1", s.prefix,
		"SCHEMA",
		fieldVector, "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(dim),
		"DISTANCE_METRIC", "COSINE",
		"EF_CONSTRUCTION", strconv.Itoa(defaultEFConstruction),
		"M", strconv.Itoa(defaultM),
		fieldText, "TEXT",
		fieldSeq, "NUMERIC", "SORTABLE",
	).Err()
	if err != nil {
		return fmt.Errorf("redis: create index: %w", err)
	}
	s.indexCreated = true
	return nil
}

// Upsert writes each record as a hash. A record keeps its original position
// in Get order when it is replaced.
func (s *Store) Upsert(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("%w: record %s has no embedding", domain.ErrInvalidInput, r.ID)
		}
	}
	if err := s.ensureIndex(ctx, len(records[0].Embedding)); err != nil {
		return err
	}

	first, err := s.client.IncrBy(ctx, s.seqKey, int64(len(records))).Result()
	if err != nil {
		return fmt.Errorf("redis: allocate sequence: %w", err)
	}
	first -= int64(len(records))

	pipe := s.client.Pipeline()
	for i, r := range records {
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		key := s.prefix + r.ID
		pipe.HSet(ctx, key,
			fieldText, r.Text,
			fieldVector, encodeVector(r.Embedding),
			fieldMetadata, string(meta),
		)
		pipe.HSetNX(ctx, key, fieldSeq, first+int64(i)+1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: upsert: %w", err)
	}
	return nil
}

// Query runs a KNN search; the score RediSearch returns is the cosine distance.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]domain.QueryResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	res, err := s.client.Do(ctx, "FT.SEARCH", s.index,
		fmt.Sprintf("*=>[KNN %d @%s $query_vector AS %s]", k, fieldVector, fieldScore),
		"PARAMS", "2", "query_vector", encodeVector(embedding),
		"RETURN", "3", fieldText, fieldMetadata, fieldScore,
		"SORTBY", fieldScore,
		"LIMIT", "0", strconv.Itoa(k),
		"DIALECT", "2",
	).Result()
	if err != nil {
		return nil, s.wrap("query", err)
	}

	_, hits, err := parseSearch(res)
	if err != nil {
		return nil, fmt.Errorf("redis: query: %w", err)
	}

	results := make([]domain.QueryResult, 0, len(hits))
	for _, h := range hits {
		rec, err := s.toRecord(h)
		if err != nil {
			return nil, err
		}
		dist, _ := strconv.ParseFloat(h.fields[fieldScore], 64)
		results = append(results, domain.QueryResult{Record: rec, Distance: dist})
	}
	return results, nil
}

// Get returns records in insertion order. Metadata filters are applied client-side.
func (s *Store) Get(ctx context.Context, filter domain.GetFilter) ([]domain.Record, error) {
	if len(filter.Where) == 0 {
		limit := filter.Limit
		if limit <= 0 {
			return s.scan(ctx, filter)
		}
		hits, _, err := s.page(ctx, filter.Offset, limit)
		if err != nil {
			return nil, err
		}
		return hits, nil
	}
	return s.scan(ctx, filter)
}

// scan walks the whole index in pages, filtering and paging in memory.
func (s *Store) scan(ctx context.Context, filter domain.GetFilter) ([]domain.Record, error) {
	out := []domain.Record{}
	skipped := 0
	for offset := 0; ; offset += pageSize {
		page, total, err := s.page(ctx, offset, pageSize)
		if err != nil {
			return nil, err
		}
		for _, r := range page {
			if !filter.Matches(r.Metadata) {
				continue
			}
			if skipped < filter.Offset {
				skipped++
				continue
			}
			out = append(out, r)
			if filter.Limit > 0 && len(out) == filter.Limit {
				return out, nil
			}
		}
		if offset+pageSize >= total || len(page) == 0 {
			return out, nil
		}
	}
}

func (s *Store) page(ctx context.Context, offset, limit int) ([]domain.Record, int, error) {
	res, err := s.client.Do(ctx, "FT.SEARCH", s.index, "*",
		"RETURN", "2", fieldText, fieldMetadata,
		"SORTBY", fieldSeq, "ASC",
		"LIMIT", strconv.Itoa(offset), strconv.Itoa(limit),
	).Result()
	if err != nil {
		return nil, 0, s.wrap("get", err)
	}

	total, hits, err := parseSearch(res)
	if err != nil {
		return nil, 0, fmt.Errorf("redis: get: %w", err)
	}
	records := make([]domain.Record, 0, len(hits))
	for _, h := range hits {
		rec, err := s.toRecord(h)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, nil
}

// Count reads num_docs from FT.INFO.
func (s *Store) Count(ctx context.Context) (int, error) {
	res, err := s.client.Do(ctx, "FT.INFO", s.index).Result()
	if err != nil {
		return 0, s.wrap("count", err)
	}
	n, err := numDocs(res)
	if err != nil {
		return 0, fmt.Errorf("redis: count: %w", err)
	}
	return n, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) wrap(op string, err error) error {
	if isUnknownIndex(err) {
		return fmt.Errorf("redis: %s: %w: index %s", op, domain.ErrNotFound, s.index)
	}
	return fmt.Errorf("redis: %s: %w", op, err)
}

func (s *Store) toRecord(h hit) (domain.Record, error) {
	rec := domain.Record{
		ID:       strings.TrimPrefix(h.key, s.prefix),
		Text:     h.fields[fieldText],
		Metadata: map[string]string{},
	}
	if raw := h.fields[fieldMetadata]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.Metadata); err != nil {
			return rec, fmt.Errorf("redis: decode metadata for %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

// hit is one FT.SEARCH result.
type hit struct {
	key    string
	fields map[string]string
}

// parseSearch decodes a RESP2 FT.SEARCH reply: [total, key, [field, value, ...], ...].
func parseSearch(res any) (int, []hit, error) {
	values, ok := res.([]any)
	if !ok || len(values) == 0 {
		return 0, nil, errors.New("unexpected search reply")
	}
	total, err := toInt(values[0])
	if err != nil {
		return 0, nil, fmt.Errorf("search total: %w", err)
	}

	hits := make([]hit, 0, (len(values)-1)/2)
	for i := 1; i+1 < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			continue
		}
		raw, ok := values[i+1].([]any)
		if !ok {
			continue
		}
		h := hit{key: key, fields: make(map[string]string, len(raw)/2)}
		for j := 0; j+1 < len(raw); j += 2 {
			name, _ := raw[j].(string)
			val, _ := raw[j+1].(string)
			h.fields[name] = val
		}
		hits = append(hits, h)
	}
	return total, hits, nil
}

// numDocs finds num_docs in a RESP2 FT.INFO reply.
func numDocs(res any) (int, error) {
	values, ok := res.([]any)
	if !ok {
		return 0, errors.New("unexpected info reply")
	}
	for i := 0; i+1 < len(values); i += 2 {
		if key, ok := values[i].(string); ok && key == "num_docs" {
			return toInt(values[i+1])
		}
	}
	return 0, errors.New("num_docs missing from info reply")
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func isUnknownIndex(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unknown index") || strings.Contains(msg, "no such index")
}

// encodeVector packs a vector as little-endian FLOAT32 bytes.
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
