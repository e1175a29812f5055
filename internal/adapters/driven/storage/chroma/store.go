package chroma

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	chhttp "github.com/amikos-tech/chroma-go/pkg/commons/http"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultTenant   = chroma.DefaultTenant
	DefaultDatabase = chroma.DefaultDatabase
	DefaultTimeout  = 60 * time.Second
)

// collectionDescription is stored in the collection metadata.
const collectionDescription = "Procurement documents and web pages"

// includeDistances asks a query for distances alongside documents and metadata.
const includeDistances chroma.Include = "distances"

// Config holds configuration for the Chroma store.
type Config struct {
	// URL is the server base URL (default: http://localhost:8000).
	URL string

	// Tenant and Database scope the collection (defaults: default_tenant, default_database).
	Tenant   string
	Database string

	// Collection is the collection name (default: procurement_docs).
	Collection string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Store keeps records in a Chroma collection through the chroma-go v2 client.
type Store struct {
	client     chroma.Client
	collection string

	mu  sync.Mutex
	col chroma.Collection
}

// NewStore creates a Chroma store. No request is made until first use.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		cfg.URL = domain.DefaultChromaURL
	}
	if cfg.Tenant == "" {
		cfg.Tenant = DefaultTenant
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollectionName
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client, err := chroma.NewHTTPClient(
		chroma.WithBaseURL(cfg.URL),
		chroma.WithDatabaseAndTenant(cfg.Database, cfg.Tenant),
		chroma.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("chroma: create client: %w", err)
	}

	return &Store{client: client, collection: cfg.Collection}, nil
}

// Name returns "chroma".
func (s *Store) Name() string {
	return domain.StoreChroma
}

// Heartbeat checks the server responds.
func (s *Store) Heartbeat(ctx context.Context) error {
	if err := s.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: chroma: heartbeat: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// EnsureCollection gets or creates the collection with cosine space.
// With reset, an existing collection is deleted first.
func (s *Store) EnsureCollection(ctx context.Context, reset bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reset {
		err := s.client.DeleteCollection(ctx, s.collection)
		if err != nil && statusCode(err) != http.StatusNotFound {
			return fmt.Errorf("chroma: delete collection: %w", wrapErr(err))
		}
		s.col = nil
	}

	metadata := chroma.NewMetadata(chroma.NewStringAttribute("description", collectionDescription))
	col, err := s.client.GetOrCreateCollection(ctx, s.collection,
		chroma.WithCollectionMetadataCreate(metadata),
		chroma.WithHNSWSpaceCreate(embeddings.COSINE),
		chroma.WithEmbeddingFunctionCreate(precomputed{}),
	)
	if err != nil {
		return fmt.Errorf("chroma: create collection: %w", wrapErr(err))
	}
	s.col = col
	return nil
}

// collectionHandle returns the cached collection, fetching it on first use.
// A missing collection is domain.ErrNotFound.
func (s *Store) collectionHandle(ctx context.Context) (chroma.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.col != nil {
		return s.col, nil
	}

	col, err := s.client.GetCollection(ctx, s.collection, chroma.WithEmbeddingFunctionGet(precomputed{}))
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: collection %q", domain.ErrNotFound, s.collection)
		}
		return nil, wrapErr(err)
	}
	s.col = col
	return col, nil
}

// Upsert writes records in one request.
func (s *Store) Upsert(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]chroma.DocumentID, len(records))
	vectors := make([]embeddings.Embedding, len(records))
	texts := make([]string, len(records))
	metadatas := make([]chroma.DocumentMetadata, len(records))
	for i, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("%w: record %s has no embedding", domain.ErrInvalidInput, r.ID)
		}
		ids[i] = chroma.DocumentID(r.ID)
		vectors[i] = embeddings.NewEmbeddingFromFloat32(r.Embedding)
		texts[i] = r.Text
		metadatas[i] = documentMetadata(r.Metadata)
	}

	col, err := s.collectionHandle(ctx)
	if err != nil {
		return fmt.Errorf("chroma: upsert: %w", err)
	}
	err = col.Upsert(ctx,
		chroma.WithIDs(ids...),
		chroma.WithEmbeddings(vectors...),
		chroma.WithTexts(texts...),
		chroma.WithMetadatas(metadatas...),
	)
	if err != nil {
		return fmt.Errorf("chroma: upsert: %w", wrapErr(err))
	}
	return nil
}

// Query returns the k nearest records.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]domain.QueryResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	col, err := s.collectionHandle(ctx)
	if err != nil {
		return nil, fmt.Errorf("chroma: query: %w", err)
	}

	res, err := col.Query(ctx,
		chroma.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
		chroma.WithNResults(k),
		chroma.WithIncludeQuery(chroma.IncludeDocuments, chroma.IncludeMetadatas, includeDistances),
	)
	if err != nil {
		return nil, fmt.Errorf("chroma: query: %w", wrapErr(err))
	}

	results := []domain.QueryResult{}
	idGroups := res.GetIDGroups()
	if len(idGroups) == 0 {
		return results, nil
	}
	var (
		docs  chroma.Documents
		metas chroma.DocumentMetadatas
		dists embeddings.Distances
	)
	if g := res.GetDocumentsGroups(); len(g) > 0 {
		docs = g[0]
	}
	if g := res.GetMetadatasGroups(); len(g) > 0 {
		metas = g[0]
	}
	if g := res.GetDistancesGroups(); len(g) > 0 {
		dists = g[0]
	}
	for i, id := range idGroups[0] {
		r := domain.QueryResult{Record: domain.Record{ID: string(id), Metadata: map[string]string{}}}
		if i < len(docs) && docs[i] != nil {
			r.Record.Text = docs[i].ContentString()
		}
		if i < len(metas) {
			r.Record.Metadata = stringify(metas[i])
		}
		if i < len(dists) {
			r.Distance = float64(dists[i])
		}
		results = append(results, r)
	}
	return results, nil
}

// Get fetches records by metadata filter with paging.
func (s *Store) Get(ctx context.Context, filter domain.GetFilter) ([]domain.Record, error) {
	col, err := s.collectionHandle(ctx)
	if err != nil {
		return nil, fmt.Errorf("chroma: get: %w", err)
	}

	opts := []chroma.CollectionGetOption{
		chroma.WithIncludeGet(chroma.IncludeDocuments, chroma.IncludeMetadatas),
		chroma.WithOffsetGet(filter.Offset),
	}
	if where := whereClause(filter.Where); where != nil {
		opts = append(opts, chroma.WithWhereGet(where))
	}
	if filter.Limit > 0 {
		opts = append(opts, chroma.WithLimitGet(filter.Limit))
	}

	res, err := col.Get(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("chroma: get: %w", wrapErr(err))
	}

	ids := res.GetIDs()
	docs := res.GetDocuments()
	metas := res.GetMetadatas()
	records := make([]domain.Record, 0, len(ids))
	for i, id := range ids {
		r := domain.Record{ID: string(id), Metadata: map[string]string{}}
		if i < len(docs) && docs[i] != nil {
			r.Text = docs[i].ContentString()
		}
		if i < len(metas) {
			r.Metadata = stringify(metas[i])
		}
		records = append(records, r)
	}
	return records, nil
}

// Count returns the number of records in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	col, err := s.collectionHandle(ctx)
	if err != nil {
		return 0, fmt.Errorf("chroma: count: %w", err)
	}
	n, err := col.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("chroma: count: %w", wrapErr(err))
	}
	return n, nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// statusCode extracts the HTTP status from a client error. Zero means the
// request never got a response.
func statusCode(err error) int {
	var chErr *chhttp.ChromaError
	if errors.As(err, &chErr) {
		return chErr.ErrorCode
	}
	return -1
}

// wrapErr marks transport failures as domain.ErrStoreUnavailable.
func wrapErr(err error) error {
	if statusCode(err) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}

// whereClause builds a Chroma where filter. Several keys are combined with $and.
func whereClause(where map[string]string) chroma.WhereClause {
	switch len(where) {
	case 0:
		return nil
	case 1:
		for k, v := range where {
			return chroma.EqString(k, v)
		}
	}

	clauses := make([]chroma.WhereClause, 0, len(where))
	for _, k := range slices.Sorted(maps.Keys(where)) {
		clauses = append(clauses, chroma.EqString(k, where[k]))
	}
	return chroma.And(clauses...)
}

func documentMetadata(md map[string]string) chroma.DocumentMetadata {
	attrs := make([]*chroma.MetaAttribute, 0, len(md))
	for k, v := range md {
		attrs = append(attrs, chroma.NewStringAttribute(k, v))
	}
	return chroma.NewDocumentMetadata(attrs...)
}

// stringify converts metadata values to strings.
func stringify(md chroma.DocumentMetadata) map[string]string {
	out := map[string]string{}
	keyed, ok := md.(interface{ Keys() []string })
	if !ok {
		return out
	}
	for _, k := range keyed.Keys() {
		if v, ok := md.GetString(k); ok {
			out[k] = v
		} else if v, ok := md.GetInt(k); ok {
			out[k] = strconv.FormatInt(v, 10)
		} else if v, ok := md.GetFloat(k); ok {
			out[k] = strconv.FormatFloat(v, 'g', -1, 64)
		} else if v, ok := md.GetBool(k); ok {
			out[k] = strconv.FormatBool(v)
		}
	}
	return out
}

// precomputed is the collection's embedding function. Records and queries
// always carry vectors, so it refuses to embed text.
type precomputed struct{}

var errPrecomputed = errors.New("chroma: embeddings are computed before storage")

func (precomputed) EmbedDocuments(context.Context, []string) ([]embeddings.Embedding, error) {
	return nil, errPrecomputed
}

func (precomputed) EmbedQuery(context.Context, string) (embeddings.Embedding, error) {
	return nil, errPrecomputed
}
