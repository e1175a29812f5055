package chroma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

type fakeCollection struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Tenant   string         `json:"tenant"`
	Database string         `json:"database"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type fakeUpsert struct {
	IDs        []string         `json:"ids"`
	Embeddings [][]float32      `json:"embeddings"`
	Documents  []string         `json:"documents"`
	Metadatas  []map[string]any `json:"metadatas"`
}

type fakeGet struct {
	Where   map[string]any `json:"where"`
	Limit   *int           `json:"limit"`
	Offset  int            `json:"offset"`
	Include []string       `json:"include"`
}

type fakeQuery struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

// fakeChroma is a minimal in-memory Chroma v2 server.
type fakeChroma struct {
	mu          sync.Mutex
	collections map[string]fakeCollection
	records     map[string][]fakeUpsert
	lastGet     fakeGet
	lastQuery   fakeQuery
	deletes     int
}

func newFakeChroma(t *testing.T) (*fakeChroma, *Store) {
	t.Helper()
	f := &fakeChroma{
		collections: map[string]fakeCollection{},
		records:     map[string][]fakeUpsert{},
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	s, err := NewStore(Config{URL: srv.URL, Collection: "procurement_docs"})
	require.NoError(t, err)
	return f, s
}

const prefix = "/api/v2/tenants/default_tenant/databases/default_database/collections"

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":"NotFoundError","message":"collection not found"}`))
}

func (f *fakeChroma) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/api/v2/heartbeat":
		_ = json.NewEncoder(w).Encode(map[string]int64{"nanosecond heartbeat": 1})
		return
	case "/api/v2/pre-flight-checks":
		_ = json.NewEncoder(w).Encode(map[string]any{"max_batch_size": 100})
		return
	}
	if !strings.HasPrefix(r.URL.Path, prefix) {
		notFound(w)
		return
	}
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	parts := strings.Split(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodPost:
		var req struct {
			Name     string         `json:"name"`
			Metadata map[string]any `json:"metadata"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		c, ok := f.collections[req.Name]
		if !ok {
			c = fakeCollection{
				ID:       "id-" + req.Name,
				Name:     req.Name,
				Tenant:   DefaultTenant,
				Database: DefaultDatabase,
				Metadata: req.Metadata,
			}
			f.collections[req.Name] = c
		}
		_ = json.NewEncoder(w).Encode(c)
	case len(parts) == 1 && r.Method == http.MethodGet:
		c, ok := f.collections[parts[0]]
		if !ok {
			notFound(w)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		if _, ok := f.collections[parts[0]]; !ok {
			notFound(w)
			return
		}
		f.deletes++
		delete(f.collections, parts[0])
		delete(f.records, "id-"+parts[0])
	case len(parts) == 2:
		f.handleCollection(w, r, parts[0], parts[1])
	default:
		notFound(w)
	}
}

func (f *fakeChroma) flat(id string) (ids, docs []string, metas []map[string]any) {
	for _, batch := range f.records[id] {
		ids = append(ids, batch.IDs...)
		docs = append(docs, batch.Documents...)
		metas = append(metas, batch.Metadatas...)
	}
	return ids, docs, metas
}

func (f *fakeChroma) handleCollection(w http.ResponseWriter, r *http.Request, id, action string) {
	switch action {
	case "upsert":
		var req fakeUpsert
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.records[id] = append(f.records[id], req)
		_, _ = w.Write([]byte("{}"))
	case "count":
		ids, _, _ := f.flat(id)
		_, _ = fmt.Fprint(w, len(ids))
	case "get":
		var req fakeGet
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.lastGet = req
		ids, docs, metas := f.flat(id)
		end := len(ids)
		if req.Limit != nil && req.Offset+*req.Limit < end {
			end = req.Offset + *req.Limit
		}
		start := min(req.Offset, end)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ids":       ids[start:end],
			"documents": docs[start:end],
			"metadatas": metas[start:end],
		})
	case "query":
		var req fakeQuery
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.lastQuery = req
		ids, docs, metas := f.flat(id)
		n := min(req.NResults, len(ids))
		dists := make([]float64, n)
		for i := range dists {
			dists[i] = 0.1 * float64(i)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ids":       [][]string{ids[:n]},
			"documents": [][]string{docs[:n]},
			"metadatas": [][]map[string]any{metas[:n]},
			"distances": [][]float64{dists},
		})
	default:
		notFound(w)
	}
}

func records(n int) []domain.Record {
	out := make([]domain.Record, n)
	for i := range out {
		out[i] = domain.Record{
			ID:        "r" + string(rune('a'+i)),
			Text:      "text",
			Metadata:  map[string]string{"chunk_index": "0"},
			Embedding: []float32{1, 0},
		}
	}
	return out
}

func closedServerURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestStore_Heartbeat(t *testing.T) {
	_, s := newFakeChroma(t)
	assert.NoError(t, s.Heartbeat(context.Background()))
	assert.Equal(t, "chroma", s.Name())
	assert.NoError(t, s.Close())
}

func TestStore_HeartbeatUnavailable(t *testing.T) {
	s, err := NewStore(Config{URL: closedServerURL()})
	require.NoError(t, err)

	err = s.Heartbeat(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestStore_CountUnavailable(t *testing.T) {
	s, err := NewStore(Config{URL: closedServerURL()})
	require.NoError(t, err)

	_, err = s.Count(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestStore_EnsureCollection(t *testing.T) {
	f, s := newFakeChroma(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureCollection(ctx, false))
	c := f.collections["procurement_docs"]
	assert.Equal(t, "cosine", c.Metadata["hnsw:space"])
	assert.Equal(t, collectionDescription, c.Metadata["description"])

	require.NoError(t, s.Upsert(ctx, records(2)))
	require.NoError(t, s.EnsureCollection(ctx, false))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.EnsureCollection(ctx, true))
	assert.Equal(t, 1, f.deletes)
	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_ResetIgnoresMissingCollection(t *testing.T) {
	f, s := newFakeChroma(t)
	require.NoError(t, s.EnsureCollection(context.Background(), true))
	assert.Zero(t, f.deletes)
}

func TestStore_MissingCollection(t *testing.T) {
	_, s := newFakeChroma(t)
	_, err := s.Count(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_UpsertRequiresEmbedding(t *testing.T) {
	_, s := newFakeChroma(t)
	require.NoError(t, s.EnsureCollection(context.Background(), false))
	err := s.Upsert(context.Background(), []domain.Record{{ID: "x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_UpsertSendsVectors(t *testing.T) {
	f, s := newFakeChroma(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, false))
	require.NoError(t, s.Upsert(ctx, records(1)))

	batch := f.records["id-procurement_docs"]
	require.Len(t, batch, 1)
	assert.Equal(t, []string{"ra"}, batch[0].IDs)
	assert.Equal(t, [][]float32{{1, 0}}, batch[0].Embeddings)
	assert.Equal(t, []string{"text"}, batch[0].Documents)
	assert.Equal(t, "0", batch[0].Metadatas[0]["chunk_index"])
}

func TestStore_GetPaging(t *testing.T) {
	f, s := newFakeChroma(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, false))
	require.NoError(t, s.Upsert(ctx, records(5)))

	got, err := s.Get(ctx, domain.GetFilter{Limit: 2, Offset: 3})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "rd", got[0].ID)
	assert.Equal(t, "text", got[0].Text)
	assert.Equal(t, "0", got[0].Metadata["chunk_index"])
	assert.Nil(t, f.lastGet.Where)

	_, err = s.Get(ctx, domain.GetFilter{Where: map[string]string{"document_type": "pdf"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"document_type": map[string]any{"$eq": "pdf"}}, f.lastGet.Where)
	assert.Nil(t, f.lastGet.Limit)
}

func TestStore_Query(t *testing.T) {
	f, s := newFakeChroma(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, false))
	require.NoError(t, s.Upsert(ctx, records(4)))

	results, err := s.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "ra", results[0].Record.ID)
	assert.Equal(t, "text", results[0].Record.Text)
	assert.InDelta(t, 0.8, results[2].Similarity(), 1e-6)
	assert.Equal(t, 3, f.lastQuery.NResults)
	assert.Equal(t, [][]float32{{1, 0}}, f.lastQuery.QueryEmbeddings)
	assert.Equal(t, []string{"documents", "metadatas", "distances"}, f.lastQuery.Include)

	_, err = s.Query(ctx, []float32{1}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWhereClause(t *testing.T) {
	tests := []struct {
		name  string
		where map[string]string
		want  string
	}{
		{name: "single key", where: map[string]string{"a": "1"}, want: `{"a":{"$eq":"1"}}`},
		{name: "sorted and", where: map[string]string{"b": "2", "a": "1"}, want: `{"$and":[{"a":{"$eq":"1"}},{"b":{"$eq":"2"}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(whereClause(tt.where))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
	assert.Nil(t, whereClause(nil))
}

func TestStringify(t *testing.T) {
	md, err := chroma.NewDocumentMetadataFromMap(map[string]any{"s": "x", "n": 12, "f": 1.5, "b": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"s": "x", "n": "12", "f": "1.5", "b": "true"}, stringify(md))
	assert.Empty(t, stringify(nil))
}

func TestPrecomputedRefusesText(t *testing.T) {
	_, err := precomputed{}.EmbedQuery(context.Background(), "tender")
	assert.ErrorIs(t, err, errPrecomputed)
	_, err = precomputed{}.EmbedDocuments(context.Background(), []string{"tender"})
	assert.ErrorIs(t, err, errPrecomputed)
}
