package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

func sampleHits() []domain.SearchHit {
	return []domain.SearchHit{
		{
			Rank: 1, ID: "c1", Text: "Evaluation criteria:\n  price 40%", Similarity: 0.81, Distance: 0.19,
			Metadata: map[string]string{domain.MetaTitle: "Digital Tender", domain.MetaSource: "tender.pdf"},
		},
		{
			Rank: 2, ID: "c2", Text: "Budget range", Similarity: 0.55, Distance: 0.45,
			Metadata: map[string]string{domain.MetaFilename: "pricing.pdf"},
		},
	}
}

func TestSearchCmd_Flags(t *testing.T) {
	f := searchCmd.Flags().Lookup("n-results")
	require.NotNil(t, f)
	assert.Equal(t, "n", f.Shorthand)
	assert.Equal(t, "5", f.DefValue)

	for _, name := range []string{"query", "stats", "test-all", "json"} {
		assert.NotNil(t, searchCmd.Flags().Lookup(name), name)
	}
}

func TestSearchCmd_Query(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.hits = sampleHits()

	out, err := execute(t, "search", "--query", "evaluation criteria", "-n", "3")

	require.NoError(t, err)
	assert.Equal(t, "evaluation criteria", ts.search.lastQuery)
	assert.Equal(t, 3, ts.search.lastK)
	assert.Contains(t, out, `Results for "evaluation criteria"`)
	assert.Contains(t, out, "[1] Digital Tender (similarity 0.810)")
	assert.Contains(t, out, "Source: tender.pdf")
	assert.Contains(t, out, "Evaluation criteria: price 40%")
	assert.Contains(t, out, "[2] pricing.pdf")
}

func TestSearchCmd_NoResults(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "search", "--query", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_QueryJSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.hits = sampleHits()

	out, err := execute(t, "search", "--query", "budget", "--json")

	require.NoError(t, err)
	var got []domain.SearchHit
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ID)
}

func TestSearchCmd_TestAll(t *testing.T) {
	ts := setupTestServices(t)
	top := sampleHits()[0]
	ts.search.predefined = []domain.PredefinedResult{
		{Query: "evaluation criteria", Results: 5, Top: &top},
		{Query: "sprint with us", Results: 0},
		{Query: "budget", Error: "timeout"},
	}

	out, err := execute(t, "search", "--test-all")

	require.NoError(t, err)
	assert.Equal(t, 5, ts.search.lastK)
	assert.Contains(t, out, "PASS evaluation criteria")
	assert.Contains(t, out, "top: Digital Tender (0.810)")
	assert.Contains(t, out, "FAIL sprint with us")
	assert.Contains(t, out, "error: timeout")
	assert.Contains(t, out, "1/3 queries returned results")
}

func TestSearchCmd_StatsDefault(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.stats = &domain.CollectionStats{
		Collection:     "procurement_docs",
		Backend:        "chroma",
		Count:          321,
		SampleMetadata: map[string]string{domain.MetaSource: "a.pdf", domain.MetaChunkIndex: "0"},
	}

	out, err := execute(t, "search")

	require.NoError(t, err)
	assert.Contains(t, out, "Collection: procurement_docs")
	assert.Contains(t, out, "Backend: chroma")
	assert.Contains(t, out, "Documents: 321")
	assert.Contains(t, out, "chunk_index: 0")
	assert.Less(t, strings.Index(out, "chunk_index"), strings.Index(out, "source:"))
}

func TestSearchCmd_StatsJSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.stats = &domain.CollectionStats{Collection: "c", Count: 7}

	out, err := execute(t, "search", "--stats", "--json")

	require.NoError(t, err)
	var got domain.CollectionStats
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 7, got.Count)
}

func TestSearchCmd_InvalidN(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "search", "--query", "x", "-n", "0")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchCmd_ServiceError(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.err = errors.New("embedding failed")

	_, err := execute(t, "search", "--query", "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestHitTitle(t *testing.T) {
	assert.Equal(t, "T", hitTitle(domain.SearchHit{ID: "id", Metadata: map[string]string{domain.MetaTitle: "T"}}))
	assert.Equal(t, "f.pdf", hitTitle(domain.SearchHit{ID: "id", Metadata: map[string]string{domain.MetaFilename: "f.pdf"}}))
	assert.Equal(t, "id", hitTitle(domain.SearchHit{ID: "id"}))
}
