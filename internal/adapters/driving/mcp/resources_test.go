package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

func TestExtractQuery(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "plain query",
			uri:      "proctok://search/budget",
			expected: "budget",
		},
		{
			name:     "escaped query",
			uri:      "proctok://search/evaluation%20criteria",
			expected: "evaluation criteria",
		},
		{
			name:     "invalid prefix",
			uri:      "file://search/budget",
			expected: "",
		},
		{
			name:     "bad escape",
			uri:      "proctok://search/%zz",
			expected: "",
		},
		{
			name:     "blank query",
			uri:      "proctok://search/%20",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractQuery(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleStatsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stats as JSON", func(t *testing.T) {
		mockSearch := &mockSearchService{
			stats: &domain.CollectionStats{Collection: "procurement_docs", Backend: "sqlite", Count: 7},
		}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		result, err := server.handleStatsResource(ctx, makeReadResourceRequest("proctok://collection/stats"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var got domain.CollectionStats
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
		assert.Equal(t, 7, got.Count)
		assert.Equal(t, "sqlite", got.Backend)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{err: errors.New("boom")}})
		require.NoError(t, err)

		_, err = server.handleStatsResource(ctx, makeReadResourceRequest("proctok://collection/stats"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading stats")
	})
}

func TestServer_handleTokensResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil token service returns empty object", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		result, err := server.handleTokensResource(ctx, makeReadResourceRequest("proctok://collection/tokens"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "{}", result.Contents[0].Text)
	})

	t.Run("returns report", func(t *testing.T) {
		tokens := &mockTokenService{report: &domain.TokenReport{
			Collection:     "procurement_docs",
			GPTTokens:      1200,
			Recommendation: domain.TierSmallContext,
		}}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Tokens: tokens})
		require.NoError(t, err)

		result, err := server.handleTokensResource(ctx, makeReadResourceRequest("proctok://collection/tokens"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"gpt_tokens": 1200`)
		assert.Contains(t, result.Contents[0].Text, `"small_context"`)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		tokens := &mockTokenService{err: errors.New("boom")}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Tokens: tokens})
		require.NoError(t, err)

		_, err = server.handleTokensResource(ctx, makeReadResourceRequest("proctok://collection/tokens"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "analysing tokens")
	})
}

func TestServer_handleSearchResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns hits for query", func(t *testing.T) {
		mockSearch := &mockSearchService{hits: []domain.SearchHit{{Rank: 1, ID: "a_chunk_0", Text: "budget"}}}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		result, err := server.handleSearchResource(ctx, makeReadResourceRequest("proctok://search/budget%20and%20pricing"))

		require.NoError(t, err)
		assert.Equal(t, "budget and pricing", mockSearch.lastQuery)
		assert.Equal(t, defaultLimit, mockSearch.lastK)
		assert.Contains(t, result.Contents[0].Text, "a_chunk_0")
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		_, err = server.handleSearchResource(ctx, makeReadResourceRequest("proctok://search/"))

		require.Error(t, err)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{err: errors.New("boom")}})
		require.NoError(t, err)

		_, err = server.handleSearchResource(ctx, makeReadResourceRequest("proctok://search/budget"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "searching")
	})
}
