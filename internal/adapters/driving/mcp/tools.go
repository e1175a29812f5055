package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

// defaultLimit is the number of results returned when the caller gives none.
const defaultLimit = 5

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the text to find similar procurement passages for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Rank       int     `json:"rank"`
	ID         string  `json:"id"`
	Title      string  `json:"title,omitempty"`
	Source     string  `json:"source,omitempty"`
	ChunkIndex string  `json:"chunk_index,omitempty"`
	Similarity float64 `json:"similarity"`
	Content    string  `json:"content"`
}

// StatsInput is the input schema for the collection_stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the collection_stats tool.
type StatsOutput struct {
	Collection     string            `json:"collection"`
	Backend        string            `json:"backend"`
	Count          int               `json:"count"`
	SampleMetadata map[string]string `json:"sample_metadata,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Semantic search across the stored procurement document chunks",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "collection_stats",
		Description: "Report the vector store collection, backend and number of stored chunks",
	}, s.handleStats)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	hits, err := s.ports.Search.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}
	for i := range hits {
		output.Results[i] = SearchResultOutput{
			Rank:       hits[i].Rank,
			ID:         hits[i].ID,
			Title:      hits[i].Metadata[domain.MetaTitle],
			Source:     hits[i].Metadata[domain.MetaSource],
			ChunkIndex: hits[i].Metadata[domain.MetaChunkIndex],
			Similarity: hits[i].Similarity,
			Content:    hits[i].Text,
		}
	}

	return nil, output, nil
}

// handleStats handles the collection_stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Search.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, StatsOutput{
		Collection:     stats.Collection,
		Backend:        stats.Backend,
		Count:          stats.Count,
		SampleMetadata: stats.SampleMetadata,
	}, nil
}
