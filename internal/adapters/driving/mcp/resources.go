package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for proctok resources.
const uriScheme = "proctok://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "collection/stats",
		Name:        "collection-stats",
		Description: "Statistics of the stored collection",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "collection/tokens",
		Name:        "token-report",
		Description: "Token estimates and context window fit for the stored collection",
		MIMEType:    "application/json",
	}, s.handleTokensResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "search/{query}",
		Name:        "search-results",
		Description: "Top matches for a URL-escaped query",
		MIMEType:    "application/json",
	}, s.handleSearchResource)
}

// handleStatsResource returns the collection statistics.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Search.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return jsonResource(req.Params.URI, stats)
}

// handleTokensResource returns the token report, or an empty object without a token service.
func (s *Server) handleTokensResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Tokens == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "{}",
			}},
		}, nil
	}

	report, err := s.ports.Tokens.Analyze(ctx)
	if err != nil {
		return nil, fmt.Errorf("analysing tokens: %w", err)
	}
	return jsonResource(req.Params.URI, report)
}

// handleSearchResource returns the top matches for the query in the URI.
func (s *Server) handleSearchResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	query := extractQuery(req.Params.URI)
	if query == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	hits, err := s.ports.Search.Search(ctx, query, defaultLimit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	return jsonResource(req.Params.URI, hits)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractQuery extracts the unescaped query from a URI like proctok://search/{query}.
func extractQuery(uri string) string {
	const prefix = uriScheme + "search/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	q, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(q)
}
