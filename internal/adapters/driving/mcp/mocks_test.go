package mcp

import (
	"context"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	hits      []domain.SearchHit
	stats     *domain.CollectionStats
	err       error
	lastQuery string
	lastK     int
}

func (m *mockSearchService) Search(_ context.Context, query string, k int) ([]domain.SearchHit, error) {
	m.lastQuery = query
	m.lastK = k
	return m.hits, m.err
}

func (m *mockSearchService) Stats(_ context.Context) (*domain.CollectionStats, error) {
	return m.stats, m.err
}

func (m *mockSearchService) RunPredefined(_ context.Context, _ int) ([]domain.PredefinedResult, error) {
	return nil, m.err
}

// mockTokenService is a mock implementation of driving.TokenService.
type mockTokenService struct {
	report *domain.TokenReport
	err    error
}

func (m *mockTokenService) EstimateTokens(text, _ string) (int, error) {
	return len(text) / 4, nil
}

func (m *mockTokenService) Analyze(_ context.Context) (*domain.TokenReport, error) {
	return m.report, m.err
}
