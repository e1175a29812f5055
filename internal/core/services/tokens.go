package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/core/ports/driving"
	"github.com/custodia-labs/proctok/internal/logger"
)

// Ensure TokenService implements the interface.
var _ driving.TokenService = (*TokenService)(nil)

const (
	// analyzePageSize is the Get limit used while reading the collection.
	analyzePageSize = 1000

	// sampleChunks is the "top N chunks" size for the prompt estimate.
	sampleChunks = 10
)

// TokenService estimates token counts for stored chunks.
type TokenService struct {
	store      driven.VectorStore
	collection string
	pageSize   int
}

// NewTokenService creates a new token service.
func NewTokenService(store driven.VectorStore, collection string) *TokenService {
	return &TokenService{store: store, collection: collection, pageSize: analyzePageSize}
}

// EstimateTokens estimates the token count of text. Lengths count runes.
func EstimateTokens(text, method string) (int, error) {
	switch method {
	case domain.EstimateGPT, domain.EstimateClaude:
		return utf8.RuneCountInString(text) / 4, nil
	case domain.EstimateCharacters:
		return utf8.RuneCountInString(text), nil
	case domain.EstimateWords:
		return len(strings.Fields(text)), nil
	default:
		return 0, fmt.Errorf("%w: token estimation method %q", domain.ErrInvalidMethod, method)
	}
}

// EstimateTokens estimates the token count of text.
func (s *TokenService) EstimateTokens(text, method string) (int, error) {
	return EstimateTokens(text, method)
}

// Analyze reads every stored chunk and reports sizes against model context windows.
func (s *TokenService) Analyze(ctx context.Context) (*domain.TokenReport, error) {
	logger.Section("Token Analysis")

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no documents in collection %s", domain.ErrNotFound, s.collection)
	}

	texts := s.readAll(ctx, total)
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no document content retrieved", domain.ErrNotFound)
	}

	report := &domain.TokenReport{
		Collection:    s.collection,
		StoredCount:   total,
		Retrieved:     len(texts),
		MinCharacters: utf8.RuneCountInString(texts[0]),
	}
	for _, t := range texts {
		n := utf8.RuneCountInString(t)
		report.TotalCharacters += n
		report.TotalWords += len(strings.Fields(t))
		report.MaxCharacters = max(report.MaxCharacters, n)
		report.MinCharacters = min(report.MinCharacters, n)
	}
	report.AvgCharacters = float64(report.TotalCharacters) / float64(len(texts))

	// Estimates over the concatenation equal the sum of lengths / 4.
	report.GPTTokens = report.TotalCharacters / 4
	report.ClaudeTokens = report.TotalCharacters / 4

	for _, w := range domain.ContextWindows {
		report.Windows = append(report.Windows, domain.WindowFit{
			Model:       w.Model,
			Tokens:      w.Tokens,
			Fits:        report.GPTTokens <= w.Tokens,
			PercentUsed: float64(report.GPTTokens) / float64(w.Tokens) * 100,
		})
	}
	report.Recommendation = domain.RecommendationFor(report.GPTTokens)

	report.SampleChunks = min(sampleChunks, len(texts))
	sample := 0
	for _, t := range texts[:report.SampleChunks] {
		sample += utf8.RuneCountInString(t)
	}
	report.SampleTokens = sample / 4

	return report, nil
}

// readAll pages through the store. A failing page stops paging with a warning.
func (s *TokenService) readAll(ctx context.Context, total int) []string {
	var texts []string
	for offset := 0; offset < total; {
		limit := min(s.pageSize, total-offset)
		page, err := s.store.Get(ctx, domain.GetFilter{Limit: limit, Offset: offset})
		if err != nil {
			logger.Warn("Error retrieving batch at offset %d: %v", offset, err)
			break
		}
		for _, r := range page {
			texts = append(texts, r.Text)
		}
		logger.Info("Retrieved %d / %d documents", len(texts), total)
		if len(page) == 0 {
			break
		}
		offset += limit
	}
	return texts
}
