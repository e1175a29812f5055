package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/core/ports/driving"
	"github.com/custodia-labs/proctok/internal/logger"
)

// Ensure DiagnosticsService implements the interface.
var _ driving.DiagnosticsService = (*DiagnosticsService)(nil)

// DefaultCheckURL is fetched to check basic connectivity.
const DefaultCheckURL = "https://httpbin.org/html"

// Check names.
const (
	CheckConnectivity = "http-connectivity"
	CheckTargetFetch  = "target-fetch"
	CheckExtraction   = "target-extraction"
	CheckBrowser      = "browser"
	CheckStore        = "vector-store"
	CheckEmbedding    = "embedding"
)

// DiagnosticsService checks each external dependency in turn.
// Any dependency may be nil; its check then fails with "not configured".
type DiagnosticsService struct {
	http      driven.PageFetcher
	browser   driven.PageFetcher
	extractor driven.Extractor
	store     driven.VectorStore
	embedder  driven.EmbeddingService
	checkURL  string
}

// NewDiagnosticsService creates a diagnostics service.
func NewDiagnosticsService(
	httpFetcher, browser driven.PageFetcher,
	extractor driven.Extractor,
	store driven.VectorStore,
	embedder driven.EmbeddingService,
) *DiagnosticsService {
	return &DiagnosticsService{
		http:      httpFetcher,
		browser:   browser,
		extractor: extractor,
		store:     store,
		embedder:  embedder,
		checkURL:  DefaultCheckURL,
	}
}

// SetCheckURL overrides the connectivity check URL.
func (s *DiagnosticsService) SetCheckURL(u string) {
	if u != "" {
		s.checkURL = u
	}
}

// Run executes every check. An empty target skips the target checks.
// Checks never abort each other.
func (s *DiagnosticsService) Run(ctx context.Context, target string) []domain.CheckResult {
	logger.Section("Diagnostics")

	var results []domain.CheckResult
	add := func(r domain.CheckResult) {
		if r.Passed {
			logger.Info("%s: ok: %s", r.Name, r.Message)
		} else {
			logger.Warn("%s: failed: %s", r.Name, r.Message)
		}
		results = append(results, r)
	}

	add(s.fetchCheck(ctx, CheckConnectivity, s.http, s.checkURL))
	if target != "" {
		add(s.fetchCheck(ctx, CheckTargetFetch, s.http, target))
		add(s.extractionCheck(ctx, target))
	}

	browserURL := target
	if browserURL == "" {
		browserURL = s.checkURL
	}
	add(s.fetchCheck(ctx, CheckBrowser, s.browser, browserURL))
	add(s.storeCheck(ctx))
	add(s.embeddingCheck(ctx))
	return results
}

func notConfigured(name string) domain.CheckResult {
	return domain.CheckResult{Name: name, Message: "not configured"}
}

func (s *DiagnosticsService) fetchCheck(ctx context.Context, name string, f driven.PageFetcher, url string) domain.CheckResult {
	if f == nil {
		return notConfigured(name)
	}
	page, err := f.Fetch(ctx, url)
	if err != nil {
		return domain.CheckResult{Name: name, Message: err.Error()}
	}
	return domain.CheckResult{
		Name:    name,
		Passed:  true,
		Message: fmt.Sprintf("%s: status %d, %s bytes", url, page.StatusCode, comma(len(page.HTML))),
	}
}

func (s *DiagnosticsService) extractionCheck(ctx context.Context, url string) domain.CheckResult {
	if s.extractor == nil {
		return notConfigured(CheckExtraction)
	}
	doc, err := s.extractor.Extract(ctx, url, driven.ExtractOptions{Method: domain.MethodAuto})
	if err != nil {
		return domain.CheckResult{Name: CheckExtraction, Message: err.Error()}
	}
	return domain.CheckResult{
		Name:    CheckExtraction,
		Passed:  true,
		Message: fmt.Sprintf("%s characters via %s", comma(utf8.RuneCountInString(doc.Text)), doc.Method),
	}
}

func (s *DiagnosticsService) storeCheck(ctx context.Context) domain.CheckResult {
	if s.store == nil {
		return notConfigured(CheckStore)
	}
	if err := s.store.Heartbeat(ctx); err != nil {
		return domain.CheckResult{Name: CheckStore, Message: err.Error()}
	}
	return domain.CheckResult{Name: CheckStore, Passed: true, Message: s.store.Name() + " reachable"}
}

func (s *DiagnosticsService) embeddingCheck(ctx context.Context) domain.CheckResult {
	if s.embedder == nil {
		return notConfigured(CheckEmbedding)
	}
	if err := s.embedder.Ping(ctx); err != nil {
		return domain.CheckResult{Name: CheckEmbedding, Message: err.Error()}
	}
	return domain.CheckResult{Name: CheckEmbedding, Passed: true, Message: s.embedder.ModelName() + " reachable"}
}
