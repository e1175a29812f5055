package cli

import (
	"context"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driving"
)

var (
	_ driving.IngestService      = (*mockIngestService)(nil)
	_ driving.SearchService      = (*mockSearchService)(nil)
	_ driving.TokenService       = (*mockTokenService)(nil)
	_ driving.ExportService      = (*mockExportService)(nil)
	_ driving.SummaryService     = (*mockSummaryService)(nil)
	_ driving.DiagnosticsService = (*mockDiagnosticsService)(nil)
)

type mockIngestService struct {
	result    *domain.IngestResult
	err       error
	lastReq   domain.IngestRequest
	lastSaved domain.SavedHTMLRequest
	runCalls  int
}

func (m *mockIngestService) Methods() []string { return []string{domain.MethodAuto} }

func (m *mockIngestService) ValidateMethod(string) error { return nil }

func (m *mockIngestService) Prepare(context.Context, bool) error { return nil }

func (m *mockIngestService) ProcessPDF(context.Context, string, string) ([]domain.Record, error) {
	return nil, m.err
}

func (m *mockIngestService) ProcessURL(context.Context, string, string) ([]domain.Record, error) {
	return nil, m.err
}

func (m *mockIngestService) ProcessSavedHTML(context.Context, string, string) ([]domain.Record, error) {
	return nil, m.err
}

func (m *mockIngestService) Store(_ context.Context, records []domain.Record) (int, error) {
	return len(records), m.err
}

func (m *mockIngestService) Run(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.runCalls++
	m.lastReq = req
	return m.result, m.err
}

func (m *mockIngestService) RunSavedHTML(_ context.Context, req domain.SavedHTMLRequest) (*domain.IngestResult, error) {
	m.lastSaved = req
	return m.result, m.err
}

type mockSearchService struct {
	hits       []domain.SearchHit
	stats      *domain.CollectionStats
	predefined []domain.PredefinedResult
	err        error
	lastQuery  string
	lastK      int
}

func (m *mockSearchService) Search(_ context.Context, query string, k int) ([]domain.SearchHit, error) {
	m.lastQuery, m.lastK = query, k
	return m.hits, m.err
}

func (m *mockSearchService) Stats(context.Context) (*domain.CollectionStats, error) {
	return m.stats, m.err
}

func (m *mockSearchService) RunPredefined(_ context.Context, k int) ([]domain.PredefinedResult, error) {
	m.lastK = k
	return m.predefined, m.err
}

type mockTokenService struct {
	report *domain.TokenReport
	err    error
}

func (m *mockTokenService) EstimateTokens(text, _ string) (int, error) {
	return len(text) / 4, nil
}

func (m *mockTokenService) Analyze(context.Context) (*domain.TokenReport, error) {
	return m.report, m.err
}

type mockExportService struct {
	result  *domain.ExportResult
	err     error
	lastDir string
}

func (m *mockExportService) Export(_ context.Context, outputDir string) (*domain.ExportResult, error) {
	m.lastDir = outputDir
	return m.result, m.err
}

type mockSummaryService struct {
	report  *domain.SummaryReport
	err     error
	lastReq domain.SummaryRequest
}

func (m *mockSummaryService) Summarize(_ context.Context, req domain.SummaryRequest) (*domain.SummaryReport, error) {
	m.lastReq = req
	return m.report, m.err
}

func (m *mockSummaryService) SummarizeText(
	_ context.Context, name, text string, _ bool, _ float64,
) (string, domain.SummaryResult, error) {
	return text, domain.SummaryResult{DocumentName: name, Method: domain.SummaryLocal}, m.err
}

type mockDiagnosticsService struct {
	results    []domain.CheckResult
	lastTarget string
}

func (m *mockDiagnosticsService) Run(_ context.Context, target string) []domain.CheckResult {
	m.lastTarget = target
	return m.results
}
