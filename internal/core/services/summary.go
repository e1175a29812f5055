package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/core/ports/driving"
	"github.com/custodia-labs/proctok/internal/logger"
)

// Ensure SummaryService implements the interfaces.
var (
	_ driving.SummaryService  = (*SummaryService)(nil)
	_ driven.PromptStoreAware = (*SummaryService)(nil)
)

const (
	// minTargetTokens is the floor for every summary budget.
	minTargetTokens = 100

	// minSentenceLength drops fragments shorter than this many bytes.
	minSentenceLength = 10

	summaryTemperature = 0.1

	// SummaryReportFile is written to the output directory after each run.
	SummaryReportFile = "summarization_report.json"
)

const localSummaryHeader = "# Procurement Document Summary - Opportunity Review Focus\n\n" +
	"## Essential Opportunity Review Criteria\n"

const defaultSummarySystemPrompt = "You are a procurement specialist focused on opportunity review criteria and compliance standards."

var summarySentenceEnd = regexp.MustCompile(`[.!?]+`)

// reviewPatterns score sentences for the local summary. One point per match.
var reviewPatterns = compileAll(
	// organisation and legal
	`(?i)(purchasing organization|legal requirements?|ministry|department|division)`,
	`(?i)(organization identification|background|importance of work)`,
	`(?i)(reason for procurement|why.*buy)`,
	// contract and service
	`(?i)(contract outcomes?|deliverables?|responsibilities)`,
	`(?i)(service area|role responsibilities|task descriptions?)`,
	`(?i)(outcomes?.*align|responsibilities.*detail)`,
	// skills
	`(?i)(mandatory skills?|minimum standards?|required skills?)`,
	`(?i)(years? of experience|minimum requirements?|qualifications?)`,
	`(?i)(evaluation criteria|skills? challenge|minimum standards?)`,
	// timeline
	`(?i)(procurement timeline|posting period|evaluation.*time)`,
	`(?i)(minimum.*days?|posting.*period|timeline.*planning)`,
	`(?i)(skills? challenge.*week|evaluation.*week)`,
	// budget
	`(?i)(budget guidance|budget.*align|20-25k|monthly.*rate)`,
	`(?i)(total budget|240-300k|financial.*expectation)`,
	`(?i)(budget.*calculation|standard.*rate)`,
	// extensions
	`(?i)(contract extension|legal language|team with us.*allow)`,
	`(?i)(extension.*length|contract.*extend)`,
	// vendors
	`(?i)(vendor.*information|proposal.*quality|submission.*standard)`,
	`(?i)(inadequate.*detail|vendor.*deter|proposal.*preparation)`,
	// general
	`(?i)(must|shall|required|mandatory|obligation|compliance)`,
	`(?i)(deadline|due date|submission date|closing date)`,
	`(?i)(criteria|requirement|standard|guideline|procedure)`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// SummaryService compresses exported documents into review summaries.
type SummaryService struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	now     func() time.Time
}

// NewSummaryService creates a summary service. llm may be nil.
func NewSummaryService(llm driven.LLMService) *SummaryService {
	return &SummaryService{llm: llm, now: time.Now}
}

// SetPromptStore sets the store used for LLM prompts.
func (s *SummaryService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// TargetTokens returns max(100, original*ratio).
func TargetTokens(originalTokens int, ratio float64) int {
	return max(minTargetTokens, int(float64(originalTokens)*ratio))
}

type scoredSentence struct {
	text  string
	score int
}

// LocalSummary builds an extractive summary within targetTokens.
// Sentences are ranked by review-pattern matches; ties keep document order.
func LocalSummary(text string, targetTokens int) string {
	var scored []scoredSentence
	for _, raw := range summarySentenceEnd.Split(text, -1) {
		sentence := strings.TrimSpace(raw)
		if len(sentence) < minSentenceLength {
			continue
		}
		score := 0
		for _, p := range reviewPatterns {
			score += len(p.FindAllStringIndex(sentence, -1))
		}
		if score > 0 {
			scored = append(scored, scoredSentence{text: sentence, score: score})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	var b strings.Builder
	b.WriteString(localSummaryHeader)
	used := 0
	for _, s := range scored {
		tokens, _ := EstimateTokens(s.text, domain.EstimateGPT)
		if used+tokens > targetTokens {
			break
		}
		used += tokens
		b.WriteString("- ")
		b.WriteString(s.text)
		b.WriteByte('\n')
	}
	return b.String()
}

// SummarizeText summarises one document's text.
func (s *SummaryService) SummarizeText(ctx context.Context, name, text string, useLLM bool, ratio float64) (string, domain.SummaryResult, error) {
	if ratio <= 0 || ratio > 1 {
		return "", domain.SummaryResult{}, fmt.Errorf("%w: compression ratio must be in (0, 1], got %v", domain.ErrInvalidInput, ratio)
	}

	original, _ := EstimateTokens(text, domain.EstimateGPT)
	target := TargetTokens(original, ratio)
	logger.Info("Creating summary for %s", name)
	logger.Info("Original tokens: %s", comma(original))
	logger.Info("Target tokens: %s", comma(target))

	var summary, method string
	if useLLM {
		out, err := s.llmSummary(ctx, text, target)
		if err != nil {
			if ctx.Err() != nil {
				return "", domain.SummaryResult{}, ctx.Err()
			}
			logger.Warn("LLM summary failed: %v, falling back to local processing", err)
			summary, method = LocalSummary(text, target), domain.SummaryLocalFallback
		} else {
			summary, method = out, domain.SummaryLLM
		}
	} else {
		summary, method = LocalSummary(text, target), domain.SummaryLocal
	}

	tokens, _ := EstimateTokens(summary, domain.EstimateGPT)
	var compression float64
	if original > 0 {
		compression = float64(tokens) / float64(original)
	}
	logger.Info("Summary created: %s tokens (%.1f%% of original)", comma(tokens), compression*100)

	return summary, domain.SummaryResult{
		DocumentName:     name,
		OriginalTokens:   original,
		SummaryTokens:    tokens,
		CompressionRatio: compression,
		TargetTokens:     target,
		Method:           method,
		CreatedAt:        domain.FormatTimestamp(s.now()),
	}, nil
}

func (s *SummaryService) llmSummary(ctx context.Context, text string, target int) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	system := s.prompt(driven.PromptSummarySystem, defaultSummarySystemPrompt)
	template := s.prompt(driven.PromptSummary, "Summarise the following procurement document in about %d tokens.\n\n%s")

	return s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: fmt.Sprintf(template, target, text)},
	}, driven.ChatOptions{MaxTokens: target, Temperature: summaryTemperature})
}

func (s *SummaryService) prompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	p, err := s.prompts.Load(name)
	if err != nil || p == "" {
		logger.Debug("prompt %s unavailable, using built-in: %v", name, err)
		return fallback
	}
	return p
}

type summaryStats struct {
	TotalDocuments      int     `json:"total_documents"`
	TotalOriginalTokens int     `json:"total_original_tokens"`
	TotalSummaryTokens  int     `json:"total_summary_tokens"`
	OverallCompression  float64 `json:"overall_compression_ratio"`
	AverageCompression  float64 `json:"average_compression_ratio"`
	ProcessingDate      string  `json:"processing_date"`
}

type summaryReportFile struct {
	SummaryStats    summaryStats           `json:"summary_stats"`
	DocumentDetails []domain.SummaryResult `json:"document_details"`
}

// Summarize summarises every full-text file in the input directory.
func (s *SummaryService) Summarize(ctx context.Context, req domain.SummaryRequest) (*domain.SummaryReport, error) {
	if req.InputDir == "" {
		req.InputDir = domain.DefaultExportDir
	}
	if req.OutputDir == "" {
		req.OutputDir = domain.DefaultSummaryDir
	}
	if req.CompressionRatio == 0 {
		req.CompressionRatio = domain.DefaultCompression
	}

	docs, err := findDocuments(req)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	report := &domain.SummaryReport{Details: []domain.SummaryResult{}}
	for _, path := range docs {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("Failed to read %s: %v", path, err)
			report.Skipped = append(report.Skipped, filepath.Base(path))
			continue
		}
		text := StripHeader(string(data))
		if strings.TrimSpace(text) == "" {
			logger.Warn("Empty document: %s", filepath.Base(path))
			report.Skipped = append(report.Skipped, filepath.Base(path))
			continue
		}

		summary, result, err := s.SummarizeText(ctx, filepath.Base(path), text, req.UseLLM, req.CompressionRatio)
		if err != nil {
			return nil, err
		}

		out := filepath.Join(req.OutputDir, domain.FileStem(path))
		if err := os.WriteFile(out+".txt", []byte(summary), 0o644); err != nil {
			return nil, fmt.Errorf("write summary: %w", err)
		}
		if err := writeJSON(out+".json", result); err != nil {
			return nil, err
		}
		result.SummaryFile = out + ".txt"
		logger.Info("Saved summary to: %s", result.SummaryFile)

		report.Details = append(report.Details, result)
		report.TotalOriginalTokens += result.OriginalTokens
		report.TotalSummaryTokens += result.SummaryTokens
	}

	report.Documents = len(report.Details)
	if report.TotalOriginalTokens > 0 {
		report.OverallCompression = float64(report.TotalSummaryTokens) / float64(report.TotalOriginalTokens)
	}

	if err := s.writeReport(req.OutputDir, report); err != nil {
		return nil, err
	}
	return report, nil
}

// findDocuments lists the .txt files to summarise.
func findDocuments(req domain.SummaryRequest) ([]string, error) {
	info, err := os.Stat(req.InputDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: input directory not found: %s", domain.ErrSourceUnavailable, req.InputDir)
	}

	if req.Document != "" {
		path := filepath.Join(req.InputDir, req.Document)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: document not found: %s", domain.ErrSourceUnavailable, path)
		}
		return []string{path}, nil
	}

	docs, err := filepath.Glob(filepath.Join(req.InputDir, "*.txt"))
	if err != nil {
		return nil, err
	}
	sort.Strings(docs)
	logger.Info("Found %d documents to process", len(docs))
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents found in %s", domain.ErrNotFound, req.InputDir)
	}
	return docs, nil
}

func (s *SummaryService) writeReport(dir string, report *domain.SummaryReport) error {
	var avg float64
	for _, d := range report.Details {
		avg += d.CompressionRatio
	}
	if len(report.Details) > 0 {
		avg /= float64(len(report.Details))
	}

	return writeJSON(filepath.Join(dir, SummaryReportFile), summaryReportFile{
		SummaryStats: summaryStats{
			TotalDocuments:      report.Documents,
			TotalOriginalTokens: report.TotalOriginalTokens,
			TotalSummaryTokens:  report.TotalSummaryTokens,
			OverallCompression:  report.OverallCompression,
			AverageCompression:  avg,
			ProcessingDate:      domain.FormatTimestamp(s.now()),
		},
		DocumentDetails: report.Details,
	})
}
