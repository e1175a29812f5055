package driving

import (
	"context"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

// SummaryService condenses exported documents.
type SummaryService interface {
	// Summarize processes every document in req.InputDir.
	Summarize(ctx context.Context, req domain.SummaryRequest) (*domain.SummaryReport, error)

	// SummarizeText summarises a single text. An LLM failure falls back
	// to the local summariser and is reported in the result's Method.
	SummarizeText(ctx context.Context, name, text string, useLLM bool, ratio float64) (string, domain.SummaryResult, error)
}
