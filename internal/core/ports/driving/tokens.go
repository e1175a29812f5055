package driving

import (
	"context"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

// TokenService estimates token counts.
type TokenService interface {
	// EstimateTokens estimates text with one of the domain.Estimate* methods.
	EstimateTokens(text, method string) (int, error)

	// Analyze reads every stored chunk and builds a token report.
	Analyze(ctx context.Context) (*domain.TokenReport, error)
}
