package driving

import (
	"context"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

// DiagnosticsService checks connectivity to every external dependency.
type DiagnosticsService interface {
	// Run executes every check. target is optional.
	Run(ctx context.Context, target string) []domain.CheckResult
}
