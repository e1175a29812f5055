package driving

import (
	"context"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

// ExportService reconstructs stored documents as text and JSON files.
type ExportService interface {
	Export(ctx context.Context, outputDir string) (*domain.ExportResult, error)
}
