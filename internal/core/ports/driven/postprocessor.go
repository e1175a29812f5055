package driven

import (
	"context"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

// TextProcessor is one named cleaning step applied to extracted text.
// Processors are chained in a pipeline (e.g., boilerplate removal, whitespace collapse).
type TextProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process returns the transformed text.
	Process(ctx context.Context, text string) (string, error)
}

// TextPipeline chains multiple TextProcessors.
type TextPipeline interface {
	// Process runs the text through all processors in order.
	Process(ctx context.Context, text string) (string, error)
}

// SentenceSplitter splits text into sentences.
// Implementations must not drop non-blank text.
type SentenceSplitter interface {
	Split(text string) []string
}

// Chunker splits cleaned text into overlapping chunks.
type Chunker interface {
	Chunk(text string) ([]domain.Chunk, error)
}
