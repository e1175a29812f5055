package driven

import "context"

// EmbeddingService turns chunk text and queries into vectors. The ollama
// adapter talks to a local server; the openai adapter goes through eino.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length, or 0 before the first call when the
	// model size is not known up front.
	Dimensions() int

	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}
