package domain

import "errors"

// Domain errors represent pipeline failures.
// Adapters wrap these so callers can branch with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidMethod indicates an unknown extraction, estimation or summary method.
	ErrInvalidMethod = errors.New("invalid method")

	// ErrUnsupportedType indicates an unknown document type or store backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSourceUnavailable indicates a file is missing, a URL is unreachable
	// or the page sits behind an authentication wall.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrExtractionEmpty indicates every extractor returned no usable text.
	ErrExtractionEmpty = errors.New("extraction returned no text")

	// ErrStoreUnavailable indicates the vector store could not be reached.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Summaries fall back to local extraction without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
