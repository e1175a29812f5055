// Package openai provides an embedding service adapter for the OpenAI API,
// built on the eino embedding component.
package openai

import (
	"context"
	"fmt"
	"sync"
	"time"

	openaiEmbed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second
)

// Model dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions requests shortened vectors from text-embedding-3-* models.
	Dimensions int
}

// EmbeddingService generates embeddings through an eino Embedder.
type EmbeddingService struct {
	embedder embedding.Embedder
	model    string

	mu         sync.RWMutex
	dimensions int
}

// NewEmbeddingService creates an OpenAI embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai: API key is required (set OPENAI_API_KEY)", domain.ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	ecfg := &openaiEmbed.EmbeddingConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}
	if cfg.Dimensions > 0 {
		dims := cfg.Dimensions
		ecfg.Dimensions = &dims
	}

	embedder, err := openaiEmbed.NewEmbedder(ctx, ecfg)
	if err != nil {
		return nil, fmt.Errorf("openai: create embedder: %w", err)
	}
	return NewWithEmbedder(embedder, cfg.Model, cfg.Dimensions), nil
}

// NewWithEmbedder wraps an existing eino Embedder.
func NewWithEmbedder(embedder embedding.Embedder, model string, dimensions int) *EmbeddingService {
	if dimensions == 0 {
		dimensions = modelDimensions[model]
	}
	return &EmbeddingService{embedder: embedder, model: model, dimensions: dimensions}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one API call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	raw, err := s.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(raw) != len(texts) {
		return nil, fmt.Errorf("%w: openai: got %d embeddings for %d texts",
			domain.ErrEmbeddingUnavailable, len(raw), len(texts))
	}

	vecs := make([][]float32, len(raw))
	for i, v := range raw {
		vecs[i] = make([]float32, len(v))
		for j, f := range v {
			vecs[i][j] = float32(f)
		}
	}

	s.mu.Lock()
	if s.dimensions == 0 {
		s.dimensions = len(vecs[0])
	}
	s.mu.Unlock()
	return vecs, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping embeds a one-word input. OpenAI has no free health endpoint.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.Embed(ctx, "ping")
	return err
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
