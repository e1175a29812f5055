// Package ollama embeds chunks with a local Ollama model, built on the eino
// embedding component.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	ollamaEmbed "github.com/cloudwego/eino-ext/components/embedding/ollama"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/ollama/ollama/api"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = domain.DefaultOllamaURL
	DefaultModel   = "all-minilm"
	DefaultTimeout = 60 * time.Second
)

// knownDimensions avoids a round trip for the common models.
var knownDimensions = map[string]int{
	"all-minilm":        384,
	"nomic-embed-text":  768,
	"mxbai-embed-large": 1024,
}

// Config selects the server and model. Dimensions may be left zero for
// models missing from knownDimensions; it is then learned from the first
// response.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int
}

// heartbeater answers a liveness check.
type heartbeater interface {
	Heartbeat(ctx context.Context) error
}

type EmbeddingService struct {
	embedder embedding.Embedder
	server   heartbeater
	model    string

	mu         sync.RWMutex
	dimensions int
}

func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = knownDimensions[cfg.Model]
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: base URL %q: %v", domain.ErrInvalidInput, cfg.BaseURL, err)
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	embedder, err := ollamaEmbed.NewEmbedder(ctx, &ollamaEmbed.EmbeddingConfig{
		BaseURL:    cfg.BaseURL,
		HTTPClient: httpClient,
		Model:      cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: create embedder: %w", err)
	}

	s := NewWithEmbedder(embedder, cfg.Model, cfg.Dimensions)
	s.server = api.NewClient(base, httpClient)
	return s, nil
}

// NewWithEmbedder wraps an existing eino Embedder. Ping reports the server
// as unavailable until one is attached.
func NewWithEmbedder(embedder embedding.Embedder, model string, dimensions int) *EmbeddingService {
	if dimensions == 0 {
		dimensions = knownDimensions[model]
	}
	return &EmbeddingService{embedder: embedder, model: model, dimensions: dimensions}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch sends every text in a single request. Ollama must answer with
// exactly one vector per input.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	raw, err := s.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(raw) != len(texts) {
		return nil, fmt.Errorf("%w: ollama %s: got %d embeddings for %d texts",
			domain.ErrEmbeddingUnavailable, s.model, len(raw), len(texts))
	}

	vecs := make([][]float32, len(raw))
	for i, e := range raw {
		vecs[i] = make([]float32, len(e))
		for j, f := range e {
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

// Dimensions is 0 for an unknown model until the first successful call.
func (s *EmbeddingService) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensions
}

func (s *EmbeddingService) ModelName() string { return s.model }

// Ping checks the server answers; it does not load the model.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if s.server == nil {
		return fmt.Errorf("%w: ollama: no server configured", domain.ErrEmbeddingUnavailable)
	}
	if err := s.server.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: ollama: %v", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

func (s *EmbeddingService) Close() error { return nil }
