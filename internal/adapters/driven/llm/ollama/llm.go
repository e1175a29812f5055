// Package ollama summarises with a chat model on a local Ollama server, so
// --use-llm works without an API key. It is built on the eino chat model
// component.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollamaModel "github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/ollama/api"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = domain.DefaultOllamaURL
	DefaultLLMModel   = domain.DefaultOllamaLLMModel
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig selects the server and model. Zero fields take the defaults.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /api/chat without streaming.
type LLMService struct {
	base   ollamaModel.ChatModelConfig
	server *api.Client
}

func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: base URL %q: %v", domain.ErrInvalidInput, cfg.BaseURL, err)
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	return &LLMService{
		base: ollamaModel.ChatModelConfig{
			BaseURL:    cfg.BaseURL,
			HTTPClient: httpClient,
			Model:      cfg.Model,
		},
		server: api.NewClient(u, httpClient),
	}, nil
}

// chatModel builds a model for one call. The token cap is a model option
// in Ollama, not a request option, so it travels in the config.
func (s *LLMService) chatModel(ctx context.Context, opts driven.ChatOptions) (*ollamaModel.ChatModel, error) {
	cfg := s.base
	cfg.Options = &ollamaModel.Options{
		NumPredict:  opts.MaxTokens,
		Temperature: float32(opts.Temperature),
	}
	return ollamaModel.NewChatModel(ctx, &cfg)
}

// Chat returns the trimmed assistant reply. An empty reply counts as the
// model being unavailable so the summary falls back to extraction.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	cm, err := s.chatModel(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("%w: ollama: %v", domain.ErrLLMUnavailable, err)
	}

	input := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		input = append(input, toSchema(m))
	}

	reply, err := cm.Generate(ctx, input, model.WithTemperature(float32(opts.Temperature)))
	if err != nil {
		return "", fmt.Errorf("%w: ollama: %v", domain.ErrLLMUnavailable, err)
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return "", fmt.Errorf("%w: ollama %s returned an empty reply", domain.ErrLLMUnavailable, s.base.Model)
	}
	return strings.TrimSpace(reply.Content), nil
}

func toSchema(m driven.ChatMessage) *schema.Message {
	switch m.Role {
	case driven.RoleSystem:
		return schema.SystemMessage(m.Content)
	case driven.RoleAssistant:
		return schema.AssistantMessage(m.Content, nil)
	default:
		return schema.UserMessage(m.Content)
	}
}

func (s *LLMService) ModelName() string { return s.base.Model }

// Ping checks the server answers; it does not load the model.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.server.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: ollama: %v", domain.ErrLLMUnavailable, err)
	}
	return nil
}

func (s *LLMService) Close() error { return nil }
