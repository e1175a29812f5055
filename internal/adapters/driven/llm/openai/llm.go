// Package openai provides an LLM service adapter for OpenAI chat models,
// built on the eino chat model component.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = domain.DefaultLLMModel
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// generator is the part of an eino chat model the service needs.
type generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// LLMService provides chat completions through an eino chat model.
type LLMService struct {
	model generator
	name  string
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(ctx context.Context, cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai: API key is required (set OPENAI_API_KEY)", domain.ErrLLMUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	cm, err := openaiModel.NewChatModel(ctx, &openaiModel.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: create chat model: %w", err)
	}
	return &LLMService{model: cm, name: cfg.Model}, nil
}

// Chat sends messages and returns the assistant reply.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	input := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		input = append(input, toSchema(m))
	}

	var callOpts []model.Option
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, model.WithMaxTokens(opts.MaxTokens))
	}
	callOpts = append(callOpts, model.WithTemperature(float32(opts.Temperature)))

	reply, err := s.model.Generate(ctx, input, callOpts...)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", domain.ErrLLMUnavailable, err)
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return "", fmt.Errorf("%w: openai: empty reply", domain.ErrLLMUnavailable)
	}
	return strings.TrimSpace(reply.Content), nil
}

func toSchema(m driven.ChatMessage) *schema.Message {
	switch m.Role {
	case "system":
		return schema.SystemMessage(m.Content)
	case "assistant":
		return schema.AssistantMessage(m.Content, nil)
	default:
		return schema.UserMessage(m.Content)
	}
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.name
}

// Ping sends a minimal chat request.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.Chat(ctx, []driven.ChatMessage{{Role: driven.RoleUser, Content: "Reply with OK."}}, driven.ChatOptions{MaxTokens: 5})
	return err
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
