package driven

import "context"

// LLMService answers a chat exchange. summarize --use-llm is its only caller;
// a nil service means summaries stay extractive.
type LLMService interface {
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn. Role is RoleSystem, RoleUser or RoleAssistant.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions bounds a reply. Zero values leave the provider default.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}
