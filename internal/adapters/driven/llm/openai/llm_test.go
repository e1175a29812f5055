package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

// mockModel records the messages it receives.
type mockModel struct {
	reply    string
	err      error
	received []*schema.Message
	opts     int
}

func (m *mockModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.received = input
	m.opts = len(opts)
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(context.Background(), LLMConfig{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestChat(t *testing.T) {
	m := &mockModel{reply: "  Summary text.  "}
	s := &LLMService{model: m, name: "gpt-4o-mini"}

	out, err := s.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "You are a procurement specialist."},
		{Role: "user", Content: "Summarise."},
	}, driven.ChatOptions{MaxTokens: 200, Temperature: 0.1})
	require.NoError(t, err)

	assert.Equal(t, "Summary text.", out)
	require.Len(t, m.received, 2)
	assert.Equal(t, schema.System, m.received[0].Role)
	assert.Equal(t, schema.User, m.received[1].Role)
	assert.Equal(t, 2, m.opts)
	assert.Equal(t, "gpt-4o-mini", s.ModelName())
}

func TestChat_Errors(t *testing.T) {
	failing := &LLMService{model: &mockModel{err: errors.New("rate limited")}}
	_, err := failing.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Error(t, failing.Ping(context.Background()))

	empty := &LLMService{model: &mockModel{reply: " "}}
	_, err = empty.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestToSchema(t *testing.T) {
	assert.Equal(t, schema.Assistant, toSchema(driven.ChatMessage{Role: "assistant", Content: "a"}).Role)
	assert.Equal(t, schema.User, toSchema(driven.ChatMessage{Role: "other", Content: "a"}).Role)
}
