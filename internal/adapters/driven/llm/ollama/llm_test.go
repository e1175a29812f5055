package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

type chatRequest struct {
	Model    string `json:"model"`
	Stream   *bool  `json:"stream"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Options map[string]any `json:"options"`
}

func newServer(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s, err := NewLLMService(LLMConfig{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return s
}

func reply(w http.ResponseWriter, content string) {
	_, _ = w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":` +
		string(mustJSON(content)) + `},"done":true}`))
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

func TestNewLLMService_Defaults(t *testing.T) {
	s, err := NewLLMService(LLMConfig{})
	require.NoError(t, err)

	assert.Equal(t, DefaultLLMModel, s.ModelName())
	assert.Equal(t, DefaultBaseURL, s.base.BaseURL)
	assert.Equal(t, DefaultLLMTimeout, s.base.HTTPClient.Timeout)
}

func TestNewLLMService_BadURL(t *testing.T) {
	_, err := NewLLMService(LLMConfig{BaseURL: "://no-scheme"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChat(t *testing.T) {
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultLLMModel, req.Model)
		if assert.NotNil(t, req.Stream) {
			assert.False(t, *req.Stream)
		}
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "text", req.Messages[1].Content)
		}
		assert.EqualValues(t, 120, req.Options["num_predict"])
		assert.InDelta(t, 0.3, req.Options["temperature"], 1e-6)

		reply(w, "  ## Summary\nKey dates.  ")
	})

	got, err := s.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "You summarise tenders."},
		{Role: driven.RoleUser, Content: "text"},
	}, driven.ChatOptions{MaxTokens: 120, Temperature: 0.3})

	require.NoError(t, err)
	assert.Equal(t, "## Summary\nKey dates.", got)
}

func TestChat_TokenCapPerCall(t *testing.T) {
	var caps []any
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		caps = append(caps, req.Options["num_predict"])
		reply(w, "ok")
	})

	msgs := []driven.ChatMessage{{Role: driven.RoleUser, Content: "x"}}
	_, err := s.Chat(context.Background(), msgs, driven.ChatOptions{MaxTokens: 50})
	require.NoError(t, err)
	_, err = s.Chat(context.Background(), msgs, driven.ChatOptions{})
	require.NoError(t, err)

	require.Len(t, caps, 2)
	assert.EqualValues(t, 50, caps[0])
	assert.Nil(t, caps[1])
	assert.Nil(t, s.base.Options)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"model \"llama3.2\" not found"}`))
		}},
		{"empty reply", func(w http.ResponseWriter, _ *http.Request) {
			reply(w, "   ")
		}},
		{"no body", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t, tt.handler)

			_, err := s.Chat(context.Background(), []driven.ChatMessage{{Role: driven.RoleUser, Content: "x"}}, driven.ChatOptions{})

			assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		})
	}
}

func TestChat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	s, err := NewLLMService(LLMConfig{BaseURL: url})
	require.NoError(t, err)

	_, err = s.Chat(context.Background(), []driven.ChatMessage{{Role: driven.RoleUser, Content: "x"}}, driven.ChatOptions{})

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestPing(t *testing.T) {
	ok := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, ok.Ping(context.Background()))

	bad := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	assert.ErrorIs(t, bad.Ping(context.Background()), domain.ErrLLMUnavailable)
}

func TestToSchema(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{driven.RoleSystem, "system"},
		{driven.RoleAssistant, "assistant"},
		{driven.RoleUser, "user"},
		{"tool", "user"},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, string(toSchema(driven.ChatMessage{Role: tt.role, Content: "c"}).Role))
		})
	}
}

func TestClose(t *testing.T) {
	s, err := NewLLMService(LLMConfig{})
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}
