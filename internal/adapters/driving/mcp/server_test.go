package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("missing search service", func(t *testing.T) {
		server, err := NewServer(&Ports{})

		assert.ErrorIs(t, err, ErrMissingSearchService)
		assert.Nil(t, server)
	})

	t.Run("search only", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})

		require.NoError(t, err)
		assert.NotNil(t, server.Handler())
	})

	t.Run("search and tokens", func(t *testing.T) {
		_, err := NewServer(&Ports{Search: &mockSearchService{}, Tokens: &mockTokenService{}})
		assert.NoError(t, err)
	})
}

func TestServer_RunHTTP_StopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, "127.0.0.1:0") }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}
