package web

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	r := NewRateLimiter(1, 2)
	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow())
}

func TestRateLimiter_Unlimited(t *testing.T) {
	r := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, r.Allow())
	}
}

func TestRateLimiter_Backoff(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRateLimiter(0, 1)
	r.now = func() time.Time { return now }

	assert.Equal(t, 5*time.Second, r.Backoff("5"))
	assert.False(t, r.Allow())

	now = now.Add(6 * time.Second)
	assert.True(t, r.Allow())

	assert.Equal(t, defaultBackoff, r.Backoff(""))
	assert.Equal(t, defaultBackoff, r.Backoff("Wed, 21 Oct 2015 07:28:00 GMT"))
}

func TestRateLimiter_WaitCancelledDuringBackoff(t *testing.T) {
	r := NewRateLimiter(0, 1)
	r.Backoff("30")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.Canceled)
}
