package status

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/keymap"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestBar_View_States(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *Bar)
		want  string
	}{
		{"ready", func(*Bar) {}, "Ready"},
		{"ready with message", func(b *Bar) { b.SetMessage("procurement_docs") }, "procurement_docs"},
		{"loading", func(b *Bar) { b.SetState(StateLoading) }, "Loading..."},
		{"searching", func(b *Bar) { b.SetState(StateSearching) }, "Searching..."},
		{"results", func(b *Bar) { b.SetResults(7) }, "7 chunks"},
		{"no results", func(b *Bar) { b.SetResults(0) }, "No matching chunks"},
		{"stats", func(b *Bar) { b.SetState(StateStats); b.SetMessage("42 chunks") }, "42 chunks"},
		{"error", func(b *Bar) { b.SetError(errors.New("store unavailable")) }, "Error: store unavailable"},
		{"error without text", func(b *Bar) { b.SetError(nil) }, "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil)
			tt.setup(bar)
			assert.Contains(t, bar.View(), tt.want)
		})
	}
}

func TestBar_SetState_ClearsMessage(t *testing.T) {
	bar := NewBar(nil)
	bar.SetMessage("old")

	bar.SetState(StateLoading)

	assert.Equal(t, StateLoading, bar.State())
	assert.Empty(t, bar.Message())
}

func TestBar_SetResults(t *testing.T) {
	bar := NewBar(nil)

	bar.SetResults(3)

	assert.Equal(t, StateResults, bar.State())
	assert.Equal(t, 3, bar.ResultCount())
}

func TestBar_Hints(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil, km.StatsHelp()...)
	bar.SetWidth(120)

	out := bar.View()
	assert.Contains(t, out, "test queries")
	assert.Contains(t, out, "refresh")

	bar.SetHints(km.ResultsHelp()...)
	out = bar.View()
	assert.Contains(t, out, "read chunk")
	assert.NotContains(t, out, "test queries")
}

func TestBar_Reset(t *testing.T) {
	bar := NewBar(nil)
	bar.SetResults(5)

	bar.Reset()

	assert.Equal(t, StateReady, bar.State())
	assert.Zero(t, bar.ResultCount())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "searching", StateSearching.String())
	assert.Equal(t, "error", StateError.String())
	assert.Equal(t, "unknown", State(99).String())
}
