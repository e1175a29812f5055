package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/views/search"
)

func TestTUICmd_Registered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"tui"})

	require.NoError(t, err)
	assert.Same(t, tuiCmd, cmd)
	assert.Contains(t, tuiCmd.Long, "test queries")
}

func TestTUICmd_ResultsFlag(t *testing.T) {
	f := tuiCmd.Flags().Lookup("n-results")

	require.NotNil(t, f)
	assert.Equal(t, "n", f.Shorthand)
	assert.Equal(t, "10", f.DefValue)
	assert.Equal(t, 10, search.DefaultK)
}

func TestTUICmd_HelpOutput(t *testing.T) {
	out, err := execute(t, "tui", "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "full-screen search")
	assert.Contains(t, out, "--n-results")
}

func TestTUICmd_NotConfigured(t *testing.T) {
	app = nil
	searchService = nil

	err := runTUI(tuiCmd, nil)

	assert.ErrorIs(t, err, errNotConfigured)
}
