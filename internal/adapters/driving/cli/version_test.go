package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	orig := version
	version = v
	t.Cleanup(func() { version = orig })
}

func TestVersionCmd(t *testing.T) {
	setupTestServices(t)
	withVersion(t, "1.2.3")

	out, err := execute(t, "version", "--store", "sqlite", "--collection-name", "tenders")

	require.NoError(t, err)
	assert.Contains(t, out, "proctok 1.2.3 (go")
	assert.Contains(t, out, "store:    sqlite, collection tenders")
	assert.Contains(t, out, "embedder: ollama")
}

func TestVersionCmd_Short(t *testing.T) {
	setupTestServices(t)
	withVersion(t, "dev")

	out, err := execute(t, "version", "--short")

	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}
