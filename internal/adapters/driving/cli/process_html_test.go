package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

func TestProcessHTMLCmd_NoFiles(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "process-html")

	require.NoError(t, err)
	assert.Contains(t, out, "Quick start:")
	assert.Empty(t, ts.ingest.lastSaved.Files)
}

func TestProcessHTMLCmd_Files(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingest.result = &domain.IngestResult{Processed: []string{"a.html", "b.html"}, Records: 9}

	out, err := execute(t, "--collection-name", "saved_pages", "process-html", "a.html", "b.html",
		"--original-url", "https://example.gov/opp", "--reset-collection")

	require.NoError(t, err)
	assert.Equal(t, []string{"a.html", "b.html"}, ts.ingest.lastSaved.Files)
	assert.Equal(t, "https://example.gov/opp", ts.ingest.lastSaved.OriginalURL)
	assert.True(t, ts.ingest.lastSaved.Reset)
	assert.Contains(t, out, "Processed files: 2/2")
	assert.Contains(t, out, "Total chunks added: 9")
	assert.Contains(t, out, "Collection: saved_pages")
}

func TestProcessHTMLCmd_ChunkFlags(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "process-html", "page.html", "--chunk-size", "300", "--chunk-overlap", "30")

	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Chunking.ChunkSize)
	assert.Equal(t, 30, cfg.Chunking.Overlap)
}
