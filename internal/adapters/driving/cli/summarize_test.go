package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

func TestSummarizeCmd_Defaults(t *testing.T) {
	ts := setupTestServices(t)
	ts.summary.report = &domain.SummaryReport{
		Documents:           1,
		TotalOriginalTokens: 1000,
		TotalSummaryTokens:  100,
		OverallCompression:  0.1,
		Details: []domain.SummaryResult{
			{DocumentName: "tender.txt", OriginalTokens: 1000, SummaryTokens: 100, Method: domain.SummaryLocal},
		},
		Skipped: []string{"empty.txt"},
	}

	out, err := execute(t, "summarize")

	require.NoError(t, err)
	req := ts.summary.lastReq
	assert.Equal(t, domain.DefaultExportDir, req.InputDir)
	assert.Equal(t, domain.DefaultSummaryDir, req.OutputDir)
	assert.False(t, req.UseLLM)
	assert.InDelta(t, domain.DefaultCompression, req.CompressionRatio, 1e-9)

	assert.Contains(t, out, "Documents processed: 1")
	assert.Contains(t, out, "Overall compression: 10.0%")
	assert.Contains(t, out, "tender.txt: 1000 -> 100 tokens (local)")
	assert.Contains(t, out, "empty.txt: skipped")
}

func TestSummarizeCmd_Flags(t *testing.T) {
	ts := setupTestServices(t)
	in, out := t.TempDir(), t.TempDir()

	_, err := execute(t, "summarize",
		"--input-dir", in,
		"--output-dir", out,
		"--use-llm",
		"--model", "gpt-4o",
		"--compression-ratio", "0.25",
		"--document", "tender.txt",
	)

	require.NoError(t, err)
	req := ts.summary.lastReq
	assert.Equal(t, in, req.InputDir)
	assert.Equal(t, out, req.OutputDir)
	assert.True(t, req.UseLLM)
	assert.Equal(t, "tender.txt", req.Document)
	assert.InDelta(t, 0.25, req.CompressionRatio, 1e-9)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
}

func TestSummarizeCmd_LLMProvider(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "summarize", "--use-llm", "--llm-provider", "ollama")
	require.NoError(t, err)
	assert.Equal(t, domain.LLMProviderOllama, cfg.LLM.Provider)

	_, err = execute(t, "summarize", "--llm-provider", "gemini")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestSummarizeCmd_InvalidRatio(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "summarize", "--compression-ratio", "1.5")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummarizeCmd_Error(t *testing.T) {
	ts := setupTestServices(t)
	ts.summary.err = errors.New("input directory missing")

	_, err := execute(t, "summarize")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "summarize failed")
}
