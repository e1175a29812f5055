package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

func sampleTokenReport() *domain.TokenReport {
	return &domain.TokenReport{
		Collection:      "procurement_docs",
		StoredCount:     1234,
		Retrieved:       1234,
		TotalCharacters: 98765,
		TotalWords:      15000,
		AvgCharacters:   80,
		MinCharacters:   10,
		MaxCharacters:   4500,
		GPTTokens:       24691,
		ClaudeTokens:    28218,
		Windows: []domain.WindowFit{
			{Model: "GPT-3.5-turbo", Tokens: 4096, Fits: false, PercentUsed: 602.8},
			{Model: "GPT-4o", Tokens: 128000, Fits: true, PercentUsed: 19.3},
		},
		Recommendation: domain.TierLargeContext,
		SampleChunks:   10,
		SampleTokens:   200,
	}
}

func TestTokensCmd_Report(t *testing.T) {
	ts := setupTestServices(t)
	ts.tokens.report = sampleTokenReport()

	out, err := execute(t, "tokens")

	require.NoError(t, err)
	assert.Contains(t, out, "Token Analysis Results")
	assert.Contains(t, out, "Total documents: 1,234")
	assert.Contains(t, out, "Total characters: 98,765")
	assert.Contains(t, out, "GPT tokens (approx): 24,691")
	assert.Contains(t, out, "FAIL GPT-3.5-turbo")
	assert.Contains(t, out, "PASS GPT-4o")
	assert.Contains(t, out, recommendations[domain.TierLargeContext])
	assert.Contains(t, out, "Top 10 chunks: ~200 tokens")
	assert.NotContains(t, out, "could not be read")
}

func TestTokensCmd_PartialRead(t *testing.T) {
	ts := setupTestServices(t)
	r := sampleTokenReport()
	r.Retrieved = 1000
	ts.tokens.report = r

	out, err := execute(t, "tokens")

	require.NoError(t, err)
	assert.Contains(t, out, "store reports 1,234")
}

func TestTokensCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.tokens.report = sampleTokenReport()

	out, err := execute(t, "tokens", "--json")

	require.NoError(t, err)
	var got domain.TokenReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 24691, got.GPTTokens)
	assert.Equal(t, domain.TierLargeContext, got.Recommendation)
}

func TestTokensCmd_Error(t *testing.T) {
	ts := setupTestServices(t)
	ts.tokens.err = errors.New("collection not found")

	_, err := execute(t, "tokens")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "token analysis failed")
}

func TestRecommendations_CoverEveryTier(t *testing.T) {
	for _, tier := range []domain.RecommendationTier{
		domain.TierSmallContext, domain.TierGPT4Context, domain.TierLargeContext, domain.TierRAG,
	} {
		assert.NotEmpty(t, recommendations[tier], tier)
	}
}
