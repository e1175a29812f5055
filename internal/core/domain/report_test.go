package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommendationFor(t *testing.T) {
	assert.Equal(t, TierSmallContext, RecommendationFor(0))
	assert.Equal(t, TierSmallContext, RecommendationFor(4096))
	assert.Equal(t, TierGPT4Context, RecommendationFor(4097))
	assert.Equal(t, TierGPT4Context, RecommendationFor(8192))
	assert.Equal(t, TierLargeContext, RecommendationFor(128000))
	assert.Equal(t, TierRAG, RecommendationFor(128001))
}
