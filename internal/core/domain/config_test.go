package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, StoreChroma, cfg.Store.Backend)
	assert.Equal(t, "http://localhost:8000", cfg.Store.ChromaURL)
	assert.Equal(t, "procurement_docs", cfg.Store.Collection)
	assert.Equal(t, 100, cfg.Store.BatchSize)
	assert.Equal(t, 800, cfg.Chunking.ChunkSize)
	assert.Equal(t, 100, cfg.Chunking.Overlap)
	assert.Equal(t, "*.pdf", cfg.Paths.DocsPattern)
	assert.Equal(t, "tokenization.log", cfg.Paths.LogFile)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, LLMProviderOpenAI, cfg.LLM.Provider)
	assert.True(t, cfg.Web.InsecureSkipVerify)
	assert.Equal(t, 100, cfg.Web.MinContentChars)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero chunk size", func(c *Config) { c.Chunking.ChunkSize = 0 }, ErrInvalidInput},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }, ErrInvalidInput},
		{"zero batch", func(c *Config) { c.Store.BatchSize = 0 }, ErrInvalidInput},
		{"unknown backend", func(c *Config) { c.Store.Backend = "pinecone" }, ErrUnsupportedType},
		{"unknown embedder", func(c *Config) { c.Embedding.Provider = "cohere" }, ErrUnsupportedType},
		{"unknown llm provider", func(c *Config) { c.LLM.Provider = "gemini" }, ErrUnsupportedType},
		{"ratio above one", func(c *Config) { c.Summary.CompressionRatio = 1.5 }, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}
