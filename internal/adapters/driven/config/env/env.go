// Package env layers .env files and environment variables onto domain.Config.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/proctok/internal/core/domain"
)

// Recognised environment variables.
const (
	VarOpenAIKey       = "OPENAI_API_KEY"
	VarOpenAIBaseURL   = "OPENAI_BASE_URL"
	VarChromaURL       = "CHROMA_URL"
	VarOllamaBaseURL   = "OLLAMA_BASE_URL"
	VarStore           = "PROCTOK_STORE"
	VarCollection      = "PROCTOK_COLLECTION"
	VarEmbedder        = "PROCTOK_EMBEDDER"
	VarEmbeddingModel  = "PROCTOK_EMBEDDING_MODEL"
	VarLLMModel        = "PROCTOK_LLM_MODEL"
	VarLLMProvider     = "PROCTOK_LLM_PROVIDER"
	VarSQLitePath      = "PROCTOK_SQLITE_PATH"
	VarRedisAddr       = "REDIS_ADDR"
	VarRedisPassword   = "REDIS_PASSWORD"
	VarRedisDB         = "REDIS_DB"
	VarMilvusAddr      = "MILVUS_ADDR"
	VarChromePath      = "CHROME_PATH"
	VarWebTimeout      = "PROCTOK_WEB_TIMEOUT"
	VarInsecureTLS     = "PROCTOK_INSECURE_TLS"
	VarRequestsPerSec  = "PROCTOK_REQUESTS_PER_SECOND"
	VarEmbeddingDims   = "PROCTOK_EMBEDDING_DIMENSIONS"
	VarMinContentChars = "PROCTOK_MIN_CONTENT_CHARS"
)

// Lookup reports the value of an environment variable. os.LookupEnv satisfies it.
type Lookup func(key string) (string, bool)

// Load reads .env files into the process environment.
// Variables already set are kept. Missing files are ignored.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Read parses a .env file without touching the process environment.
func Read(path string) (Lookup, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}, nil
}

// Apply overlays recognised variables onto cfg. Empty values are ignored.
// A malformed number, bool or duration returns domain.ErrInvalidInput.
func Apply(cfg *domain.Config, lookup Lookup) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}

	strs := []struct {
		key string
		dst *string
	}{
		{VarChromaURL, &cfg.Store.ChromaURL},
		{VarStore, &cfg.Store.Backend},
		{VarCollection, &cfg.Store.Collection},
		{VarSQLitePath, &cfg.Store.SQLitePath},
		{VarRedisAddr, &cfg.Store.RedisAddr},
		{VarRedisPassword, &cfg.Store.RedisPassword},
		{VarMilvusAddr, &cfg.Store.MilvusAddr},
		{VarEmbedder, &cfg.Embedding.Provider},
		{VarEmbeddingModel, &cfg.Embedding.Model},
		{VarLLMModel, &cfg.LLM.Model},
		{VarLLMProvider, &cfg.LLM.Provider},
		{VarChromePath, &cfg.Browser.ExecPath},
	}
	for _, s := range strs {
		if v, ok := get(s.key); ok {
			*s.dst = v
		}
	}

	if v, ok := get(VarOpenAIKey); ok {
		cfg.LLM.APIKey = v
		if cfg.Embedding.Provider == domain.EmbedderOpenAI || cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = v
		}
	}
	if v, ok := get(VarOpenAIBaseURL); ok {
		cfg.LLM.BaseURL = v
		if cfg.Embedding.Provider == domain.EmbedderOpenAI {
			cfg.Embedding.BaseURL = v
		}
	}
	if v, ok := get(VarOllamaBaseURL); ok {
		if cfg.Embedding.Provider == domain.EmbedderOllama {
			cfg.Embedding.BaseURL = v
		}
		if cfg.LLM.Provider == domain.LLMProviderOllama {
			cfg.LLM.BaseURL = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{VarRedisDB, &cfg.Store.RedisDB},
		{VarEmbeddingDims, &cfg.Embedding.Dimensions},
		{VarMinContentChars, &cfg.Web.MinContentChars},
	}
	for _, i := range ints {
		if v, ok := get(i.key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s=%q is not an integer", domain.ErrInvalidInput, i.key, v)
			}
			*i.dst = n
		}
	}

	if v, ok := get(VarRequestsPerSec); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", domain.ErrInvalidInput, VarRequestsPerSec, v)
		}
		cfg.Web.RequestsPerSecond = f
	}
	if v, ok := get(VarInsecureTLS); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a bool", domain.ErrInvalidInput, VarInsecureTLS, v)
		}
		cfg.Web.InsecureSkipVerify = b
	}
	if v, ok := get(VarWebTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a duration", domain.ErrInvalidInput, VarWebTimeout, v)
		}
		cfg.Web.Timeout = d
	}
	return nil
}
