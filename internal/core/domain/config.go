package domain

import (
	"fmt"
	"time"
)

// Store backends.
const (
	StoreChroma = "chroma"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMilvus = "milvus"
	StoreMemory = "memory"
)

// Embedding providers.
const (
	EmbedderOllama = "ollama"
	EmbedderOpenAI = "openai"
)

// Summary LLM providers.
const (
	LLMProviderOpenAI = "openai"
	LLMProviderOllama = "ollama"
)

// Default configuration values.
const (
	DefaultChromaURL       = "http://localhost:8000"
	DefaultOllamaURL       = "http://localhost:11434"
	DefaultCollectionName  = "procurement_docs"
	DefaultChunkSize       = 800
	DefaultChunkOverlap    = 100
	DefaultBatchSize       = 100
	DefaultDocsDir         = "chroma_data/procurement_docs/raw_docs"
	DefaultDocsPattern     = "*.pdf"
	DefaultOutputDir       = "chroma_data/procurement_docs"
	DefaultExportDir       = "chroma_data/procurement_docs/full_text"
	DefaultSummaryDir      = "chroma_data/procurement_docs/summaries"
	DefaultLogFile         = "tokenization.log"
	DefaultLLMModel        = "gpt-4o-mini"
	DefaultOllamaLLMModel  = "llama3.2"
	DefaultCompression     = 0.1
	DefaultMinContentChars = 100
	DefaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Default web timings.
const (
	DefaultWebTimeout    = 30 * time.Second
	DefaultBrowserWait   = 10 * time.Second
	DefaultBrowserSettle = 3 * time.Second
)

// Config is the explicit configuration passed into every component.
// It replaces process-wide defaults; see DefaultConfig for recognised options.
type Config struct {
	Store     StoreConfig
	Chunking  ChunkingConfig
	Paths     PathsConfig
	Embedding EmbeddingConfig
	LLM       LLMConfig
	Web       WebConfig
	Browser   BrowserConfig
	Summary   SummaryConfig
	Cleaning  CleaningConfig
}

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	// Backend is one of chroma, sqlite, redis, milvus or memory.
	Backend string

	// Collection is the collection, index or table name.
	Collection string

	// BatchSize is the number of records per upsert call.
	BatchSize int

	ChromaURL      string
	ChromaTenant   string
	ChromaDatabase string

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MilvusAddr string
}

// ChunkingConfig holds the chunker budget in words.
type ChunkingConfig struct {
	ChunkSize int
	Overlap   int
}

// PathsConfig holds input and output locations.
type PathsConfig struct {
	// DocsDir is the directory scanned for PDFs.
	DocsDir string

	// DocsPattern is a doublestar glob relative to DocsDir.
	DocsPattern string

	// ExportDir receives full-text copies written during ingest. Empty disables export.
	ExportDir string

	// OutputDir is the export command's root directory.
	OutputDir string

	// SummaryDir receives summaries.
	SummaryDir string

	// LogFile receives a copy of every log line. Empty disables the file sink.
	LogFile string
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is ollama or openai.
	Provider string

	BaseURL    string
	Model      string
	APIKey     string
	Dimensions int
}

// LLMConfig configures the optional summary model.
type LLMConfig struct {
	// Provider is openai or ollama.
	Provider string

	Model   string
	BaseURL string
	APIKey  string
}

// WebConfig configures live page fetching.
type WebConfig struct {
	UserAgent string
	Timeout   time.Duration

	// InsecureSkipVerify disables TLS verification for intranet sites.
	InsecureSkipVerify bool

	RequestsPerSecond float64
	Burst             int

	// MinContentChars is the length the HTTP result must exceed before
	// auto extraction skips the browser.
	MinContentChars int
}

// BrowserConfig configures headless rendering.
type BrowserConfig struct {
	// ExecPath overrides the Chrome binary. Empty uses the system default.
	ExecPath    string
	WaitTimeout time.Duration
	SettleDelay time.Duration
}

// SummaryConfig configures summarisation.
type SummaryConfig struct {
	CompressionRatio float64
}

// CleaningConfig extends the built-in cleaning profiles.
type CleaningConfig struct {
	// RemovePatterns are regular expressions deleted from every extracted text.
	RemovePatterns []string
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Backend:        StoreChroma,
			Collection:     DefaultCollectionName,
			BatchSize:      DefaultBatchSize,
			ChromaURL:      DefaultChromaURL,
			ChromaTenant:   "default_tenant",
			ChromaDatabase: "default_database",
			SQLitePath:     "chroma_data/procurement_docs/vectors.db",
			RedisAddr:      "localhost:6379",
			MilvusAddr:     "localhost:19530",
		},
		Chunking: ChunkingConfig{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
		},
		Paths: PathsConfig{
			DocsDir:     DefaultDocsDir,
			DocsPattern: DefaultDocsPattern,
			ExportDir:   DefaultExportDir,
			OutputDir:   DefaultOutputDir,
			SummaryDir:  DefaultSummaryDir,
			LogFile:     DefaultLogFile,
		},
		Embedding: EmbeddingConfig{
			Provider: EmbedderOllama,
		},
		LLM: LLMConfig{
			Provider: LLMProviderOpenAI,
			Model:    DefaultLLMModel,
		},
		Web: WebConfig{
			UserAgent:          DefaultUserAgent,
			Timeout:            DefaultWebTimeout,
			InsecureSkipVerify: true,
			RequestsPerSecond:  2,
			Burst:              4,
			MinContentChars:    DefaultMinContentChars,
		},
		Browser: BrowserConfig{
			WaitTimeout: DefaultBrowserWait,
			SettleDelay: DefaultBrowserSettle,
		},
		Summary: SummaryConfig{
			CompressionRatio: DefaultCompression,
		},
	}
}

// Validate reports configuration that would make every run fail.
func (c Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidInput, c.Chunking.ChunkSize)
	}
	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrInvalidInput, c.Chunking.Overlap)
	}
	if c.Store.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidInput, c.Store.BatchSize)
	}
	switch c.Store.Backend {
	case StoreChroma, StoreSQLite, StoreRedis, StoreMilvus, StoreMemory:
	default:
		return fmt.Errorf("%w: store backend %q", ErrUnsupportedType, c.Store.Backend)
	}
	switch c.Embedding.Provider {
	case EmbedderOllama, EmbedderOpenAI:
	default:
		return fmt.Errorf("%w: embedding provider %q", ErrUnsupportedType, c.Embedding.Provider)
	}
	switch c.LLM.Provider {
	case LLMProviderOpenAI, LLMProviderOllama:
	default:
		return fmt.Errorf("%w: llm provider %q", ErrUnsupportedType, c.LLM.Provider)
	}
	if c.Summary.CompressionRatio <= 0 || c.Summary.CompressionRatio > 1 {
		return fmt.Errorf("%w: compression ratio must be in (0, 1], got %v", ErrInvalidInput, c.Summary.CompressionRatio)
	}
	return nil
}
