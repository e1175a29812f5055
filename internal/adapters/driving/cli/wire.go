package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/proctok/internal/adapters/driven/config/file"
	"github.com/custodia-labs/proctok/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/proctok/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/proctok/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/proctok/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/proctok/internal/adapters/driven/storage/chroma"
	"github.com/custodia-labs/proctok/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/proctok/internal/adapters/driven/storage/milvus"
	"github.com/custodia-labs/proctok/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/proctok/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/proctok/internal/adapters/driven/web"
	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/core/ports/driving"
	"github.com/custodia-labs/proctok/internal/core/services"
	"github.com/custodia-labs/proctok/internal/logger"
	htmlnorm "github.com/custodia-labs/proctok/internal/normalisers/html"
	"github.com/custodia-labs/proctok/internal/normalisers/pdf"
	"github.com/custodia-labs/proctok/internal/postprocessors"
	"github.com/custodia-labs/proctok/internal/postprocessors/chunker"
)

// container builds adapters from cfg the first time a command needs them.
// Nothing is dialled until then, so commands only pay for what they use.
type container struct {
	cfg domain.Config

	store    driven.VectorStore
	embedder driven.EmbeddingService
	llm      driven.LLMService
	http     *web.HTTPFetcher
	browser  *web.BrowserFetcher

	closers []io.Closer
}

func newContainer(c domain.Config) *container {
	return &container{cfg: c}
}

// Close releases every adapter that was built, newest first.
func (c *container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	logger.SetFileOutput(nil)
	return errors.Join(errs...)
}

// openLog starts the log-file sink when one is configured.
func (c *container) openLog() {
	if c.cfg.Paths.LogFile == "" {
		return
	}
	f, err := logger.SetLogFile(c.cfg.Paths.LogFile)
	if err != nil {
		logger.Warn("%v", err)
		return
	}
	c.closers = append(c.closers, f)
}

func (c *container) vectorStore(ctx context.Context) (driven.VectorStore, error) {
	if c.store != nil {
		return c.store, nil
	}

	sc := c.cfg.Store
	dims := c.cfg.Embedding.Dimensions
	var store driven.VectorStore
	switch sc.Backend {
	case domain.StoreChroma:
		s, err := chroma.NewStore(chroma.Config{
			URL:        sc.ChromaURL,
			Tenant:     sc.ChromaTenant,
			Database:   sc.ChromaDatabase,
			Collection: sc.Collection,
		})
		if err != nil {
			return nil, err
		}
		store = s
	case domain.StoreSQLite:
		s, err := sqlite.NewStore(sc.SQLitePath, sc.Collection)
		if err != nil {
			return nil, err
		}
		store = s
	case domain.StoreRedis:
		store = redis.NewStore(redis.Config{
			Addr:       sc.RedisAddr,
			Password:   sc.RedisPassword,
			DB:         sc.RedisDB,
			Collection: sc.Collection,
			Dimensions: dims,
		})
	case domain.StoreMilvus:
		s, err := milvus.NewStore(ctx, milvus.Config{
			Address:    sc.MilvusAddr,
			Collection: sc.Collection,
			Dimensions: dims,
		})
		if err != nil {
			return nil, err
		}
		store = s
	case domain.StoreMemory:
		store = memory.NewVectorStore()
	default:
		return nil, fmt.Errorf("%w: store backend %q", domain.ErrUnsupportedType, sc.Backend)
	}

	logger.Debug("using %s vector store, collection %s", store.Name(), sc.Collection)
	c.store = store
	c.closers = append(c.closers, store)
	return store, nil
}

func (c *container) embedding(ctx context.Context) (driven.EmbeddingService, error) {
	if c.embedder != nil {
		return c.embedder, nil
	}

	ec := c.cfg.Embedding
	var svc driven.EmbeddingService
	switch ec.Provider {
	case domain.EmbedderOllama:
		s, err := ollama.NewEmbeddingService(ctx, ollama.Config{
			BaseURL:    ec.BaseURL,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		svc = s
	case domain.EmbedderOpenAI:
		s, err := openaiembed.NewEmbeddingService(ctx, openaiembed.Config{
			APIKey:     ec.APIKey,
			BaseURL:    ec.BaseURL,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		svc = s
	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, ec.Provider)
	}

	logger.Debug("using %s embeddings", svc.ModelName())
	c.embedder = svc
	c.closers = append(c.closers, svc)
	return svc, nil
}

// chatModel returns nil when no summary model can be built, so summaries
// stay extractive. OpenAI needs an API key; Ollama only needs a reachable server.
func (c *container) chatModel(ctx context.Context) driven.LLMService {
	if c.llm != nil {
		return c.llm
	}

	lc := c.cfg.LLM
	var svc driven.LLMService
	switch lc.Provider {
	case domain.LLMProviderOllama:
		model := lc.Model
		if model == domain.DefaultLLMModel {
			model = ollamallm.DefaultLLMModel
		}
		s, err := ollamallm.NewLLMService(ollamallm.LLMConfig{BaseURL: lc.BaseURL, Model: model})
		if err != nil {
			logger.Warn("LLM unavailable: %v", err)
			return nil
		}
		svc = s
	default:
		if lc.APIKey == "" {
			logger.Debug("no LLM API key configured")
			return nil
		}
		s, err := openaillm.NewLLMService(ctx, openaillm.LLMConfig{
			APIKey:  lc.APIKey,
			BaseURL: lc.BaseURL,
			Model:   lc.Model,
		})
		if err != nil {
			logger.Warn("LLM unavailable: %v", err)
			return nil
		}
		svc = s
	}

	logger.Debug("using %s for summaries", svc.ModelName())
	c.llm = svc
	c.closers = append(c.closers, svc)
	return svc
}

func (c *container) httpFetcher() *web.HTTPFetcher {
	if c.http == nil {
		w := c.cfg.Web
		c.http = web.NewHTTPFetcher(web.HTTPConfig{
			UserAgent:          w.UserAgent,
			Timeout:            w.Timeout,
			InsecureSkipVerify: w.InsecureSkipVerify,
			RequestsPerSecond:  w.RequestsPerSecond,
			Burst:              w.Burst,
		})
	}
	return c.http
}

func (c *container) browserFetcher() *web.BrowserFetcher {
	if c.browser == nil {
		c.browser = web.NewBrowserFetcher(web.BrowserConfig{
			ExecPath:    c.cfg.Browser.ExecPath,
			UserAgent:   c.cfg.Web.UserAgent,
			WaitTimeout: c.cfg.Browser.WaitTimeout,
			SettleDelay: c.cfg.Browser.SettleDelay,
		})
	}
	return c.browser
}

func (c *container) cleaner(profile string) (*postprocessors.Pipeline, error) {
	return postprocessors.BuildProfile(postprocessors.DefaultRegistry(), profile, c.cfg.Cleaning.RemovePatterns)
}

func (c *container) pdfExtractor() (*pdf.Extractor, error) {
	cleaner, err := c.cleaner(postprocessors.ProfilePDF)
	if err != nil {
		return nil, err
	}
	return pdf.New(cleaner, pdf.DefaultStrategies()...), nil
}

func (c *container) webExtractor() (*htmlnorm.WebExtractor, error) {
	cleaner, err := c.cleaner(postprocessors.ProfileWeb)
	if err != nil {
		return nil, err
	}
	return htmlnorm.NewWebExtractor(c.httpFetcher(), c.browserFetcher(), cleaner, c.cfg.Web.MinContentChars), nil
}

func (c *container) savedExtractor() (*htmlnorm.SavedExtractor, error) {
	cleaner, err := c.cleaner(postprocessors.ProfileSavedHTML)
	if err != nil {
		return nil, err
	}
	return htmlnorm.NewSavedExtractor(cleaner), nil
}

func (c *container) ingest(ctx context.Context, exportText bool) (*services.IngestService, error) {
	store, err := c.vectorStore(ctx)
	if err != nil {
		return nil, err
	}
	embedder, err := c.embedding(ctx)
	if err != nil {
		return nil, err
	}
	chunks, err := chunker.New(
		chunker.WithChunkSize(c.cfg.Chunking.ChunkSize),
		chunker.WithOverlap(c.cfg.Chunking.Overlap),
	)
	if err != nil {
		return nil, err
	}
	pdfEx, err := c.pdfExtractor()
	if err != nil {
		return nil, err
	}
	webEx, err := c.webExtractor()
	if err != nil {
		return nil, err
	}
	savedEx, err := c.savedExtractor()
	if err != nil {
		return nil, err
	}

	svc := services.NewIngestService(store, embedder, chunks, pdfEx, webEx, savedEx)
	svc.SetBatchSize(c.cfg.Store.BatchSize)
	if exportText {
		svc.SetExportDir(c.cfg.Paths.ExportDir)
	}
	return svc, nil
}

// requireIngest returns the injected ingest service or builds one from cfg.
func requireIngest(ctx context.Context, exportText bool) (driving.IngestService, error) {
	if ingestService != nil {
		return ingestService, nil
	}
	if app == nil {
		return nil, fmt.Errorf("ingest service %w", errNotConfigured)
	}
	app.openLog()
	return app.ingest(ctx, exportText)
}

func requireSearch(ctx context.Context) (driving.SearchService, error) {
	if searchService != nil {
		return searchService, nil
	}
	if app == nil {
		return nil, fmt.Errorf("search service %w", errNotConfigured)
	}
	store, err := app.vectorStore(ctx)
	if err != nil {
		return nil, err
	}
	embedder, err := app.embedding(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewSearchService(embedder, store, app.cfg.Store.Collection), nil
}

func requireTokens(ctx context.Context) (driving.TokenService, error) {
	if tokenService != nil {
		return tokenService, nil
	}
	if app == nil {
		return nil, fmt.Errorf("token service %w", errNotConfigured)
	}
	store, err := app.vectorStore(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewTokenService(store, app.cfg.Store.Collection), nil
}

func requireExport(ctx context.Context) (driving.ExportService, error) {
	if exportService != nil {
		return exportService, nil
	}
	if app == nil {
		return nil, fmt.Errorf("export service %w", errNotConfigured)
	}
	store, err := app.vectorStore(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewExportService(store, app.cfg.Store.Collection), nil
}

func requireSummary(ctx context.Context, useLLM bool) (driving.SummaryService, error) {
	if summaryService != nil {
		return summaryService, nil
	}
	if app == nil {
		return nil, fmt.Errorf("summary service %w", errNotConfigured)
	}
	var llm driven.LLMService
	if useLLM {
		llm = app.chatModel(ctx)
	}
	svc := services.NewSummaryService(llm)
	prompts, err := file.NewPromptStore("")
	if err != nil {
		logger.Debug("prompt store unavailable, using built-in prompts: %v", err)
	} else {
		svc.SetPromptStore(prompts)
	}
	return svc, nil
}

// requireDiagnostics builds a diagnostics service. Store and embedding
// construction errors become failed checks rather than command errors.
func requireDiagnostics(ctx context.Context) (driving.DiagnosticsService, error) {
	if diagnosticsService != nil {
		return diagnosticsService, nil
	}
	if app == nil {
		return nil, fmt.Errorf("diagnostics service %w", errNotConfigured)
	}

	webEx, err := app.webExtractor()
	if err != nil {
		return nil, err
	}
	var store driven.VectorStore
	if s, err := app.vectorStore(ctx); err != nil {
		logger.Warn("vector store: %v", err)
	} else {
		store = s
	}
	var embedder driven.EmbeddingService
	if e, err := app.embedding(ctx); err != nil {
		logger.Warn("embedding: %v", err)
	} else {
		embedder = e
	}
	return services.NewDiagnosticsService(app.httpFetcher(), app.browserFetcher(), webEx, store, embedder), nil
}
