// Package cli provides the cobra commands of the proctok binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/proctok/internal/adapters/driven/config/env"
	"github.com/custodia-labs/proctok/internal/adapters/driven/config/file"
	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driving"
	"github.com/custodia-labs/proctok/internal/core/services"
	"github.com/custodia-labs/proctok/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Global flag values.
var (
	configPath     string
	envFile        string
	verbose        bool
	logFile        string
	storeBackend   string
	chromaURL      string
	collectionName string
	embedder       string
)

// cfg is the resolved configuration for the running command.
var cfg = domain.DefaultConfig()

// app builds adapters and services on demand for the running command.
var app *container

// Injected services. When set they are used instead of building from cfg.
var (
	ingestService      driving.IngestService
	searchService      driving.SearchService
	tokenService       driving.TokenService
	exportService      driving.ExportService
	summaryService     driving.SummaryService
	diagnosticsService driving.DiagnosticsService
	settingsService    driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "proctok",
	Short: "Tokenize procurement documents into a vector store",
	Long: `proctok extracts text from procurement PDFs, web pages and saved HTML,
splits it into overlapping chunks, embeds them and stores them in a vector
database (Chroma, SQLite, Redis, Milvus or in-memory).

It also reports token counts, exports whole documents, writes review
summaries and runs search checks against the stored collection.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ~/.proctok/config.toml)")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&logFile, "log-file", domain.DefaultLogFile, "append log lines to this file (empty disables)")
	pf.StringVar(&storeBackend, "store", domain.StoreChroma, "vector store: chroma, sqlite, redis, milvus or memory")
	pf.StringVar(&chromaURL, "chroma-url", domain.DefaultChromaURL, "Chroma server URL")
	pf.StringVar(&collectionName, "collection-name", domain.DefaultCollectionName, "collection name")
	pf.StringVar(&embedder, "embedder", domain.EmbedderOllama, "embedding provider: ollama or openai")
}

// Execute runs the root command with ctx and releases every adapter afterwards.
func Execute(ctx context.Context) error {
	defer closeApp()
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig resolves cfg from defaults, the config file, the environment and flags, in that order.
func loadConfig(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	resolved := domain.DefaultConfig()

	settings, err := settingsFor(configPath)
	if err != nil {
		return err
	}
	if err := settings.Apply(&resolved); err != nil {
		return fmt.Errorf("config %s: %w", settings.Path(), err)
	}

	if envFile != "" {
		if err := env.Load(envFile); err != nil {
			return err
		}
	}
	if err := env.Apply(&resolved, os.LookupEnv); err != nil {
		return err
	}

	applyGlobalFlags(cmd, &resolved)
	if err := resolved.Validate(); err != nil {
		return err
	}

	cfg = resolved
	closeApp()
	app = newContainer(cfg)
	logger.Debug("store=%s collection=%s embedder=%s", cfg.Store.Backend, cfg.Store.Collection, cfg.Embedding.Provider)
	return nil
}

// settingsFor returns the injected settings service or one backed by the TOML file at path.
func settingsFor(path string) (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}
	store, err := file.NewConfigStore(path)
	if err != nil {
		return nil, err
	}
	return services.NewSettingsService(store), nil
}

// applyGlobalFlags overlays the global flags the user set on c.
func applyGlobalFlags(cmd *cobra.Command, c *domain.Config) {
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "store":
			c.Store.Backend = storeBackend
		case "chroma-url":
			c.Store.ChromaURL = chromaURL
		case "collection-name":
			c.Store.Collection = collectionName
		case "embedder":
			c.Embedding.Provider = embedder
		case "log-file":
			c.Paths.LogFile = logFile
		}
	})
}

func closeApp() {
	if app == nil {
		return
	}
	if err := app.Close(); err != nil {
		logger.Warn("cleanup: %v", err)
	}
	app = nil
}

// errNotConfigured reports a command run without a container, which only happens in tests.
var errNotConfigured = errors.New("not configured")
