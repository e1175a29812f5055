package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindStrings
)

// setting binds one config file key to a field of domain.Config.
type setting struct {
	kind settingKind
	str  func(*domain.Config) *string
	num  func(*domain.Config) *int
	flt  func(*domain.Config) *float64
	flag func(*domain.Config) *bool
	dur  func(*domain.Config) *time.Duration
	list func(*domain.Config) *[]string
}

func stringSetting(f func(*domain.Config) *string) setting {
	return setting{kind: kindString, str: f}
}

func intSetting(f func(*domain.Config) *int) setting {
	return setting{kind: kindInt, num: f}
}

//nolint:gosec // G101: config key names, not credentials.
var settings = map[string]setting{
	"store.backend":         stringSetting(func(c *domain.Config) *string { return &c.Store.Backend }),
	"store.collection":      stringSetting(func(c *domain.Config) *string { return &c.Store.Collection }),
	"store.batch_size":      intSetting(func(c *domain.Config) *int { return &c.Store.BatchSize }),
	"store.chroma_url":      stringSetting(func(c *domain.Config) *string { return &c.Store.ChromaURL }),
	"store.chroma_tenant":   stringSetting(func(c *domain.Config) *string { return &c.Store.ChromaTenant }),
	"store.chroma_database": stringSetting(func(c *domain.Config) *string { return &c.Store.ChromaDatabase }),
	"store.sqlite_path":     stringSetting(func(c *domain.Config) *string { return &c.Store.SQLitePath }),
	"store.redis_addr":      stringSetting(func(c *domain.Config) *string { return &c.Store.RedisAddr }),
	"store.redis_password":  stringSetting(func(c *domain.Config) *string { return &c.Store.RedisPassword }),
	"store.redis_db":        intSetting(func(c *domain.Config) *int { return &c.Store.RedisDB }),
	"store.milvus_addr":     stringSetting(func(c *domain.Config) *string { return &c.Store.MilvusAddr }),

	"chunking.chunk_size": intSetting(func(c *domain.Config) *int { return &c.Chunking.ChunkSize }),
	"chunking.overlap":    intSetting(func(c *domain.Config) *int { return &c.Chunking.Overlap }),

	"docs.dir":          stringSetting(func(c *domain.Config) *string { return &c.Paths.DocsDir }),
	"docs.pattern":      stringSetting(func(c *domain.Config) *string { return &c.Paths.DocsPattern }),
	"paths.export_dir":  stringSetting(func(c *domain.Config) *string { return &c.Paths.ExportDir }),
	"paths.output_dir":  stringSetting(func(c *domain.Config) *string { return &c.Paths.OutputDir }),
	"paths.summary_dir": stringSetting(func(c *domain.Config) *string { return &c.Paths.SummaryDir }),
	"paths.log_file":    stringSetting(func(c *domain.Config) *string { return &c.Paths.LogFile }),

	"embedding.provider":   stringSetting(func(c *domain.Config) *string { return &c.Embedding.Provider }),
	"embedding.base_url":   stringSetting(func(c *domain.Config) *string { return &c.Embedding.BaseURL }),
	"embedding.model":      stringSetting(func(c *domain.Config) *string { return &c.Embedding.Model }),
	"embedding.api_key":    stringSetting(func(c *domain.Config) *string { return &c.Embedding.APIKey }),
	"embedding.dimensions": intSetting(func(c *domain.Config) *int { return &c.Embedding.Dimensions }),

	"llm.provider": stringSetting(func(c *domain.Config) *string { return &c.LLM.Provider }),
	"llm.model":    stringSetting(func(c *domain.Config) *string { return &c.LLM.Model }),
	"llm.base_url": stringSetting(func(c *domain.Config) *string { return &c.LLM.BaseURL }),
	"llm.api_key":  stringSetting(func(c *domain.Config) *string { return &c.LLM.APIKey }),

	"web.user_agent":        stringSetting(func(c *domain.Config) *string { return &c.Web.UserAgent }),
	"web.timeout":           {kind: kindDuration, dur: func(c *domain.Config) *time.Duration { return &c.Web.Timeout }},
	"web.insecure_tls":      {kind: kindBool, flag: func(c *domain.Config) *bool { return &c.Web.InsecureSkipVerify }},
	"web.requests_per_sec":  {kind: kindFloat, flt: func(c *domain.Config) *float64 { return &c.Web.RequestsPerSecond }},
	"web.burst":             intSetting(func(c *domain.Config) *int { return &c.Web.Burst }),
	"web.min_content_chars": intSetting(func(c *domain.Config) *int { return &c.Web.MinContentChars }),

	"browser.exec_path":    stringSetting(func(c *domain.Config) *string { return &c.Browser.ExecPath }),
	"browser.wait_timeout": {kind: kindDuration, dur: func(c *domain.Config) *time.Duration { return &c.Browser.WaitTimeout }},
	"browser.settle_delay": {kind: kindDuration, dur: func(c *domain.Config) *time.Duration { return &c.Browser.SettleDelay }},

	"summary.compression_ratio": {kind: kindFloat, flt: func(c *domain.Config) *float64 { return &c.Summary.CompressionRatio }},

	"cleaning.remove_patterns": {kind: kindStrings, list: func(c *domain.Config) *[]string { return &c.Cleaning.RemovePatterns }},
}

// secretKeys are masked by Show.
var secretKeys = map[string]bool{
	"store.redis_password": true,
	"embedding.api_key":    true,
	"llm.api_key":          true,
}

// SettingsService maps the persisted config file onto domain.Config.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Keys returns every recognised key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the config file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Apply overlays every key present in the config file onto cfg.
// Unknown keys are ignored. Durations are strings like "30s".
func (s *SettingsService) Apply(cfg *domain.Config) error {
	for key, st := range settings {
		if _, ok := s.configStore.Get(key); !ok {
			continue
		}
		switch st.kind {
		case kindString:
			*st.str(cfg) = s.configStore.GetString(key)
		case kindInt:
			*st.num(cfg) = s.configStore.GetInt(key)
		case kindFloat:
			*st.flt(cfg) = s.configStore.GetFloat(key)
		case kindBool:
			*st.flag(cfg) = s.configStore.GetBool(key)
		case kindStrings:
			*st.list(cfg) = s.configStore.GetStringSlice(key)
		case kindDuration:
			raw := s.configStore.GetString(key)
			d, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("%w: %s: %q is not a duration", domain.ErrInvalidInput, key, raw)
			}
			*st.dur(cfg) = d
		}
	}
	return nil
}

// Set parses value according to key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	st, ok := settings[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var v any
	switch st.kind {
	case kindString:
		v = value
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		v = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		v = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		v = b
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s must be a duration such as 30s", domain.ErrInvalidInput, key)
		}
		v = value
	case kindStrings:
		var list []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				list = append(list, p)
			}
		}
		v = list
	}

	if err := s.configStore.Set(key, v); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Show renders every key of cfg, masking secrets.
func (s *SettingsService) Show(cfg domain.Config) map[string]string {
	out := make(map[string]string, len(settings))
	for key, st := range settings {
		var v string
		switch st.kind {
		case kindString:
			v = *st.str(&cfg)
		case kindInt:
			v = strconv.Itoa(*st.num(&cfg))
		case kindFloat:
			v = strconv.FormatFloat(*st.flt(&cfg), 'g', -1, 64)
		case kindBool:
			v = strconv.FormatBool(*st.flag(&cfg))
		case kindDuration:
			v = st.dur(&cfg).String()
		case kindStrings:
			v = strings.Join(*st.list(&cfg), ",")
		}
		if secretKeys[key] && v != "" {
			v = maskSecret(v)
		}
		out[key] = v
	}
	return out
}

func maskSecret(v string) string {
	if len(v) <= 8 {
		return "****"
	}
	return v[:4] + "****" + v[len(v)-4:]
}
