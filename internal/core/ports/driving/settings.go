package driving

import "github.com/custodia-labs/proctok/internal/core/domain"

// SettingsService reads and writes the persisted configuration file.
type SettingsService interface {
	// Keys returns every recognised setting key.
	Keys() []string

	// Path returns the config file location.
	Path() string

	// Apply overlays persisted values onto cfg.
	Apply(cfg *domain.Config) error

	// Set validates and persists one value.
	Set(key, value string) error

	// Show renders cfg as key/value strings with secrets masked.
	Show(cfg domain.Config) map[string]string
}
