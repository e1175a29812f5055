package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/proctok/internal/adapters/driven/config/values"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map and never touches disk. Tests seed it
// directly; Save is a no-op.
type ConfigStore struct {
	mu       sync.RWMutex
	settings map[string]any
}

// NewConfigStore copies seed into a new store.
func NewConfigStore(seed map[string]any) *ConfigStore {
	settings := make(map[string]any, len(seed))
	maps.Copy(settings, seed)
	return &ConfigStore{settings: settings}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.settings[key]
	return v, ok
}

func (s *ConfigStore) value(key string) any {
	v, _ := s.Get(key)
	return v
}

func (s *ConfigStore) GetString(key string) string        { return values.String(s.value(key)) }
func (s *ConfigStore) GetInt(key string) int              { return values.Int(s.value(key)) }
func (s *ConfigStore) GetFloat(key string) float64        { return values.Float(s.value(key)) }
func (s *ConfigStore) GetBool(key string) bool            { return values.Bool(s.value(key)) }
func (s *ConfigStore) GetStringSlice(key string) []string { return values.Strings(s.value(key)) }

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.settings[key] = value
	s.mu.Unlock()
	return nil
}

// Save does nothing.
func (s *ConfigStore) Save() error { return nil }

// Load does nothing.
func (s *ConfigStore) Load() error { return nil }

// Path reports ":memory:".
func (s *ConfigStore) Path() string { return ":memory:" }
