package file

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/proctok/internal/adapters/driven/config/values"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is the TOML settings file. Tables are addressed with dotted
// keys and every Set rewrites the file.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// DefaultConfigPath returns ~/.proctok/config.toml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".proctok", "config.toml"), nil
}

// NewConfigStore opens the TOML file at path.
// If path is empty, defaults to ~/.proctok/config.toml. A missing file is not an error.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	s := &ConfigStore{
		filePath: path,
		data:     make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString returns key as a string.
func (s *ConfigStore) GetString(key string) string { return values.String(s.lookup(key)) }

// GetInt returns key as an int. TOML integers decode as int64.
func (s *ConfigStore) GetInt(key string) int { return values.Int(s.lookup(key)) }

// GetFloat returns key as a float64. Integers are widened.
func (s *ConfigStore) GetFloat(key string) float64 { return values.Float(s.lookup(key)) }

// GetBool returns key as a bool.
func (s *ConfigStore) GetBool(key string) bool { return values.Bool(s.lookup(key)) }

// GetStringSlice returns the string items of a TOML array.
func (s *ConfigStore) GetStringSlice(key string) []string { return values.Strings(s.lookup(key)) }

func (s *ConfigStore) lookup(key string) any {
	v, _ := s.Get(key)
	return v
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(nestMap(s.data))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	// Config may hold API keys
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	s.data = make(map[string]any, len(doc))
	flatten(s.data, doc, "")
	return nil
}

// Keys returns every key currently set, sorted.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data))
}

// flatten copies a decoded TOML document into dst under dotted keys, so
// [store] backend = "chroma" becomes "store.backend".
func flatten(dst, table map[string]any, prefix string) {
	for k, v := range table {
		if prefix != "" {
			k = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flatten(dst, sub, k)
			continue
		}
		dst[k] = v
	}
}

// nestMap is the inverse of flatten, so saved files use TOML tables.
// A key that is both a value and a table prefix keeps the value.
func nestMap(flat map[string]any) map[string]any {
	result := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		parts := strings.Split(key, ".")
		node := result
		ok := true
		for _, p := range parts[:len(parts)-1] {
			child, exists := node[p]
			if !exists {
				next := make(map[string]any)
				node[p] = next
				node = next
				continue
			}
			next, isMap := child.(map[string]any)
			if !isMap {
				ok = false
				break
			}
			node = next
		}
		if ok {
			node[parts[len(parts)-1]] = flat[key]
		}
	}
	return result
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
