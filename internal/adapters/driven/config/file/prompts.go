package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed defaults
var builtin embed.FS

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	data, err := builtin.ReadFile(path.Join("defaults", name+".txt"))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// PromptStore reads summary prompts from <dir>/<name>.txt. The built-in
// files are copied into dir on first use so users have something to edit;
// existing files are left alone.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore uses ~/.proctok/prompts when dir is empty.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".proctok", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string { return s.dir }

// Load returns the template for name. A missing or unreadable file falls
// back to the built-in; a name with neither is an error.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(func() { s.seedErr = s.seed() })

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		if def, ok := DefaultPrompt(name); ok {
			return def, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, errors.Join(err, s.seedErr))
	}

	prompt = strings.TrimSpace(string(data))
	s.mu.Lock()
	s.cache[name] = prompt
	s.mu.Unlock()
	return prompt, nil
}

// Reload drops cached prompts so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

// seed copies every built-in file that does not exist yet.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	entries, err := builtin.ReadDir("defaults")
	if err != nil {
		return err
	}
	for _, e := range entries {
		data, err := builtin.ReadFile(path.Join("defaults", e.Name()))
		if err != nil {
			return err
		}
		if err := writeNew(filepath.Join(s.dir, e.Name()), data); err != nil {
			return fmt.Errorf("seed prompt %s: %w", e.Name(), err)
		}
	}
	return nil
}

func writeNew(name string, data []byte) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
