package postprocessors

import (
	"fmt"
	"maps"
	"slices"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

// BuilderFunc builds a cleaning step from its settings, e.g. the pattern
// of a user-defined removal.
type BuilderFunc func(cfg map[string]any) (driven.TextProcessor, error)

// Registry resolves cleaning step names to builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry returns an empty registry. DefaultRegistry has the built-in steps.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]BuilderFunc{}}
}

// Register binds name to builder, replacing any earlier binding.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build constructs the step registered as name.
func (r *Registry) Build(name string, cfg map[string]any) (driven.TextProcessor, error) {
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: cleaning step %q", domain.ErrUnsupportedType, name)
	}
	return b(cfg)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names lists registered steps alphabetically.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.builders))
}
