package postprocessors

import (
	"errors"
	"testing"

	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driven"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if len(r.builders) != 0 {
		t.Errorf("expected empty builders, got %d", len(r.builders))
	}
}

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	r.Register("test", func(_ map[string]any) (driven.TextProcessor, error) {
		return &mockProcessor{name: "test"}, nil
	})

	if !r.Has("test") {
		t.Fatal("expected registry to have 'test'")
	}

	proc, err := r.Build("test", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.Name() != "test" {
		t.Errorf("expected name 'test', got %q", proc.Name())
	}
}

func TestRegistry_Build_Unknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Build("missing", nil)
	if !errors.Is(err, domain.ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestRegistry_Names_Sorted(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"b", "c", "a"} {
		r.Register(n, nil)
	}
	names := r.Names()
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Errorf("expected sorted names, got %v", names)
	}
}
