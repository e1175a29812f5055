// Package tui is the interactive terminal browser for a stored collection:
// free-text similarity search, chunk reading and collection checks.
package tui

import (
	"errors"

	"github.com/custodia-labs/proctok/internal/core/ports/driving"
)

var (
	ErrInvalidPorts         = errors.New("tui: ports are nil")
	ErrMissingSearchService = errors.New("tui: search service is required")
)

// Ports are the services the views call.
type Ports struct {
	Search driving.SearchService
}

// NewPorts wraps search.
func NewPorts(search driving.SearchService) *Ports {
	return &Ports{Search: search}
}

// Validate reports a missing service.
func (p *Ports) Validate() error {
	switch {
	case p == nil:
		return ErrInvalidPorts
	case p.Search == nil:
		return ErrMissingSearchService
	}
	return nil
}
