// Package messages holds the tea.Msg values exchanged between the app and its views.
package messages

import (
	"github.com/custodia-labs/proctok/internal/core/domain"
)

// ViewType names a screen.
type ViewType int

const (
	ViewMenu ViewType = iota
	ViewSearch
	ViewHelp
	// ViewHit shows one chunk in full.
	ViewHit
	// ViewStats shows the collection summary and predefined query checks.
	ViewStats
)

func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewHelp:
		return "help"
	case ViewHit:
		return "hit"
	case ViewStats:
		return "stats"
	}
	return "unknown"
}

// ViewChanged asks the app to switch screens.
type ViewChanged struct {
	View ViewType
}

// SearchCompleted carries the ranked hits for a submitted query.
type SearchCompleted struct {
	Results []domain.SearchHit
	Err     error
}

// HitOpened asks the app to show Hit in the chunk view.
type HitOpened struct {
	Hit domain.SearchHit
}

// StatsLoaded carries collection statistics.
type StatsLoaded struct {
	Stats *domain.CollectionStats
	Err   error
}

// PredefinedCompleted carries one result per predefined query.
type PredefinedCompleted struct {
	Results []domain.PredefinedResult
	Err     error
}

// ErrorOccurred reports a failure outside a service reply.
type ErrorOccurred struct {
	Err error
}

// Quit stops the program.
type Quit struct{}
