// Package status renders the one-line status bar at the bottom of each view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/styles"
)

// State is what the owning view is doing.
type State int

const (
	StateReady State = iota
	StateLoading
	StateSearching
	StateResults
	StateStats
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateLoading:
		return "loading"
	case StateSearching:
		return "searching"
	case StateResults:
		return "results"
	case StateStats:
		return "stats"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Bar shows a state message on the left and key hints on the right.
type Bar struct {
	styles *styles.Styles
	help   help.Model
	hints  []key.Binding

	state   State
	message string
	hits    int
	width   int
}

// NewBar creates a status bar showing hints.
func NewBar(s *styles.Styles, hints ...key.Binding) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}

	h := help.New()
	h.ShortSeparator = " · "
	h.Styles.ShortKey = s.Normal
	h.Styles.ShortDesc = s.Muted
	h.Styles.ShortSeparator = s.Muted

	return &Bar{
		styles: s,
		help:   h,
		hints:  hints,
		width:  80,
	}
}

// View renders the bar padded to its width.
func (b *Bar) View() string {
	left := b.left()
	right := b.help.ShortHelpView(b.hints)

	gap := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return b.styles.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) left() string {
	switch b.state {
	case StateLoading:
		return b.styles.Muted.Render("Loading...")
	case StateSearching:
		return b.styles.Muted.Render("Searching...")
	case StateError:
		if b.message == "" {
			return b.styles.Error.Render("Error")
		}
		return b.styles.Error.Render("Error: " + b.message)
	case StateResults:
		if b.hits == 0 {
			return b.styles.Warning.Render("No matching chunks")
		}
		return b.styles.Normal.Render(fmt.Sprintf("%d chunks", b.hits))
	case StateStats, StateReady:
		if b.message != "" {
			return b.styles.Normal.Render(b.message)
		}
	}
	return b.styles.Muted.Render("Ready")
}

// SetState changes the state and clears any message.
func (b *Bar) SetState(state State) {
	b.state = state
	b.message = ""
}

// SetError switches to StateError with err's text.
func (b *Bar) SetError(err error) {
	b.state = StateError
	b.message = ""
	if err != nil {
		b.message = err.Error()
	}
}

// SetMessage sets the text shown in StateReady and StateStats.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// SetResults switches to StateResults for n hits.
func (b *Bar) SetResults(n int) {
	b.state = StateResults
	b.message = ""
	b.hits = n
}

// SetHints replaces the key hints.
func (b *Bar) SetHints(hints ...key.Binding) {
	b.hints = hints
}

// SetWidth sets the rendered width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Reset returns to StateReady with no message.
func (b *Bar) Reset() {
	b.state = StateReady
	b.message = ""
	b.hits = 0
}

func (b *Bar) State() State     { return b.state }
func (b *Bar) Message() string  { return b.message }
func (b *Bar) ResultCount() int { return b.hits }
func (b *Bar) Width() int       { return b.width }
