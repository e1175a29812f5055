// Package input provides the query box used by the search view.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/styles"
)

const (
	maxQueryLen = 256
	minWidth    = 20

	// historySize bounds the recalled queries.
	historySize = 20
)

// QueryInput is a single-line query box that remembers submitted queries.
type QueryInput struct {
	ti     textinput.Model
	styles *styles.Styles

	history []string
	// cursor indexes history while recalling; len(history) means the live line.
	cursor int
}

// NewQueryInput creates a focused query box.
func NewQueryInput(s *styles.Styles) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Prompt = "query › "
	ti.PromptStyle = s.Title
	ti.Placeholder = "evaluation criteria"
	ti.CharLimit = maxQueryLen
	ti.Width = 50
	ti.Focus()

	return &QueryInput{ti: ti, styles: s}
}

// Init starts the cursor blinking.
func (q *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards msg to the text box. Up and down walk the history.
func (q *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && q.ti.Focused() {
		//nolint:exhaustive // only history keys are intercepted
		switch k.Type {
		case tea.KeyUp:
			q.recall(-1)
			return q, nil
		case tea.KeyDown:
			q.recall(1)
			return q, nil
		}
	}

	var cmd tea.Cmd
	q.ti, cmd = q.ti.Update(msg)
	return q, cmd
}

func (q *QueryInput) recall(step int) {
	next := q.cursor + step
	if next < 0 || next > len(q.history) {
		return
	}
	q.cursor = next
	if next == len(q.history) {
		q.ti.SetValue("")
		return
	}
	q.ti.SetValue(q.history[next])
	q.ti.CursorEnd()
}

// Submit returns the trimmed query and records it in the history.
// Blank input returns false.
func (q *QueryInput) Submit() (string, bool) {
	query := strings.TrimSpace(q.ti.Value())
	if query == "" {
		return "", false
	}
	if n := len(q.history); n == 0 || q.history[n-1] != query {
		q.history = append(q.history, query)
		if len(q.history) > historySize {
			q.history = q.history[len(q.history)-historySize:]
		}
	}
	q.cursor = len(q.history)
	return query, true
}

// View renders the framed query box.
func (q *QueryInput) View() string {
	return q.styles.InputField.Render(q.ti.View())
}

// SetWidth fits the box to a terminal width.
func (q *QueryInput) SetWidth(width int) {
	w := width - len(q.ti.Prompt) - 6
	if w < minWidth {
		w = minWidth
	}
	q.ti.Width = w
}

// Clear empties the box and rewinds the history cursor.
func (q *QueryInput) Clear() {
	q.ti.Reset()
	q.cursor = len(q.history)
}

// Value returns the text as typed.
func (q *QueryInput) Value() string { return q.ti.Value() }

// SetValue replaces the text.
func (q *QueryInput) SetValue(s string) { q.ti.SetValue(s) }

// History returns submitted queries, oldest first.
func (q *QueryInput) History() []string { return q.history }

func (q *QueryInput) Focus() tea.Cmd { return q.ti.Focus() }
func (q *QueryInput) Blur()          { q.ti.Blur() }
func (q *QueryInput) Focused() bool  { return q.ti.Focused() }
