// Package menu is the start screen listing the other views.
package menu

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/styles"
)

// Entry is one selectable line. An entry without a target view quits.
type Entry struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// Entries is the menu content in display order.
var Entries = []Entry{
	{Label: "Search", Hint: "similarity search over stored chunks", View: messages.ViewSearch},
	{Label: "Collection", Hint: "chunk count, sample metadata and test queries", View: messages.ViewStats},
	{Label: "Help", Hint: "key bindings", View: messages.ViewHelp},
	{Label: "Quit", Quit: true},
}

// View is the menu screen.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	entries []Entry
	cursor  int
	ready   bool
}

// NewView creates the menu with the cursor on the first entry.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, keys: keymap.DefaultKeyMap(), entries: Entries}
}

// Init does nothing.
func (v *View) Init() tea.Cmd { return nil }

// Update moves the cursor and activates entries.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.cursor = max(v.cursor-1, 0)
	case key.Matches(msg, v.keys.Down):
		v.cursor = min(v.cursor+1, len(v.entries)-1)
	case key.Matches(msg, v.keys.Quit):
		return tea.Quit
	case key.Matches(msg, v.keys.Submit):
		e := v.entries[v.cursor]
		if e.Quit {
			return tea.Quit
		}
		return func() tea.Msg { return messages.ViewChanged{View: e.View} }
	}
	return nil
}

// View renders the title and entries.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("proctok"))
	b.WriteString("  ")
	b.WriteString(v.styles.Muted.Render("Procurement Document Search"))
	b.WriteString("\n\n")

	for i, e := range v.entries {
		label := "  " + e.Label
		if i == v.cursor {
			label = v.styles.Selected.Render("▸ " + e.Label)
		} else {
			label = v.styles.Normal.Render(label)
		}
		b.WriteString(label)
		if e.Hint != "" {
			b.WriteString("  " + v.styles.Muted.Render(e.Hint))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("j/k move · enter open · q quit"))
	return b.String()
}

// SetDimensions marks the view ready. The menu does not depend on size.
func (v *View) SetDimensions(int, int) {
	v.ready = true
}

// Selected returns the cursor position.
func (v *View) Selected() int { return v.cursor }
