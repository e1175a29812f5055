// Package keymap holds the key bindings shared by the TUI views.
package keymap

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap groups every binding. Views match keys with key.Matches.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Submit runs the typed query.
	Submit key.Binding
	// Open shows the selected chunk in full.
	Open      key.Binding
	NewSearch key.Binding

	// RunTests runs the predefined procurement queries.
	RunTests key.Binding
	Refresh  key.Binding
}

var _ help.KeyMap = (*KeyMap)(nil)

// DefaultKeyMap returns the bindings used unless a caller supplies its own.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),

		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Top:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom: key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),

		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read chunk")),
		NewSearch: key.NewBinding(key.WithKeys("n", "/"), key.WithHelp("n", "new query")),

		RunTests: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "test queries")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}

// ShortHelp is shown while typing a query.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Back}
}

// ResultsHelp is shown while browsing hits.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.Down, k.Open, k.NewSearch, k.Back}
}

// ChunkHelp is shown while reading a chunk.
func (k *KeyMap) ChunkHelp() []key.Binding {
	return []key.Binding{k.Down, k.Top, k.Bottom, k.Back}
}

// StatsHelp is shown on the collection view.
func (k *KeyMap) StatsHelp() []key.Binding {
	return []key.Binding{k.RunTests, k.Refresh, k.Back}
}

// FullHelp lists every binding in columns.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Submit, k.Open, k.NewSearch},
		{k.RunTests, k.Refresh},
		{k.Back, k.Help, k.Quit},
	}
}
