// Package styles holds the palette and lipgloss styles shared by proctok views.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color

	// StatusBackground fills the bottom status line.
	StatusBackground lipgloss.Color
}

// DefaultTheme is a dark palette with a teal accent.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:          lipgloss.Color("#2DD4BF"),
		Secondary:        lipgloss.Color("#60A5FA"),
		Background:       lipgloss.Color("#111827"),
		Foreground:       lipgloss.Color("#E5E7EB"),
		Muted:            lipgloss.Color("#6B7280"),
		Success:          lipgloss.Color("#4ADE80"),
		Warning:          lipgloss.Color("#FBBF24"),
		Error:            lipgloss.Color("#F87171"),
		Border:           lipgloss.Color("#374151"),
		StatusBackground: lipgloss.Color("#1F2937"),
	}
}

// Similarity thresholds used by Styles.Score.
const (
	StrongMatch = 0.75
	WeakMatch   = 0.5
)

// Styles are the lipgloss styles built from a Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// InputField frames the query box.
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style

	// MetaKey renders metadata field names in the hit and collection views.
	MetaKey lipgloss.Style
}

// NewStyles builds styles from theme, falling back to DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		theme:    theme,
		Title:    fg(theme.Primary).Bold(true),
		Subtitle: fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Selected: fg(theme.Background).Background(theme.Primary).Bold(true),
		Error:    fg(theme.Error),
		Success:  fg(theme.Success),
		Warning:  fg(theme.Warning),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),
		StatusBar: fg(theme.Muted).Background(theme.StatusBackground).Padding(0, 1),
		Help:      fg(theme.Muted).Italic(true),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(theme.Border),
		MetaKey: fg(theme.Secondary),
	}
}

// DefaultStyles is NewStyles(DefaultTheme()).
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette behind s.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Score picks a style for a similarity value: green for strong matches,
// yellow for middling ones and muted below WeakMatch.
func (s *Styles) Score(similarity float64) lipgloss.Style {
	switch {
	case similarity >= StrongMatch:
		return s.Success
	case similarity >= WeakMatch:
		return s.Warning
	default:
		return s.Muted
	}
}
