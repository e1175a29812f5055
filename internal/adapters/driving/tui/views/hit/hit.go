// Package hit provides the view that shows one retrieved chunk in full.
package hit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/proctok/internal/core/domain"
)

// maxValueLen bounds metadata values on one line.
const maxValueLen = 60

// View shows a hit's text followed by its metadata.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap

	hit          *domain.SearchHit
	lines        []string
	scrollOffset int
	width        int
	height       int
	ready        bool
}

// NewView creates a new hit view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		width:  80,
		height: 24,
	}
}

// SetHit sets the hit to display and resets scrolling.
func (v *View) SetHit(hit domain.SearchHit) {
	v.hit = &hit
	v.scrollOffset = 0
	v.buildLines()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the hit view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Up):
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case key.Matches(msg, v.keys.Down):
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case key.Matches(msg, v.keys.Top):
		v.scrollOffset = 0
	case key.Matches(msg, v.keys.Bottom):
		v.scrollOffset = v.maxScrollOffset()
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}
	}

	return v, nil
}

// buildLines wraps the chunk text to the view width and appends sorted metadata.
func (v *View) buildLines() {
	v.lines = nil
	if v.hit == nil {
		return
	}

	width := v.width - 4
	if width < 20 {
		width = 20
	}

	v.lines = append(v.lines,
		formatField("Rank", fmt.Sprintf("%d", v.hit.Rank)),
		formatField("ID", v.hit.ID),
		formatField("Similarity", fmt.Sprintf("%.3f (distance %.3f)", v.hit.Similarity, v.hit.Distance)),
	)
	if origin := list.Origin(v.hit); origin != "" {
		v.lines = append(v.lines, formatField("Source", origin))
	}
	v.lines = append(v.lines, "")
	for _, para := range strings.Split(v.hit.Text, "\n") {
		v.lines = append(v.lines, Wrap(para, width)...)
	}

	if len(v.hit.Metadata) == 0 {
		return
	}
	v.lines = append(v.lines, "", "Metadata:")
	keys := make([]string, 0, len(v.hit.Metadata))
	for k := range v.hit.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		value := v.hit.Metadata[k]
		if len(value) > maxValueLen {
			value = value[:maxValueLen-3] + "..."
		}
		v.lines = append(v.lines, fmt.Sprintf("  %s: %s", k, value))
	}
}

// Wrap breaks s into lines of at most width bytes on word boundaries.
// Words longer than width are split.
func Wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	for _, w := range words {
		for len(w) > width {
			if cur.Len() > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
			}
			lines = append(lines, w[:width])
			w = w[width:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(w) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

func formatField(label, value string) string {
	return fmt.Sprintf("%-12s %s", label+":", value)
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	// title, separator, help and padding
	available := v.height - 6
	if available < 1 {
		available = 1
	}
	return available
}

func (v *View) maxScrollOffset() int {
	maxOffset := len(v.lines) - v.visibleLines()
	if maxOffset < 0 {
		maxOffset = 0
	}
	return maxOffset
}

// View renders the hit view.
func (v *View) View() string {
	var b strings.Builder

	title := "Chunk"
	if v.hit != nil {
		title = list.Title(v.hit)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	if v.hit == nil {
		b.WriteString(v.styles.Muted.Render("No chunk selected"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(v.lines) && i < v.scrollOffset+visible; i++ {
		line := v.lines[i]
		switch {
		case line == "Metadata:":
			b.WriteString(v.styles.Subtitle.Render(line))
		case strings.HasPrefix(line, "  "):
			b.WriteString(v.styles.Muted.Render(line))
		default:
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visible, len(v.lines)),
			len(v.lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] scroll  [g/G] top/bottom  [esc] back")
}

// SetDimensions sets the view dimensions and rewraps the text.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.buildLines()
}

// Hit returns the displayed hit, or nil.
func (v *View) Hit() *domain.SearchHit {
	return v.hit
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Lines returns the rendered content lines.
func (v *View) Lines() []string {
	return v.lines
}
