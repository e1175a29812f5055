// Package stats provides the collection overview view for the TUI.
package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driving"
)

// ErrNoSearchService indicates that no search service was provided.
var ErrNoSearchService = errors.New("search service is required")

// testK is the number of results requested per predefined query.
const testK = 5

// View shows collection statistics and the outcome of the predefined queries.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context

	stats   *domain.CollectionStats
	results []domain.PredefinedResult
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a new stats view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:        s,
		keymap:        km,
		statusbar:     status.NewBar(s, km.StatsHelp()...),
		searchService: searchService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the collection statistics.
func (v *View) Init() tea.Cmd {
	v.statusbar.SetState(status.StateLoading)
	return v.loadStats()
}

func (v *View) loadStats() tea.Cmd {
	return func() tea.Msg {
		if v.searchService == nil {
			return messages.StatsLoaded{Err: ErrNoSearchService}
		}
		s, err := v.searchService.Stats(v.ctx)
		return messages.StatsLoaded{Stats: s, Err: err}
	}
}

func (v *View) runTests() tea.Cmd {
	return func() tea.Msg {
		if v.searchService == nil {
			return messages.PredefinedCompleted{Err: ErrNoSearchService}
		}
		results, err := v.searchService.RunPredefined(v.ctx, testK)
		return messages.PredefinedCompleted{Results: results, Err: err}
	}
}

// Update handles messages for the stats view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Back):
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case key.Matches(msg, v.keymap.RunTests):
			v.statusbar.SetState(status.StateLoading)
			return v, v.runTests()
		case key.Matches(msg, v.keymap.Refresh):
			v.statusbar.SetState(status.StateLoading)
			return v, v.loadStats()
		}
		return v, nil

	case messages.StatsLoaded:
		v.setErr(msg.Err)
		if msg.Err == nil {
			v.stats = msg.Stats
			v.statusbar.SetState(status.StateStats)
			v.statusbar.SetMessage(fmt.Sprintf("%d chunks", v.Count()))
		}
		return v, nil

	case messages.PredefinedCompleted:
		v.setErr(msg.Err)
		if msg.Err == nil {
			v.results = msg.Results
			v.statusbar.SetState(status.StateStats)
			v.statusbar.SetMessage(fmt.Sprintf("%d/%d queries returned results", v.Passed(), len(v.results)))
		}
		return v, nil
	}

	return v, nil
}

func (v *View) setErr(err error) {
	v.err = err
	if err != nil {
		v.statusbar.SetError(err)
	}
}

// View renders the stats view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Collection"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.stats != nil {
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%-12s %s", "Name:", v.stats.Collection)))
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%-12s %s", "Backend:", v.stats.Backend)))
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%-12s %d", "Chunks:", v.stats.Count)))
		b.WriteString("\n")

		if len(v.stats.SampleMetadata) > 0 {
			b.WriteString("\n")
			b.WriteString(v.styles.Subtitle.Render("Sample metadata"))
			b.WriteString("\n")
			keys := make([]string, 0, len(v.stats.SampleMetadata))
			for k := range v.stats.SampleMetadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				b.WriteString("  " + v.styles.MetaKey.Render(k+":") + " " + v.styles.Muted.Render(v.stats.SampleMetadata[k]))
				b.WriteString("\n")
			}
		}
	}

	if len(v.results) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Test queries"))
		b.WriteString("\n")
		for _, r := range v.results {
			b.WriteString(v.renderResult(r))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

func (v *View) renderResult(r domain.PredefinedResult) string {
	if r.Error != "" {
		return v.styles.Error.Render(fmt.Sprintf("  FAIL %-30s %s", r.Query, r.Error))
	}
	if r.Results == 0 {
		return v.styles.Warning.Render(fmt.Sprintf("  FAIL %-30s no results", r.Query))
	}
	line := v.styles.Success.Render(fmt.Sprintf("  PASS %-30s %d results", r.Query, r.Results))
	if r.Top != nil {
		line += ", top " + v.styles.Score(r.Top.Similarity).Render(fmt.Sprintf("%.2f", r.Top.Similarity))
	}
	return line
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.statusbar.SetWidth(width)
}

// Stats returns the loaded statistics, or nil.
func (v *View) Stats() *domain.CollectionStats {
	return v.stats
}

// Count returns the number of stored chunks, or zero before loading.
func (v *View) Count() int {
	if v.stats == nil {
		return 0
	}
	return v.stats.Count
}

// Results returns the predefined query results.
func (v *View) Results() []domain.PredefinedResult {
	return v.results
}

// Passed returns how many predefined queries returned at least one result.
func (v *View) Passed() int {
	n := 0
	for _, r := range v.results {
		if r.Error == "" && r.Results > 0 {
			n++
		}
	}
	return n
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
