// Package search is the query-and-results view.
package search

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/proctok/internal/core/domain"
	"github.com/custodia-labs/proctok/internal/core/ports/driving"
)

// DefaultK is the number of hits requested per search.
const DefaultK = 10

// ErrNoSearchService is reported when the view has no service to query.
var ErrNoSearchService = errors.New("search service is required")

type mode int

const (
	modeQuery mode = iota
	modeResults
)

// View pairs a query box with the ranked hits it produced.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	query  *input.QueryInput
	hits   *list.ResultList
	status *status.Bar

	svc driving.SearchService
	ctx context.Context
	k   int

	mode   mode
	last   string
	err    error
	width  int
	height int
	ready  bool
}

// NewView creates the view in query mode.
func NewView(s *styles.Styles, km *keymap.KeyMap, svc driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keys:   km,
		query:  input.NewQueryInput(s),
		hits:   list.NewResultList(s),
		status: status.NewBar(s, km.ShortHelp()...),
		svc:    svc,
		ctx:    context.Background(),
		k:      DefaultK,
		width:  80,
		height: 24,
	}
}

// WithContext sets the context passed to the search service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetK sets the number of hits requested. Non-positive values are ignored.
func (v *View) SetK(k int) {
	if k > 0 {
		v.k = k
	}
}

// K returns the number of hits requested per search.
func (v *View) K() int { return v.k }

// Init starts the cursor blink.
func (v *View) Init() tea.Cmd {
	return v.query.Init()
}

// Update handles keys, window sizes and search results.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		if key.Matches(msg, v.keys.Back) {
			return v, changeView(messages.ViewMenu)
		}
		if v.mode == modeQuery {
			return v.updateQuery(msg)
		}
		return v.updateResults(msg)
	case messages.SearchCompleted:
		v.searchDone(msg)
		return v, nil
	case messages.ErrorOccurred:
		v.fail(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.query, cmd = v.query.Update(msg)
	return v, cmd
}

func (v *View) updateQuery(msg tea.KeyMsg) (*View, tea.Cmd) {
	if !key.Matches(msg, v.keys.Submit) {
		var cmd tea.Cmd
		v.query, cmd = v.query.Update(msg)
		return v, cmd
	}

	q, ok := v.query.Submit()
	if !ok {
		return v, nil
	}
	v.last = q
	v.err = nil
	v.status.SetState(status.StateSearching)
	v.setMode(modeResults)
	return v, v.search(q)
}

func (v *View) updateResults(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Open):
		if h := v.hits.SelectedResult(); h != nil {
			opened := *h
			return v, func() tea.Msg { return messages.HitOpened{Hit: opened} }
		}
	case key.Matches(msg, v.keys.Up):
		v.hits.MoveUp()
	case key.Matches(msg, v.keys.Down):
		v.hits.MoveDown()
	case key.Matches(msg, v.keys.Top):
		v.hits.Top()
	case key.Matches(msg, v.keys.Bottom):
		v.hits.Bottom()
	case key.Matches(msg, v.keys.NewSearch):
		v.query.Clear()
		v.setMode(modeQuery)
		return v, v.query.Focus()
	}
	return v, nil
}

func (v *View) search(q string) tea.Cmd {
	svc, ctx, k := v.svc, v.ctx, v.k
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		hits, err := svc.Search(ctx, q, k)
		return messages.SearchCompleted{Results: hits, Err: err}
	}
}

func (v *View) searchDone(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.fail(msg.Err)
		return
	}
	v.err = nil
	v.hits.SetResults(msg.Results)
	v.status.SetResults(len(msg.Results))
	v.setMode(modeResults)
}

func (v *View) fail(err error) {
	v.err = err
	v.status.SetError(err)
}

func (v *View) setMode(m mode) {
	v.mode = m
	if m == modeQuery {
		v.status.SetHints(v.keys.ShortHelp()...)
		return
	}
	v.query.Blur()
	v.status.SetHints(v.keys.ResultsHelp()...)
}

func changeView(to messages.ViewType) tea.Cmd {
	return func() tea.Msg { return messages.ViewChanged{View: to} }
}

// View renders the heading, query box, hits and status bar.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	parts := []string{
		v.styles.Title.Render("Search procurement documents"),
		v.query.View(),
		"",
	}
	if v.err != nil {
		parts = append(parts, v.styles.Error.Render("Error: "+v.err.Error()), "")
	} else if v.last != "" && v.mode == modeResults {
		parts = append(parts, v.styles.Muted.Render("Results for \""+v.last+"\""), "")
	}
	parts = append(parts, v.hits.View(), "", v.status.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// SetDimensions sizes the view and its components.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.query.SetWidth(width)
	v.hits.SetDimensions(width, height-9)
	v.status.SetWidth(width)
}

// Reset clears the query and hits and returns to query mode.
func (v *View) Reset() {
	v.query.Clear()
	v.query.Focus()
	v.hits.SetResults(nil)
	v.last = ""
	v.err = nil
	v.status.Reset()
	v.setMode(modeQuery)
}

// Query returns the text in the query box.
func (v *View) Query() string { return v.query.Value() }

// SetQuery replaces the text in the query box.
func (v *View) SetQuery(q string) { v.query.SetValue(q) }

// LastQuery returns the most recently submitted query.
func (v *View) LastQuery() string { return v.last }

// InputFocused reports whether keys go to the query box.
func (v *View) InputFocused() bool { return v.mode == modeQuery }

func (v *View) Results() []domain.SearchHit       { return v.hits.Results() }
func (v *View) SelectedIndex() int                { return v.hits.Selected() }
func (v *View) SelectedResult() *domain.SearchHit { return v.hits.SelectedResult() }
func (v *View) Err() error                        { return v.err }
func (v *View) Ready() bool                       { return v.ready }
func (v *View) Width() int                        { return v.width }
func (v *View) Height() int                       { return v.height }
