package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/views/hit"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/views/stats"
	"github.com/custodia-labs/proctok/internal/core/domain"
)

// App is the root bubbletea model. It owns one instance of every view and
// routes messages to the active one.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView   *menu.View
	searchView *search.View
	hitView    *hit.View
	statsView  *stats.View

	current messages.ViewType
	err     error

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp builds the views around ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		menuView:   menu.NewView(s),
		searchView: search.NewView(s, nil, ports.Search),
		hitView:    hit.NewView(s),
		statsView:  stats.NewView(s, nil, ports.Search),
		current:    messages.ViewMenu,
	}, nil
}

// WithContext sets the context handed to service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.statsView.WithContext(ctx)
	return a
}

// WithK sets the number of hits per search.
func (a *App) WithK(k int) *App {
	a.searchView.SetK(k)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tea.SetWindowTitle("proctok - Procurement Search"))
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.current == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.current = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.SearchCompleted:
		var cmd tea.Cmd
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.HitOpened:
		a.hitView.SetHit(msg.Hit)
		a.current = messages.ViewHit
		return a, nil

	case messages.StatsLoaded, messages.PredefinedCompleted:
		var cmd tea.Cmd
		a.statsView, cmd = a.statsView.Update(msg)
		a.err = a.statsView.Err()
		return a, cmd

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.current == messages.ViewSearch {
			var cmd tea.Cmd
			a.searchView, cmd = a.searchView.Update(msg)
			return a, cmd
		}
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward hands msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.current {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
	case messages.ViewHit:
		a.hitView, cmd = a.hitView.Update(msg)
	case messages.ViewStats:
		a.statsView, cmd = a.statsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

func (a *App) switchTo(to messages.ViewType) tea.Cmd {
	from := a.current
	a.current = to

	switch to {
	case messages.ViewSearch:
		// Coming back from a chunk keeps the hits on screen.
		if from == messages.ViewHit {
			return nil
		}
		a.searchView.Reset()
		return a.searchView.Init()
	case messages.ViewStats:
		return a.statsView.Init()
	case messages.ViewMenu, messages.ViewHelp, messages.ViewHit:
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.current {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewHit:
		return a.hitView.View()
	case messages.ViewStats:
		return a.statsView.View()
	case messages.ViewHelp:
		return a.helpView()
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

// helpSections pairs each screen with its keys.
var helpSections = []struct {
	title string
	keys  [][2]string
}{
	{"Menu", [][2]string{{"j/k ↑/↓", "Move"}, {"enter", "Open"}, {"q", "Quit"}}},
	{"Search", [][2]string{{"enter", "Run query"}, {"↑/↓", "Previous queries"}, {"esc", "Back to menu"}}},
	{"Results", [][2]string{{"j/k ↑/↓", "Move"}, {"g/G", "First / last hit"}, {"enter", "Read chunk"}, {"n or /", "New query"}}},
	{"Chunk", [][2]string{{"j/k ↑/↓", "Scroll"}, {"g/G", "Top / bottom"}, {"esc", "Back to results"}}},
	{"Collection", [][2]string{{"t", "Run test queries"}, {"r", "Refresh statistics"}, {"esc", "Back to menu"}}},
}

func (a *App) helpView() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n")
	for _, sec := range helpSections {
		b.WriteString("\n")
		b.WriteString(a.styles.Subtitle.Render(sec.title))
		b.WriteString("\n")
		for _, kv := range sec.keys {
			fmt.Fprintf(&b, "  %-10s %s\n", kv[0], kv[1])
		}
	}
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render("ctrl+c quits anywhere · esc returns to the menu"))
	return b.String()
}

// Run starts the program on the alternate screen and blocks until it exits.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

// SetDimensions sizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.hitView.SetDimensions(width, height)
	a.statsView.SetDimensions(width, height)
}

// Query returns the text in the search box.
func (a *App) Query() string { return a.searchView.Query() }

// Results returns the hits of the last search.
func (a *App) Results() []domain.SearchHit { return a.searchView.Results() }

// SelectedIndex returns the highlighted hit.
func (a *App) SelectedIndex() int { return a.searchView.SelectedIndex() }

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType { return a.current }

// Err returns the last error reported by a view.
func (a *App) Err() error { return a.err }

// Ready reports whether a window size has been received.
func (a *App) Ready() bool { return a.ready }
