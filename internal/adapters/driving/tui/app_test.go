package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/proctok/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/proctok/internal/core/domain"
)

func sampleHits() []domain.SearchHit {
	return []domain.SearchHit{
		{
			Rank: 1, ID: "a1", Text: "Evaluation criteria for the tender.", Similarity: 0.82, Distance: 0.18,
			Metadata: map[string]string{domain.MetaTitle: "Tender Guide", domain.MetaChunkIndex: "3"},
		},
		{
			Rank: 2, ID: "b2", Text: "Pricing schedule and budget.", Similarity: 0.64, Distance: 0.36,
			Metadata: map[string]string{domain.MetaFilename: "pricing.pdf"},
		},
	}
}

func newTestApp(t *testing.T, search *MockSearchService) *App {
	t.Helper()
	app, err := NewApp(NewPorts(search))
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

// runCmd executes cmd and feeds the resulting message back into the app.
func runCmd(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	app.Update(cmd())
}

func typeQuery(app *App, q string) {
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(q)})
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(NewPorts(&MockSearchService{}))

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	require.ErrorIs(t, err, ErrMissingSearchService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, err := NewApp(NewPorts(&MockSearchService{}))
	require.NoError(t, err)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Same(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	app, err := NewApp(NewPorts(&MockSearchService{}))
	require.NoError(t, err)

	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, err := NewApp(NewPorts(&MockSearchService{}))
	require.NoError(t, err)

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Same(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
	assert.Equal(t, 120, app.width)
	assert.Equal(t, 40, app.height)
}

func TestApp_Update_CtrlC(t *testing.T) {
	app := newTestApp(t, &MockSearchService{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_Update_Quit(t *testing.T) {
	app := newTestApp(t, &MockSearchService{})

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_SearchFlow(t *testing.T) {
	var gotQuery string
	var gotK int
	search := &MockSearchService{
		SearchFunc: func(_ context.Context, q string, k int) ([]domain.SearchHit, error) {
			gotQuery, gotK = q, k
			return sampleHits(), nil
		},
	}
	app := newTestApp(t, search).WithK(7)

	app.Update(messages.ViewChanged{View: messages.ViewSearch})
	require.Equal(t, messages.ViewSearch, app.CurrentView())

	typeQuery(app, "evaluation")
	assert.Equal(t, "evaluation", app.Query())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(app, cmd)

	assert.Equal(t, "evaluation", gotQuery)
	assert.Equal(t, 7, gotK)
	require.Len(t, app.Results(), 2)
	assert.Equal(t, 0, app.SelectedIndex())
	assert.NoError(t, app.Err())
	assert.Contains(t, app.View(), "Tender Guide")
}

func TestApp_SearchError(t *testing.T) {
	search := &MockSearchService{
		SearchFunc: func(context.Context, string, int) ([]domain.SearchHit, error) {
			return nil, errors.New("store unavailable")
		},
	}
	app := newTestApp(t, search)
	app.Update(messages.ViewChanged{View: messages.ViewSearch})
	typeQuery(app, "budget")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(app, cmd)

	require.Error(t, app.Err())
	assert.Contains(t, app.View(), "store unavailable")
}

func TestApp_OpenHitAndReturn(t *testing.T) {
	search := &MockSearchService{
		SearchFunc: func(context.Context, string, int) ([]domain.SearchHit, error) {
			return sampleHits(), nil
		},
	}
	app := newTestApp(t, search)
	app.Update(messages.ViewChanged{View: messages.ViewSearch})
	typeQuery(app, "pricing")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(app, cmd)

	// Move to the second hit and open it
	app.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, app.SelectedIndex())
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(app, cmd)

	require.Equal(t, messages.ViewHit, app.CurrentView())
	require.NotNil(t, app.hitView.Hit())
	assert.Equal(t, "b2", app.hitView.Hit().ID)
	assert.Contains(t, app.View(), "Pricing schedule")

	// Esc goes back to the result list without clearing it
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	runCmd(app, cmd)

	assert.Equal(t, messages.ViewSearch, app.CurrentView())
	assert.Len(t, app.searchView.Results(), 2)
}

func TestApp_StatsView(t *testing.T) {
	search := &MockSearchService{
		StatsFunc: func(context.Context) (*domain.CollectionStats, error) {
			return &domain.CollectionStats{Collection: "procurement_docs", Backend: "memory", Count: 42}, nil
		},
		RunPredefinedFunc: func(_ context.Context, k int) ([]domain.PredefinedResult, error) {
			return []domain.PredefinedResult{{Query: "evaluation criteria", Results: k}}, nil
		},
	}
	app := newTestApp(t, search)

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewStats})
	runCmd(app, cmd)

	require.Equal(t, messages.ViewStats, app.CurrentView())
	assert.Equal(t, 42, app.statsView.Count())
	assert.Contains(t, app.View(), "procurement_docs")

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	runCmd(app, cmd)

	require.Len(t, app.statsView.Results(), 1)
	assert.Contains(t, app.View(), "evaluation criteria")
}

func TestApp_StatsView_Error(t *testing.T) {
	search := &MockSearchService{
		StatsFunc: func(context.Context) (*domain.CollectionStats, error) {
			return nil, errors.New("connection refused")
		},
	}
	app := newTestApp(t, search)

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewStats})
	runCmd(app, cmd)

	require.Error(t, app.Err())
	assert.Contains(t, app.View(), "connection refused")
}

func TestApp_EscFromViews(t *testing.T) {
	for _, view := range []messages.ViewType{messages.ViewSearch, messages.ViewStats} {
		t.Run(view.String(), func(t *testing.T) {
			app := newTestApp(t, &MockSearchService{})
			app.Update(messages.ViewChanged{View: view})

			_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
			runCmd(app, cmd)

			assert.Equal(t, messages.ViewMenu, app.CurrentView())
		})
	}
}

func TestApp_HelpView(t *testing.T) {
	app := newTestApp(t, &MockSearchService{})
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	out := app.View()
	assert.Contains(t, out, "Help")
	assert.Contains(t, out, "Run test queries")

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_MenuNavigation(t *testing.T) {
	app := newTestApp(t, &MockSearchService{})

	assert.Contains(t, app.View(), "Procurement Document Search")

	app.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(app, cmd)

	assert.Equal(t, messages.ViewStats, app.CurrentView())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t, &MockSearchService{})
	app.Update(messages.ViewChanged{View: messages.ViewSearch})

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
}

func TestApp_View_NotReady(t *testing.T) {
	app, err := NewApp(NewPorts(&MockSearchService{}))
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}
