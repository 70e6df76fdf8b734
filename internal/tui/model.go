package tui

import (
	"context"
	"time"

	"coindeck/internal/dashboard"
	"coindeck/internal/domain"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Dashboard is the slice of the controller the TUI drives. Declared
// here so sessions can run against a stub in tests.
type Dashboard interface {
	Snapshot() dashboard.ViewFragments
	RefreshAll(ctx context.Context)
	SetSearch(text string) dashboard.ViewFragments
	SelectAsset(ctx context.Context, assetID string) error
}

type tickMsg time.Time

type refreshedMsg struct{}

type selectedMsg struct{ err error }

// AppModel is the terminal dashboard: four panels fed from the shared
// controller, a search input over the news panel, and tab-cycled asset
// selection for the history chart.
type AppModel struct {
	ctrl     Dashboard
	interval time.Duration

	frags    dashboard.ViewFragments
	search   textinput.Model
	selIndex int // index into domain.SelectableAssets, -1 means none

	width  int
	height int
	status string
}

func NewAppModel(ctrl Dashboard, refreshInterval time.Duration) *AppModel {
	ti := textinput.New()
	ti.Placeholder = "filter news"
	ti.Prompt = "/ "
	ti.CharLimit = 64

	return &AppModel{
		ctrl:     ctrl,
		interval: refreshInterval,
		frags:    ctrl.Snapshot(),
		search:   ti,
		selIndex: -1,
	}
}

// SetSize primes the model with the session's PTY dimensions.
func (m *AppModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), tickEvery(m.interval), textinput.Blink)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), tickEvery(m.interval))

	case refreshedMsg:
		m.frags = m.ctrl.Snapshot()
		return m, nil

	case selectedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.frags = m.ctrl.Snapshot()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.search.Focused() {
		switch msg.String() {
		case "esc", "enter":
			m.search.Blur()
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.frags = m.ctrl.SetSearch(m.search.Value())
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.search.Focus()
		return m, textinput.Blink
	case "r":
		return m, m.refreshCmd()
	case "tab":
		return m, m.cycleAssetCmd()
	case "esc":
		if m.selIndex >= 0 {
			m.selIndex = -1
			return m, m.selectCmd("")
		}
		return m, nil
	}
	return m, nil
}

// cycleAssetCmd advances the history selection through the supported
// assets and wraps back to no selection after the last one.
func (m *AppModel) cycleAssetCmd() tea.Cmd {
	m.selIndex++
	if m.selIndex >= len(domain.SelectableAssets) {
		m.selIndex = -1
		return m.selectCmd("")
	}
	return m.selectCmd(domain.SelectableAssets[m.selIndex])
}

func (m *AppModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		m.ctrl.RefreshAll(ctx)
		return refreshedMsg{}
	}
}

func (m *AppModel) selectCmd(assetID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return selectedMsg{err: m.ctrl.SelectAsset(ctx, assetID)}
	}
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
