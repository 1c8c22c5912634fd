// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/model"
	"github.com/ppiankov/csrlens/internal/render"
)

type mode int

const (
	modeCompany mode = iota
	modeLookup
	modeYear
	modeResults
	modeReports
)

// Options configures the dashboard model
type Options struct {
	// Debounce delays free-text queries until typing pauses
	Debounce time.Duration
	// Downloader receives CSV exports
	Downloader dashboard.Downloader
	// OnChange is called after the company, year or report selection changes
	OnChange func(dashboard.State)
}

// Model is the bubbletea model driving a dashboard.Session
type Model struct {
	ctx  context.Context
	sess *dashboard.Session
	opts Options

	input    textinput.Model
	inputSeq int

	mode    mode
	cursor  int
	st      dashboard.State
	matches []model.CompanyMatch

	styles  render.Styles
	status  string
	loading bool
	width   int
}

// New creates the dashboard model. The session may already hold restored state.
func New(ctx context.Context, sess *dashboard.Session, opts Options) Model {
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}

	ti := textinput.New()
	ti.Placeholder = "Search companies..."
	ti.CharLimit = 80
	ti.Width = 40
	ti.Focus()

	m := Model{
		ctx:     ctx,
		sess:    sess,
		opts:    opts,
		input:   ti,
		st:      sess.State(),
		styles:  render.DefaultStyles(),
		loading: true,
	}
	if m.st.SelectedCompany != "" {
		m.mode = modeYear
		m.input.Blur()
	}
	return m
}

// Run starts the dashboard on the alternate screen
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}

type (
	loadedMsg   struct{ err error }
	debounceMsg struct{ seq int }
	stateMsg    struct{ st dashboard.State }
	sourceMsg   struct{ d dashboard.SourceDetail }
	lookupMsg   struct {
		matches []model.CompanyMatch
		current bool
	}
	exportMsg struct {
		ok  bool
		err error
	}
)

// Init loads the report list and indicator catalog
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadCmd())
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.sess.Load(m.ctx)}
	}
}

func (m Model) debounceCmd() tea.Cmd {
	seq := m.inputSeq
	return tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

func (m Model) searchCmd(company string, year int) tea.Cmd {
	return func() tea.Msg {
		return stateMsg{st: m.sess.RunSearch(m.ctx, company, year)}
	}
}

func (m Model) indicatorCmd(name string) tea.Cmd {
	return func() tea.Msg {
		return stateMsg{st: m.sess.SelectIndicator(m.ctx, name)}
	}
}

func (m Model) sourceCmd(name string) tea.Cmd {
	return func() tea.Msg {
		return sourceMsg{d: m.sess.FetchSourceDetail(m.ctx, name)}
	}
}

func (m Model) lookupCmd(q string) tea.Cmd {
	return func() tea.Msg {
		matches, current := m.sess.LookupCompanies(m.ctx, q)
		return lookupMsg{matches: matches, current: current}
	}
}

func (m Model) exportCmd() tea.Cmd {
	return func() tea.Msg {
		ok, err := m.sess.ExportSelectedReports(m.opts.Downloader)
		return exportMsg{ok: ok, err: err}
	}
}

func (m Model) changed() {
	if m.opts.OnChange != nil {
		m.opts.OnChange(m.st)
	}
}
