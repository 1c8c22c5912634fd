package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ppiankov/csrlens/internal/dashboard"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case loadedMsg:
		m.loading = false
		m.st = m.sess.State()
		if msg.err != nil {
			m.status = "Could not load reports: " + msg.err.Error()
		}
		return m, nil

	case debounceMsg:
		if msg.seq != m.inputSeq {
			return m, nil
		}
		switch m.mode {
		case modeCompany:
			m.st = m.sess.SetSearchTerm(m.input.Value())
			m.cursor = 0
		case modeLookup:
			if m.input.Value() == "" {
				m.matches = nil
				return m, nil
			}
			return m, m.lookupCmd(m.input.Value())
		}
		return m, nil

	case stateMsg:
		m.st = msg.st
		m.loading = false
		return m, nil

	case sourceMsg:
		m.st = m.sess.State()
		return m, nil

	case lookupMsg:
		if msg.current && m.mode == modeLookup {
			m.matches = msg.matches
			m.cursor = 0
		}
		return m, nil

	case exportMsg:
		switch {
		case msg.err != nil:
			m.status = "Export failed: " + msg.err.Error()
		case !msg.ok:
			m.status = "Nothing selected to export."
		default:
			m.status = fmt.Sprintf("Exported %d reports.", len(m.st.SelectedReports))
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeCompany, modeLookup:
		return m.handleInputKey(msg)
	case modeYear:
		return m.handleYearKey(msg)
	case modeResults:
		return m.handleResultsKey(msg)
	case modeReports:
		return m.handleReportsKey(msg)
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.inputItems()
	switch msg.String() {
	case "up":
		m.cursor = clamp(m.cursor-1, len(items))
		return m, nil
	case "down":
		m.cursor = clamp(m.cursor+1, len(items))
		return m, nil
	case "ctrl+l":
		m = m.switchInput(modeLookup)
		return m, nil
	case "esc":
		if m.mode == modeLookup {
			m = m.switchInput(modeCompany)
			return m, nil
		}
		return m, tea.Quit
	case "enter":
		if len(items) == 0 {
			return m, nil
		}
		return m.selectCompany(items[m.cursor]), nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	m.inputSeq++
	if m.mode == modeLookup && m.input.Value() == "" {
		// empty query hides results without a request
		m.matches = nil
		return m, cmd
	}
	return m, tea.Batch(cmd, m.debounceCmd())
}

func (m Model) inputItems() []string {
	if m.mode == modeLookup {
		out := make([]string, 0, len(m.matches))
		for _, c := range m.matches {
			out = append(out, c.CompanyName)
		}
		return out
	}
	return dashboard.FilteredCompanies(m.st)
}

func (m Model) switchInput(to mode) Model {
	m.mode = to
	m.cursor = 0
	m.matches = nil
	m.inputSeq++
	m.input.SetValue("")
	if to == modeLookup {
		m.input.Placeholder = "Look up company, ticker or ISIN..."
	} else {
		m.input.Placeholder = "Search companies..."
		m.st = m.sess.SetSearchTerm("")
	}
	m.input.Focus()
	return m
}

func (m Model) selectCompany(company string) Model {
	m.st = m.sess.SelectCompany(company)
	m.mode = modeYear
	m.cursor = 0
	m.matches = nil
	m.input.Blur()
	m.status = ""
	m.changed()
	return m
}

func (m Model) handleYearKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	years := dashboard.AvailableYears(m.st.Reports, m.st.SelectedCompany)
	switch msg.String() {
	case "up", "left":
		m.cursor = clamp(m.cursor-1, len(years))
	case "down", "right":
		m.cursor = clamp(m.cursor+1, len(years))
	case "esc":
		m = m.switchInput(modeCompany)
	case "q":
		return m, tea.Quit
	case "enter":
		if len(years) == 0 {
			return m, nil
		}
		year := years[m.cursor]
		m.st = m.sess.SelectYear(year)
		m.mode = modeResults
		m.cursor = 0
		m.loading = true
		m.changed()
		return m, m.searchCmd(m.st.SelectedCompany, year)
	}
	return m, nil
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	bars := m.st.IndicatorChart
	switch msg.String() {
	case "up":
		m.cursor = clamp(m.cursor-1, len(bars))
	case "down":
		m.cursor = clamp(m.cursor+1, len(bars))
	case "enter", "t":
		if len(bars) > 0 {
			return m, m.indicatorCmd(bars[m.cursor].IndicatorName)
		}
	case "s":
		if len(bars) > 0 {
			return m, m.sourceCmd(bars[m.cursor].IndicatorName)
		}
	case "r":
		m.mode = modeReports
		m.cursor = 0
	case "esc":
		if m.st.Source != nil {
			m.st = m.sess.ClearSourceDetail()
			return m, nil
		}
		m.mode = modeYear
		m.cursor = 0
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleReportsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	reports := dashboard.FilteredReports(m.st.Reports, m.st.SelectedCompany, m.st.SelectedYear)
	switch msg.String() {
	case "up":
		m.cursor = clamp(m.cursor-1, len(reports))
	case "down":
		m.cursor = clamp(m.cursor+1, len(reports))
	case " ", "space", "x":
		if len(reports) > 0 {
			m.st = m.sess.ToggleReportSelection(reports[m.cursor])
			m.changed()
		}
	case "e":
		if m.opts.Downloader == nil {
			m.status = "Export is not configured."
			return m, nil
		}
		return m, m.exportCmd()
	case "esc":
		m.mode = modeResults
		m.cursor = 0
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
