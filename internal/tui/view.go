package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/render"
)

var help = map[mode]string{
	modeCompany: "type to search • ↑/↓ move • enter select • ctrl+l lookup • esc quit",
	modeLookup:  "type to look up • ↑/↓ move • enter select • esc back",
	modeYear:    "↑/↓ choose year • enter search • esc change company • q quit",
	modeResults: "↑/↓ move • enter trend • s source • r reports • esc back • q quit",
	modeReports: "↑/↓ move • space select • e export • esc back • q quit",
}

// View renders the current screen
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("csrlens"))
	if m.st.SelectedCompany != "" {
		sb.WriteString(m.styles.Muted.Render(" › " + m.st.SelectedCompany))
		if m.st.SelectedYear != 0 {
			sb.WriteString(m.styles.Muted.Render(" › " + strconv.Itoa(m.st.SelectedYear)))
		}
	}
	sb.WriteString("\n\n")

	switch m.mode {
	case modeCompany, modeLookup:
		sb.WriteString(m.viewInput())
	case modeYear:
		sb.WriteString(m.viewYears())
	case modeResults:
		sb.WriteString(m.viewResults())
	case modeReports:
		sb.WriteString(m.viewReports())
	}

	sb.WriteString("\n")
	if m.loading {
		sb.WriteString(m.styles.Muted.Render("Loading..."))
		sb.WriteString("\n")
	}
	if m.status != "" {
		sb.WriteString(m.styles.Warn.Render(m.status))
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.Muted.Render(help[m.mode]))
	return sb.String()
}

func (m Model) viewInput() string {
	var sb strings.Builder
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")

	items := m.inputItems()
	if len(items) == 0 {
		if m.input.Value() == "" {
			return sb.String()
		}
		sb.WriteString(m.styles.Muted.Render("No matches."))
		sb.WriteString("\n")
		return sb.String()
	}
	for i, name := range items {
		label := name
		if m.mode == modeLookup {
			label = m.matches[i].Label()
		}
		sb.WriteString(m.line(i == m.cursor, label))
	}
	return sb.String()
}

func (m Model) viewYears() string {
	years := dashboard.AvailableYears(m.st.Reports, m.st.SelectedCompany)
	if len(years) == 0 {
		return m.styles.Muted.Render("No reports for this company.") + "\n"
	}
	var sb strings.Builder
	sb.WriteString(m.styles.Bold.Render("Year"))
	sb.WriteString("\n")
	for i, y := range years {
		sb.WriteString(m.line(i == m.cursor, strconv.Itoa(y)))
	}
	return sb.String()
}

func (m Model) viewResults() string {
	var sb strings.Builder
	sb.WriteString(render.SearchResult(m.styles, m.st))

	if len(m.st.IndicatorChart) > 0 {
		cur := m.st.IndicatorChart[clamp(m.cursor, len(m.st.IndicatorChart))]
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Render("› " + cur.IndicatorName))
		sb.WriteString("\n")
	}
	if m.st.SelectedIndicator != "" {
		sb.WriteString("\n")
		sb.WriteString(render.Trend(m.styles, m.st.SelectedIndicator, m.st.Trend))
	}
	if m.st.Source != nil {
		sb.WriteString("\n")
		sb.WriteString(render.Source(m.styles, *m.st.Source))
	}
	if n := len(m.st.SelectedReports); n > 0 {
		sb.WriteString(m.styles.Accent.Render(fmt.Sprintf("%d reports selected", n)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) viewReports() string {
	reports := dashboard.FilteredReports(m.st.Reports, m.st.SelectedCompany, m.st.SelectedYear)
	if len(reports) == 0 {
		return m.styles.Muted.Render("No reports.") + "\n"
	}
	t := render.NewTable(fmt.Sprintf("Reports (%d selected)", len(m.st.SelectedReports)), "", "", "Indicator", "URL")
	for i, r := range reports {
		cur, mark := " ", "[ ]"
		if i == m.cursor {
			cur = ">"
		}
		if m.st.IsReportSelected(r) {
			mark = "[x]"
		}
		t.AddRow(cur, mark, r.IndicatorName, r.ReportURL)
	}
	return t.View(m.styles)
}

func (m Model) line(active bool, text string) string {
	if active {
		return m.styles.Selected.Render("> "+text) + "\n"
	}
	return "  " + text + "\n"
}
