package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/model"
)

const barWidth = 30

// Companies lists company names, one per line
func Companies(styles Styles, names []string) string {
	if len(names) == 0 {
		return styles.Muted.Render("No companies match.") + "\n"
	}
	var sb strings.Builder
	for _, n := range names {
		sb.WriteString(n)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Years renders the available years for a company on one line
func Years(styles Styles, company string, years []int) string {
	if len(years) == 0 {
		return styles.Muted.Render(fmt.Sprintf("No reports for %s.", company)) + "\n"
	}
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return styles.Bold.Render(company) + ": " + strings.Join(parts, ", ") + "\n"
}

// Indicators renders the catalog grouped by theme
func Indicators(styles Styles, groups []dashboard.ThemeGroup) string {
	if len(groups) == 0 {
		return styles.Muted.Render("No indicators.") + "\n"
	}
	var sb strings.Builder
	for _, g := range groups {
		sb.WriteString(styles.Title.Render(g.Theme))
		sb.WriteString("\n")
		for _, name := range g.Indicators {
			sb.WriteString("  ")
			sb.WriteString(name)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Reports renders report rows. selected may be nil.
func Reports(styles Styles, reports []model.Report, selected func(model.Report) bool) string {
	if len(reports) == 0 {
		return styles.Muted.Render("No reports.") + "\n"
	}
	t := NewTable(fmt.Sprintf("Reports (%d)", len(reports)), "", "Company", "Year", "Indicator", "URL")
	for _, r := range reports {
		mark := " "
		if selected != nil && selected(r) {
			mark = "*"
		}
		t.AddRow(mark, r.Security, strconv.Itoa(r.ReportYear), r.IndicatorName, r.ReportURL)
	}
	return t.View(styles)
}

// SearchResult renders the indicator bars and targets of a search
func SearchResult(styles Styles, st dashboard.State) string {
	if !st.SearchExecuted {
		return styles.Muted.Render("Select a company and a year, then run a search.") + "\n"
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(fmt.Sprintf("%s %d", st.SelectedCompany, st.SelectedYear)))
	sb.WriteString("\n")

	if len(st.IndicatorChart) == 0 {
		sb.WriteString(styles.Muted.Render("No numeric indicators."))
		sb.WriteString("\n")
	} else {
		sb.WriteString(Bars(styles, st.IndicatorChart, st.SelectedIndicator))
	}

	if len(st.Targets) > 0 {
		sb.WriteString("\n")
		sb.WriteString(styles.Bold.Render("Targets"))
		sb.WriteString("\n")
		for _, tg := range st.Targets {
			text := tg.Text
			if text == "" {
				text = dashboard.NotAvailable
			}
			fmt.Fprintf(&sb, "  %s %s\n", styles.Accent.Render(tg.IndicatorName+":"), text)
		}
	}
	return sb.String()
}

// Bars draws a horizontal bar per chart point scaled to the largest magnitude
func Bars(styles Styles, points []dashboard.ChartPoint, highlight string) string {
	nameW, peak := 0, 0.0
	for _, p := range points {
		nameW = max(nameW, len([]rune(p.IndicatorName)))
		peak = math.Max(peak, math.Abs(p.Value))
	}

	var sb strings.Builder
	for _, p := range points {
		n := 0
		if peak > 0 {
			n = int(math.Round(math.Abs(p.Value) / peak * barWidth))
		}
		bar := strings.Repeat("█", n)
		if p.Value < 0 {
			bar = styles.Warn.Render(bar)
		} else {
			bar = styles.Accent.Render(bar)
		}
		name := fmt.Sprintf("%-*s", nameW, p.IndicatorName)
		if p.IndicatorName == highlight {
			name = styles.Selected.Render(name)
		}
		value := strconv.FormatFloat(p.Value, 'f', -1, 64)
		if p.Unit != "" {
			value += " " + p.Unit
		}
		fmt.Fprintf(&sb, "%s %s %s\n", name, bar, styles.Muted.Render(value))
	}
	return sb.String()
}

// Trend renders an indicator history as a year/value table
func Trend(styles Styles, indicator string, points []dashboard.TrendPoint) string {
	if len(points) == 0 {
		return styles.Muted.Render(fmt.Sprintf("No history for %s.", indicator)) + "\n"
	}
	t := NewTable("Trend: "+indicator, "Year", "Value", "Unit")
	for _, p := range points {
		t.AddRow(strconv.Itoa(p.Year), strconv.FormatFloat(p.Value, 'f', -1, 64), p.Unit)
	}
	return t.View(styles)
}

// Source renders the source panel
func Source(styles Styles, d dashboard.SourceDetail) string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Source: " + d.IndicatorName))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s %s\n", styles.Bold.Render("Page:"), d.Page)
	for _, ex := range d.Excerpts {
		text := ex.Text
		if d.Placeholder {
			text = styles.Muted.Render(text)
		}
		page := ex.Page.String()
		if page == "" {
			page = dashboard.NotAvailable
		}
		fmt.Fprintf(&sb, "  [p. %s] %s\n", page, text)
	}
	return styles.Panel.Render(strings.TrimRight(sb.String(), "\n")) + "\n"
}

// Compare renders a comparison as a table with one column per label
func Compare(styles Styles, cc *dashboard.CompareChart) string {
	if cc == nil || len(cc.Datasets) == 0 {
		return styles.Muted.Render("Nothing to compare.") + "\n"
	}
	t := NewTable("Comparison", append([]string{"Series"}, cc.Labels...)...)
	for _, ds := range cc.Datasets {
		row := []string{ds.Label}
		for _, v := range ds.Data {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		t.AddRow(row...)
	}
	return t.View(styles)
}

// CompanyMatches renders legacy lookup results with their selection tokens
func CompanyMatches(styles Styles, matches []model.CompanyMatch) string {
	if len(matches) == 0 {
		return styles.Muted.Render("No companies found.") + "\n"
	}
	t := NewTable("", "Company", "Ticker", "ISIN", "Token")
	for _, m := range matches {
		t.AddRow(m.CompanyName, m.Ticker, m.ISIN, m.Token())
	}
	return t.View(styles)
}

// DataPoints renders raw search rows
func DataPoints(styles Styles, points []model.DataPoint) string {
	if len(points) == 0 {
		return styles.Muted.Render("No data points.") + "\n"
	}
	t := NewTable("", "Company", "Year", "Indicator", "Value", "Unit", "Raw")
	for _, p := range points {
		t.AddRow(p.Security, strconv.Itoa(p.ReportYear), p.IndicatorName,
			p.ValueStandardized.String(), p.UnitStandardized, p.ValueRaw.String())
	}
	return t.View(styles)
}
