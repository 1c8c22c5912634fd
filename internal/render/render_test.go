package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/model"
)

func TestTable(t *testing.T) {
	table := NewTable("Test Table", "Col1", "Col2")
	table.AddRow("Row1Col1", "Row1Col2")
	table.AddRow("short")

	view := table.View(DefaultStyles())
	assert.Contains(t, view, "Test Table")
	assert.Contains(t, view, "Row1Col1")
	assert.Contains(t, view, "short")
	assert.Equal(t, 5, strings.Count(view, "\n"))
}

func TestTableEmpty(t *testing.T) {
	assert.Empty(t, NewTable("x", "a").View(DefaultStyles()))
}

func TestSearchResult(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, SearchResult(s, dashboard.State{}), "run a search")

	st := dashboard.State{
		SelectedCompany: "Acme",
		SelectedYear:    2023,
		SearchExecuted:  true,
		IndicatorChart:  []dashboard.ChartPoint{{IndicatorName: "Water Usage", Value: 120, Unit: "m3"}},
		Targets:         []dashboard.TargetItem{{IndicatorName: "Water Target", Text: "Reduce 20%"}},
	}
	out := SearchResult(s, st)
	assert.Contains(t, out, "Acme 2023")
	assert.Contains(t, out, "Water Usage")
	assert.Contains(t, out, "120 m3")
	assert.Contains(t, out, "Water Target:")
	assert.Contains(t, out, "Reduce 20%")

	st.IndicatorChart = nil
	assert.Contains(t, SearchResult(s, st), "No numeric indicators.")
}

func TestBarsScale(t *testing.T) {
	out := Bars(DefaultStyles(), []dashboard.ChartPoint{
		{IndicatorName: "a", Value: 10},
		{IndicatorName: "b", Value: 5},
		{IndicatorName: "zero", Value: 0},
	}, "")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, barWidth, strings.Count(lines[0], "█"))
	assert.Equal(t, barWidth/2, strings.Count(lines[1], "█"))
	assert.Zero(t, strings.Count(lines[2], "█"))
}

func TestSourcePlaceholder(t *testing.T) {
	out := Source(DefaultStyles(), dashboard.SourceDetail{
		IndicatorName: "Water",
		Page:          dashboard.NotAvailable,
		Excerpts:      []model.SourceExcerpt{{Page: "N/A", Text: "nothing here"}},
		Placeholder:   true,
	})
	assert.Contains(t, out, "Source: Water")
	assert.Contains(t, out, "[p. N/A]")
	assert.Contains(t, out, "nothing here")
}

func TestCompare(t *testing.T) {
	out := Compare(DefaultStyles(), &dashboard.CompareChart{
		Labels:   []string{"2021", "2022"},
		Datasets: []dashboard.CompareDataset{{Label: "Acme (s1)", Data: []float64{1, 2.5}}},
	})
	assert.Contains(t, out, "Acme (s1)")
	assert.Contains(t, out, "2.5")
	assert.Contains(t, Compare(DefaultStyles(), nil), "Nothing to compare.")
}

func TestMisc(t *testing.T) {
	s := DefaultStyles()
	assert.Equal(t, "A\nB\n", Companies(s, []string{"A", "B"}))
	assert.Contains(t, Years(s, "Acme", []int{2021, 2023}), "2021, 2023")
	assert.Contains(t, Indicators(s, []dashboard.ThemeGroup{{Theme: "Env", Indicators: []string{"Water"}}}), "  Water")
	assert.Contains(t, Reports(s, []model.Report{{Security: "Acme", ReportYear: 2023}}, func(model.Report) bool { return true }), "*")
	assert.Contains(t, CompanyMatches(s, []model.CompanyMatch{{CompanyName: "3M", Ticker: "MMM"}}), "3M|MMM|")
	assert.Contains(t, Trend(s, "Water", nil), "No history for Water.")
	assert.Contains(t, DataPoints(s, []model.DataPoint{{Security: "Acme", IndicatorName: "X"}}), "N/A")
}
