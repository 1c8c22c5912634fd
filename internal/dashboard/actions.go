package dashboard

import (
	"maps"

	"github.com/ppiankov/csrlens/internal/model"
)

// WithReports replaces the loaded report list
func WithReports(s State, reports []model.Report) State {
	s.Reports = reports
	return s
}

// WithIndicators replaces the indicator catalog
func WithIndicators(s State, indicators []model.Indicator) State {
	s.Indicators = indicators
	return s
}

// SetSearchTerm updates the free-text query and hides result panels
// until the next explicit search.
func SetSearchTerm(s State, term string) State {
	s.SearchTerm = term
	s.SearchExecuted = false
	return s
}

// SelectCompany switches company and drops everything derived from the old one
func SelectCompany(s State, company string) State {
	s.SelectedCompany = company
	s.SelectedYear = 0
	s.SelectedIndicator = ""
	s.SelectedReports = nil
	s.SearchExecuted = false
	s.IndicatorChart = nil
	s.Targets = nil
	s.Trend = nil
	s.Source = nil
	return s
}

// SelectYear switches year and clears the report selection.
// Chart data stays until the next search replaces it.
func SelectYear(s State, year int) State {
	s.SelectedYear = year
	s.SelectedReports = nil
	return s
}

// ApplySearch stores the result of a company/year search
func ApplySearch(s State, points []model.DataPoint) State {
	s.IndicatorChart, s.Targets = Partition(points)
	s.SearchExecuted = true
	return s
}

// ToggleIndicator selects name, or clears it when it is already selected.
// The returned flag tells the caller whether a trend fetch is needed.
func ToggleIndicator(s State, name string) (State, bool) {
	s.Trend = nil
	if name == "" || name == s.SelectedIndicator {
		s.SelectedIndicator = ""
		return s, false
	}
	s.SelectedIndicator = name
	return s, true
}

// ApplyTrend stores a fetched indicator history
func ApplyTrend(s State, points []model.DataPoint) State {
	s.Trend = NormalizeTrend(points)
	return s
}

// ToggleReport adds r to the export selection or removes it
func ToggleReport(s State, r model.Report) State {
	id := r.ID()
	next := maps.Clone(s.SelectedReports)
	if next == nil {
		next = make(map[string]model.Report)
	}
	if _, ok := next[id]; ok {
		delete(next, id)
	} else {
		next[id] = r
	}
	s.SelectedReports = next
	return s
}

// WithSource opens the source panel
func WithSource(s State, d SourceDetail) State {
	s.Source = &d
	return s
}

// ClearSource closes the source panel
func ClearSource(s State) State {
	s.Source = nil
	return s
}
