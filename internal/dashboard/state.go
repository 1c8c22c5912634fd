// Package dashboard holds the selection state behind the CSR dashboards and
// the pure transitions and derived views computed from it.
//
// State values are never mutated in place. Every transition returns a new
// State, so a snapshot handed to a renderer stays consistent while the
// Session keeps moving.
package dashboard

import (
	"github.com/ppiankov/csrlens/internal/model"
)

// State is the full view state of one dashboard session
type State struct {
	Reports    []model.Report    // full report list, loaded once
	Indicators []model.Indicator // indicator catalog, loaded once

	SearchTerm        string
	SelectedCompany   string
	SelectedYear      int // 0 = none
	SelectedIndicator string
	SelectedReports   map[string]model.Report // keyed by Report.ID()

	SearchExecuted bool // result panels are shown only after an explicit search
	IndicatorChart []ChartPoint
	Targets        []TargetItem
	Trend          []TrendPoint
	Source         *SourceDetail // nil when the source panel is closed
}

// ChartPoint is one bar of the indicator chart
type ChartPoint struct {
	IndicatorName string  `json:"indicator_name"`
	Value         float64 `json:"value"`
	Unit          string  `json:"unit,omitempty"`
	Raw           string  `json:"value_raw,omitempty"`
}

// TargetItem is a textual commitment shown outside the numeric chart
type TargetItem struct {
	IndicatorName string `json:"indicator_name"`
	Text          string `json:"text"`
	Year          int    `json:"report_year"`
}

// TrendPoint is one year of an indicator's history
type TrendPoint struct {
	Year  int     `json:"report_year"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// SourceDetail backs the source panel for one indicator
type SourceDetail struct {
	IndicatorName string                `json:"indicator_name"`
	Page          string                `json:"page"`
	Excerpts      []model.SourceExcerpt `json:"excerpts"`
	Placeholder   bool                  `json:"placeholder"` // true when no real source was found
}

// HasSelection reports whether both company and year are chosen
func (s State) HasSelection() bool {
	return s.SelectedCompany != "" && s.SelectedYear != 0
}

// IsReportSelected reports whether r is in the export selection
func (s State) IsReportSelected(r model.Report) bool {
	_, ok := s.SelectedReports[r.ID()]
	return ok
}
