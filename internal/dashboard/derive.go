package dashboard

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ppiankov/csrlens/internal/model"
)

// CompanyList returns the unique securities in reports, sorted
func CompanyList(reports []model.Report) []string {
	seen := make(map[string]struct{}, len(reports))
	out := make([]string, 0)
	for _, r := range reports {
		if r.Security == "" {
			continue
		}
		if _, ok := seen[r.Security]; ok {
			continue
		}
		seen[r.Security] = struct{}{}
		out = append(out, r.Security)
	}
	slices.Sort(out)
	return out
}

// FilteredCompanies returns the companies whose name contains the search
// term, ignoring case. An empty term yields nil.
func FilteredCompanies(s State) []string {
	return MatchCompanies(CompanyList(s.Reports), s.SearchTerm)
}

// MatchCompanies filters names by case-insensitive substring
func MatchCompanies(names []string, term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	var out []string
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), term) {
			out = append(out, n)
		}
	}
	return out
}

// AvailableYears returns the unique years reported by company, ascending
func AvailableYears(reports []model.Report, company string) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, r := range reports {
		if r.Security != company {
			continue
		}
		if _, ok := seen[r.ReportYear]; ok {
			continue
		}
		seen[r.ReportYear] = struct{}{}
		out = append(out, r.ReportYear)
	}
	slices.Sort(out)
	return out
}

// FilteredReports applies the company and year filters.
// An empty company or zero year matches everything.
func FilteredReports(reports []model.Report, company string, year int) []model.Report {
	var out []model.Report
	for _, r := range reports {
		if company != "" && r.Security != company {
			continue
		}
		if year != 0 && r.ReportYear != year {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Partition splits search results into chart bars and textual targets.
// Target-named points always go to targets; other points need a numeric value.
func Partition(points []model.DataPoint) ([]ChartPoint, []TargetItem) {
	var chart []ChartPoint
	var targets []TargetItem
	for _, p := range points {
		if p.IsTarget() {
			text := p.ValueRaw.String()
			if text == "" && p.IsNumeric() {
				text = p.ValueStandardized.String()
			}
			targets = append(targets, TargetItem{
				IndicatorName: p.IndicatorName,
				Text:          text,
				Year:          p.ReportYear,
			})
			continue
		}
		if !p.IsNumeric() {
			continue
		}
		chart = append(chart, ChartPoint{
			IndicatorName: p.IndicatorName,
			Value:         p.ValueStandardized.Value,
			Unit:          p.UnitStandardized,
			Raw:           p.ValueRaw.String(),
		})
	}
	return chart, targets
}

// NormalizeTrend drops points without a year or numeric value and sorts by year
func NormalizeTrend(points []model.DataPoint) []TrendPoint {
	var out []TrendPoint
	for _, p := range points {
		if p.ReportYear == 0 || !p.IsNumeric() {
			continue
		}
		out = append(out, TrendPoint{
			Year:  p.ReportYear,
			Value: p.ValueStandardized.Value,
			Unit:  p.UnitStandardized,
		})
	}
	slices.SortStableFunc(out, func(a, b TrendPoint) int {
		return cmp.Compare(a.Year, b.Year)
	})
	return out
}

// SelectedReportList returns the export selection in a stable order
func SelectedReportList(s State) []model.Report {
	out := make([]model.Report, 0, len(s.SelectedReports))
	for _, r := range s.SelectedReports {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b model.Report) int {
		return cmp.Or(
			cmp.Compare(a.Security, b.Security),
			cmp.Compare(a.ReportYear, b.ReportYear),
			cmp.Compare(a.IndicatorName, b.IndicatorName),
			cmp.Compare(a.ReportURL, b.ReportURL),
		)
	})
	return out
}

// FilterIndicators keeps catalog entries whose name contains term (case-insensitive)
func FilterIndicators(catalog []model.Indicator, term string) []model.Indicator {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return catalog
	}
	var out []model.Indicator
	for _, ind := range catalog {
		if strings.Contains(strings.ToLower(ind.Name), term) {
			out = append(out, ind)
		}
	}
	return out
}

// FilterDataPoints keeps points whose security contains term (case-insensitive)
func FilterDataPoints(points []model.DataPoint, term string) []model.DataPoint {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return points
	}
	var out []model.DataPoint
	for _, p := range points {
		if strings.Contains(strings.ToLower(p.Security), term) {
			out = append(out, p)
		}
	}
	return out
}

// ThemeGroup lists the indicator names that share a theme
type ThemeGroup struct {
	Theme      string   `json:"theme"`
	Indicators []string `json:"indicators"`
}

// GroupByTheme groups catalog names by theme. Themes and names are sorted;
// entries without a theme land in "Unknown".
func GroupByTheme(catalog []model.Indicator) []ThemeGroup {
	byTheme := make(map[string][]string)
	for _, ind := range catalog {
		theme := ind.Theme
		if theme == "" {
			theme = "Unknown"
		}
		if !slices.Contains(byTheme[theme], ind.Name) {
			byTheme[theme] = append(byTheme[theme], ind.Name)
		}
	}

	out := make([]ThemeGroup, 0, len(byTheme))
	for theme, names := range byTheme {
		slices.Sort(names)
		out = append(out, ThemeGroup{Theme: theme, Indicators: names})
	}
	slices.SortFunc(out, func(a, b ThemeGroup) int { return cmp.Compare(a.Theme, b.Theme) })
	return out
}
