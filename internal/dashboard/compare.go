package dashboard

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/ppiankov/csrlens/internal/model"
)

// ErrNoCompanies is returned when a comparison is requested with no companies
var ErrNoCompanies = eris.New("select at least one company")

// Palette is cycled across compare datasets
var Palette = []string{"#1f77b4", "#2ca02c", "#ff7f0e", "#9467bd", "#8c564b", "#e377c2"}

// CompareChart is a renderer-neutral multi-series chart
type CompareChart struct {
	Type     model.ChartType  `json:"type"`
	Labels   []string         `json:"labels"`
	Datasets []CompareDataset `json:"datasets"`
}

// CompareDataset is one company's series, aligned with CompareChart.Labels
type CompareDataset struct {
	Company string    `json:"company"`
	Label   string    `json:"label"`
	Color   string    `json:"color"`
	Data    []float64 `json:"data"`
}

// BuildCompareChart aligns every company on the union of reported years.
// Missing or non-numeric years are plotted as 0.
func BuildCompareChart(resp *model.CompareResponse, chartType model.ChartType, scope string) *CompareChart {
	out := &CompareChart{Type: chartType, Labels: []string{}, Datasets: []CompareDataset{}}
	if resp == nil || len(resp.Data) == 0 {
		return out
	}

	companies := make([]string, 0, len(resp.Data))
	years := make(map[string]struct{})
	for company, byYear := range resp.Data {
		companies = append(companies, company)
		for y := range byYear {
			years[y] = struct{}{}
		}
	}
	slices.Sort(companies)

	for y := range years {
		out.Labels = append(out.Labels, y)
	}
	slices.SortFunc(out.Labels, compareYearLabels)

	for i, company := range companies {
		byYear := resp.Data[company]
		data := make([]float64, len(out.Labels))
		for j, y := range out.Labels {
			if v, ok := byYear[y]; ok && v.Valid {
				data[j] = v.Value
			}
		}
		out.Datasets = append(out.Datasets, CompareDataset{
			Company: company,
			Label:   fmt.Sprintf("%s (%s)", company, scope),
			Color:   Palette[i%len(Palette)],
			Data:    data,
		})
	}
	return out
}

// numeric labels sort by value, anything else after them lexically
func compareYearLabels(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai - bi
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	}
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
