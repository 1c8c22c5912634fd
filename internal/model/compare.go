package model

// CompareRequest is the body of the legacy compare_data endpoint
type CompareRequest struct {
	CompanyIDs  []string `json:"company_ids"`
	ChartType   string   `json:"chart_type"`
	ScopeChoice string   `json:"scope_choice"`
}

// CompareResponse maps company -> year -> value
type CompareResponse struct {
	Data map[string]map[string]Number `json:"data"`
}

// ChartType enumerates the chart kinds the compare view supports
type ChartType string

const (
	ChartLine ChartType = "line"
	ChartBar  ChartType = "bar"
)
