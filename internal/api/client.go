// Package api is a client for the CSR data API that backs the dashboards.
package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ppiankov/csrlens/internal/model"
)

// Client defines the CSR data API operations.
type Client interface {
	// Reports lists report records, optionally narrowed by q.
	Reports(ctx context.Context, q ReportQuery) ([]model.Report, error)
	// Indicators returns the full indicator catalog.
	Indicators(ctx context.Context) ([]model.Indicator, error)
	// SearchIndicators returns catalog entries whose name matches term.
	SearchIndicators(ctx context.Context, term string) ([]model.Indicator, error)
	// SearchData returns data points; empty query fields are not sent and the rest are AND-combined.
	SearchData(ctx context.Context, q DataQuery) ([]model.DataPoint, error)
	// SearchCompanies is the legacy company lookup.
	SearchCompanies(ctx context.Context, query string) ([]model.CompanyMatch, error)
	// CompareData is the legacy multi-company comparison endpoint.
	CompareData(ctx context.Context, req model.CompareRequest) (*model.CompareResponse, error)
}

// ReportQuery narrows GET /reports
type ReportQuery struct {
	Security string
	Year     int
}

func (q ReportQuery) values() url.Values {
	v := url.Values{}
	if q.Security != "" {
		v.Set("security", q.Security)
	}
	if q.Year != 0 {
		v.Set("year", strconv.Itoa(q.Year))
	}
	return v
}

// DataQuery narrows GET /data/search
type DataQuery struct {
	Security      string
	Year          int
	IndicatorName string
}

func (q DataQuery) values() url.Values {
	v := url.Values{}
	if q.Security != "" {
		v.Set("security", q.Security)
	}
	if q.Year != 0 {
		v.Set("report_year", strconv.Itoa(q.Year))
	}
	if q.IndicatorName != "" {
		v.Set("indicator_name", q.IndicatorName)
	}
	return v
}
