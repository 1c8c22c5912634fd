package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/csrlens/internal/api"
	"github.com/ppiankov/csrlens/internal/chart"
	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/model"
)

type stubClient struct {
	reports    []model.Report
	indicators []model.Indicator
	points     []model.DataPoint
	matches    []model.CompanyMatch
	compare    *model.CompareResponse
	err        error
}

func (c *stubClient) Reports(ctx context.Context, q api.ReportQuery) ([]model.Report, error) {
	return c.reports, c.err
}

func (c *stubClient) Indicators(ctx context.Context) ([]model.Indicator, error) {
	return c.indicators, c.err
}

func (c *stubClient) SearchIndicators(ctx context.Context, term string) ([]model.Indicator, error) {
	return c.indicators, c.err
}

func (c *stubClient) SearchData(ctx context.Context, q api.DataQuery) ([]model.DataPoint, error) {
	var out []model.DataPoint
	for _, p := range c.points {
		if q.Security != "" && p.Security != q.Security {
			continue
		}
		if q.Year != 0 && p.ReportYear != q.Year {
			continue
		}
		if q.IndicatorName != "" && p.IndicatorName != q.IndicatorName {
			continue
		}
		out = append(out, p)
	}
	return out, c.err
}

func (c *stubClient) SearchCompanies(ctx context.Context, query string) ([]model.CompanyMatch, error) {
	return c.matches, c.err
}

func (c *stubClient) CompareData(ctx context.Context, req model.CompareRequest) (*model.CompareResponse, error) {
	return c.compare, c.err
}

func fixture() *stubClient {
	return &stubClient{
		reports: []model.Report{
			{Security: "Acme", ReportYear: 2022, IndicatorName: "Water Usage", ReportURL: "u1"},
			{Security: "Acme", ReportYear: 2023, IndicatorName: "Water Usage", ReportURL: "u2"},
			{Security: "3M Company", ReportYear: 2023, IndicatorName: "Scope 1", ReportURL: "u3"},
		},
		indicators: []model.Indicator{
			{Name: "Water Usage", Theme: "Environment"},
			{Name: "Board Diversity", Theme: "Governance"},
		},
		points: []model.DataPoint{
			{Security: "Acme", ReportYear: 2022, IndicatorName: "Water Usage", ValueStandardized: model.NewNumber(100)},
			{Security: "Acme", ReportYear: 2023, IndicatorName: "Water Usage", ValueStandardized: model.NewNumber(120),
				PDFPage: "7", SourceExcerpt: []model.SourceExcerpt{{Page: "7", Text: "120 m3 used"}}},
			{Security: "Acme", ReportYear: 2023, IndicatorName: "Water Target", ValueRaw: "Reduce 20% by 2030"},
		},
		matches: []model.CompanyMatch{{CompanyName: "3M Company", Ticker: "MMM", ISIN: "US88579Y1010"}},
		compare: &model.CompareResponse{Data: map[string]map[string]model.Number{
			"Acme": {"2022": model.NewNumber(1)},
		}},
	}
}

func newTestServer(t *testing.T, c api.Client) *httptest.Server {
	t.Helper()
	s := New(c, model.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}}, chart.Size{Width: 320, Height: 240})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, fixture())
	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, ts, "/healthz", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestCompanies(t *testing.T) {
	ts := newTestServer(t, fixture())

	var all struct{ Companies []string }
	assert.Equal(t, http.StatusOK, getJSON(t, ts, "/api/companies", &all))
	assert.Equal(t, []string{"3M Company", "Acme"}, all.Companies)

	var filtered struct{ Companies []string }
	getJSON(t, ts, "/api/companies?q=3m", &filtered)
	assert.Equal(t, []string{"3M Company"}, filtered.Companies)

	var none struct{ Companies []string }
	getJSON(t, ts, "/api/companies?q=zzz", &none)
	assert.NotNil(t, none.Companies)
	assert.Empty(t, none.Companies)
}

func TestCatalogLoadFailure(t *testing.T) {
	ts := newTestServer(t, &stubClient{err: errors.New("down")})
	var body errorResponse
	assert.Equal(t, http.StatusBadGateway, getJSON(t, ts, "/api/companies", &body))
	assert.NotEmpty(t, body.Error)
}

func TestYearsAndReports(t *testing.T) {
	ts := newTestServer(t, fixture())

	var years struct{ Years []int }
	getJSON(t, ts, "/api/companies/Acme/years", &years)
	assert.Equal(t, []int{2022, 2023}, years.Years)

	var reports struct{ Reports []model.Report }
	getJSON(t, ts, "/api/reports?company=Acme&year=2023", &reports)
	require.Len(t, reports.Reports, 1)
	assert.Equal(t, "u2", reports.Reports[0].ReportURL)

	var bad errorResponse
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts, "/api/reports?year=abc", &bad))
}

func TestIndicators(t *testing.T) {
	ts := newTestServer(t, fixture())
	var body struct{ Themes []dashboard.ThemeGroup }
	getJSON(t, ts, "/api/indicators?q=water", &body)
	require.Len(t, body.Themes, 1)
	assert.Equal(t, "Environment", body.Themes[0].Theme)
}

func TestSearch(t *testing.T) {
	ts := newTestServer(t, fixture())

	var res searchResponse
	assert.Equal(t, http.StatusOK, getJSON(t, ts, "/api/search?company=Acme&year=2023", &res))
	assert.True(t, res.Executed)
	require.Len(t, res.Chart, 1)
	assert.Equal(t, 120.0, res.Chart[0].Value)
	require.Len(t, res.Targets, 1)
	assert.Equal(t, "Reduce 20% by 2030", res.Targets[0].Text)

	var skipped searchResponse
	getJSON(t, ts, "/api/search?company=Acme", &skipped)
	assert.False(t, skipped.Executed)
}

func TestTrend(t *testing.T) {
	ts := newTestServer(t, fixture())

	var body struct{ Trend []dashboard.TrendPoint }
	getJSON(t, ts, "/api/trend?company=Acme&indicator=Water%20Usage", &body)
	require.Len(t, body.Trend, 2)
	assert.Equal(t, 2022, body.Trend[0].Year)
	assert.Equal(t, 2023, body.Trend[1].Year)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts, "/api/trend?company=Acme", nil))
}

func TestSource(t *testing.T) {
	ts := newTestServer(t, fixture())

	var d dashboard.SourceDetail
	getJSON(t, ts, "/api/source?company=Acme&year=2023&indicator=Water%20Usage", &d)
	assert.False(t, d.Placeholder)
	assert.Equal(t, "7", d.Page)

	var missing dashboard.SourceDetail
	getJSON(t, ts, "/api/source?company=Acme&indicator=Water%20Usage", &missing)
	assert.True(t, missing.Placeholder)
	assert.Equal(t, dashboard.NotAvailable, missing.Page)
}

func TestLookup(t *testing.T) {
	ts := newTestServer(t, fixture())
	var body struct {
		Matches []struct {
			CompanyName string `json:"company_name"`
			Token       string `json:"token"`
		}
	}
	getJSON(t, ts, "/api/lookup?q=3m", &body)
	require.Len(t, body.Matches, 1)
	assert.Equal(t, "3M Company|MMM|US88579Y1010", body.Matches[0].Token)
}

func TestCompare(t *testing.T) {
	ts := newTestServer(t, fixture())

	resp, err := http.Post(ts.URL+"/api/compare", "application/json",
		strings.NewReader(`{"companies":["Acme"],"chart_type":"bar","scope":"Scope 1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cc dashboard.CompareChart
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cc))
	assert.Equal(t, model.ChartBar, cc.Type)
	assert.Equal(t, "Acme (Scope 1)", cc.Datasets[0].Label)

	empty, err := http.Post(ts.URL+"/api/compare", "application/json", strings.NewReader(`{"companies":[]}`))
	require.NoError(t, err)
	defer empty.Body.Close()
	assert.Equal(t, http.StatusBadRequest, empty.StatusCode)
}

func TestExport(t *testing.T) {
	ts := newTestServer(t, fixture())

	body, _ := json.Marshal(exportRequest{
		Company: "Acme",
		Year:    2023,
		Reports: []model.Report{{Security: "Acme", ReportYear: 2023, IndicatorName: "Water Usage", ReportURL: "u2"}},
	})
	resp, err := http.Post(ts.URL+"/api/export", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="Acme_2023.csv"`, resp.Header.Get("Content-Disposition"))
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Equal(t, "security,report_year,indicator_name,report_url\nAcme,2023,Water Usage,u2\n", buf.String())

	none, err := http.Post(ts.URL+"/api/export", "application/json", strings.NewReader(`{"company":"Acme"}`))
	require.NoError(t, err)
	defer none.Body.Close()
	assert.Equal(t, http.StatusNoContent, none.StatusCode)
}

func TestSearchChart(t *testing.T) {
	ts := newTestServer(t, fixture())

	resp, err := http.Get(ts.URL + "/api/charts/search.png?company=Acme&year=2023")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	missing, err := http.Get(ts.URL + "/api/charts/search.png?company=Nobody&year=2023")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, fixture())

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/compare", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
