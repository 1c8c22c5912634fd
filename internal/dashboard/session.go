package dashboard

import (
	"context"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/csrlens/internal/api"
	"github.com/ppiankov/csrlens/internal/export"
	"github.com/ppiankov/csrlens/internal/model"
)

// Placeholder texts for the source panel
const (
	NotAvailable       = "N/A"
	SourceMissingInput = "Select a company, a year and an indicator to see where the value came from."
	SourceNoMatch      = "No source excerpt is recorded for this indicator."
	SourceFetchFailed  = "The source excerpt could not be loaded. Try again later."
)

// Downloader receives exported files
type Downloader interface {
	Download(filename string, data []byte) error
}

// Session owns one dashboard state and runs the network side of each action.
// Requests run outside the lock; every response is checked against the
// sequence number taken when its request started and dropped if the
// selection moved on in the meantime.
type Session struct {
	client api.Client

	mu    sync.Mutex
	state State

	searchSeq uint64
	trendSeq  uint64
	sourceSeq uint64
	lookupSeq uint64
}

// NewSession creates a session backed by client
func NewSession(client api.Client) *Session {
	return &Session{client: client}
}

// State returns a snapshot of the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) update(fn func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	return s.state
}

// Load fetches the report list and indicator catalog in parallel.
// Each half is applied on its own; the first error is returned after both finish.
func (s *Session) Load(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error {
		reports, err := s.client.Reports(ctx, api.ReportQuery{})
		if err != nil {
			zap.L().Error("dashboard: load reports failed", zap.Error(err))
			return eris.Wrap(err, "dashboard: load reports")
		}
		s.update(func(st State) State { return WithReports(st, reports) })
		return nil
	})

	g.Go(func() error {
		indicators, err := s.client.Indicators(ctx)
		if err != nil {
			zap.L().Error("dashboard: load indicators failed", zap.Error(err))
			return eris.Wrap(err, "dashboard: load indicators")
		}
		s.update(func(st State) State { return WithIndicators(st, indicators) })
		return nil
	})

	return g.Wait()
}

// SetSearchTerm updates the company filter
func (s *Session) SetSearchTerm(term string) State {
	return s.update(func(st State) State { return SetSearchTerm(st, term) })
}

// SelectCompany switches company and invalidates every in-flight request
func (s *Session) SelectCompany(company string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchSeq++
	s.trendSeq++
	s.sourceSeq++
	s.state = SelectCompany(s.state, company)
	return s.state
}

// SelectYear switches year and invalidates in-flight searches
func (s *Session) SelectYear(year int) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchSeq++
	s.sourceSeq++
	s.state = SelectYear(s.state, year)
	return s.state
}

// RunSearch loads the data points for company and year and splits them into
// chart bars and targets. Missing input is a no-op. API failures are logged
// and produce an empty result. The result is applied only while company and
// year are still the selection.
func (s *Session) RunSearch(ctx context.Context, company string, year int) State {
	if strings.TrimSpace(company) == "" || year == 0 {
		zap.L().Debug("dashboard: search skipped, company and year required",
			zap.String("company", company), zap.Int("year", year))
		return s.State()
	}

	s.mu.Lock()
	s.searchSeq++
	seq := s.searchSeq
	s.mu.Unlock()

	points, err := s.client.SearchData(ctx, api.DataQuery{Security: company, Year: year})
	switch {
	case api.IsNotFound(err):
		zap.L().Debug("dashboard: no data for search",
			zap.String("company", company), zap.Int("year", year))
		points = nil
	case err != nil:
		zap.L().Error("dashboard: search failed",
			zap.String("company", company), zap.Int("year", year), zap.Error(err))
		points = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.searchSeq || company != s.state.SelectedCompany || year != s.state.SelectedYear {
		zap.L().Debug("dashboard: dropping stale search response",
			zap.String("company", company), zap.Int("year", year),
			zap.String("selected_company", s.state.SelectedCompany), zap.Int("selected_year", s.state.SelectedYear))
		return s.state
	}
	s.state = ApplySearch(s.state, points)
	return s.state
}

// SelectIndicator toggles the trend view for name. Selecting the active
// indicator clears it; anything else loads its history for the current company.
func (s *Session) SelectIndicator(ctx context.Context, name string) State {
	s.mu.Lock()
	s.trendSeq++
	seq := s.trendSeq
	next, fetch := ToggleIndicator(s.state, name)
	s.state = next
	company := s.state.SelectedCompany
	s.mu.Unlock()

	if !fetch || company == "" {
		return s.State()
	}

	points, err := s.client.SearchData(ctx, api.DataQuery{Security: company, IndicatorName: name})

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.trendSeq {
		zap.L().Debug("dashboard: dropping stale trend response",
			zap.String("company", company), zap.String("indicator", name))
		return s.state
	}
	if err != nil {
		zap.L().Error("dashboard: trend fetch failed",
			zap.String("company", company), zap.String("indicator", name), zap.Error(err))
		s.state.Trend = nil
		return s.state
	}
	s.state = ApplyTrend(s.state, points)
	return s.state
}

// ToggleReportSelection adds or removes r from the export selection
func (s *Session) ToggleReportSelection(r model.Report) State {
	return s.update(func(st State) State { return ToggleReport(st, r) })
}

// FetchSourceDetail opens the source panel for indicatorName using the
// selected company and year. It always returns something displayable.
func (s *Session) FetchSourceDetail(ctx context.Context, indicatorName string) SourceDetail {
	s.mu.Lock()
	s.sourceSeq++
	seq := s.sourceSeq
	company, year := s.state.SelectedCompany, s.state.SelectedYear
	s.mu.Unlock()

	var detail SourceDetail
	switch {
	case company == "" || year == 0 || strings.TrimSpace(indicatorName) == "":
		detail = placeholder(indicatorName, SourceMissingInput)
	default:
		detail = s.lookupSource(ctx, company, year, indicatorName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.sourceSeq {
		return detail
	}
	s.state = WithSource(s.state, detail)
	return detail
}

func (s *Session) lookupSource(ctx context.Context, company string, year int, name string) SourceDetail {
	points, err := s.client.SearchData(ctx, api.DataQuery{Security: company, Year: year, IndicatorName: name})
	if api.IsNotFound(err) {
		return placeholder(name, SourceNoMatch)
	}
	if err != nil {
		zap.L().Error("dashboard: source fetch failed",
			zap.String("company", company), zap.Int("year", year),
			zap.String("indicator", name), zap.Error(err))
		return placeholder(name, SourceFetchFailed)
	}

	for _, p := range points {
		if !strings.EqualFold(strings.TrimSpace(p.IndicatorName), strings.TrimSpace(name)) {
			continue
		}
		page := p.PDFPage.String()
		if page == "" {
			page = NotAvailable
		}
		if len(p.SourceExcerpt) == 0 {
			d := placeholder(name, SourceNoMatch)
			d.Page = page
			return d
		}
		return SourceDetail{IndicatorName: name, Page: page, Excerpts: p.SourceExcerpt}
	}
	return placeholder(name, SourceNoMatch)
}

func placeholder(name, text string) SourceDetail {
	return SourceDetail{
		IndicatorName: name,
		Page:          NotAvailable,
		Excerpts:      []model.SourceExcerpt{{Page: NotAvailable, Text: text}},
		Placeholder:   true,
	}
}

// ClearSourceDetail closes the source panel
func (s *Session) ClearSourceDetail() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sourceSeq++
	s.state = ClearSource(s.state)
	return s.state
}

// ExportSelectedReports writes the selected reports as CSV through d.
// With nothing selected it returns false and d is not called.
func (s *Session) ExportSelectedReports(d Downloader) (bool, error) {
	st := s.State()
	reports := SelectedReportList(st)
	if len(reports) == 0 {
		zap.L().Debug("dashboard: export skipped, nothing selected")
		return false, nil
	}

	data, err := export.EncodeReports(reports)
	if err != nil {
		return false, err
	}

	name := export.Filename(st.SelectedCompany, st.SelectedYear)
	if err := d.Download(name, data); err != nil {
		return false, eris.Wrapf(err, "dashboard: download %s", name)
	}
	zap.L().Info("dashboard: exported reports", zap.String("file", name), zap.Int("count", len(reports)))
	return true, nil
}

// LookupCompanies runs the legacy company lookup. An empty query returns nil
// without a request; failures are logged and return nil. Results for a query
// that was superseded by a newer lookup are dropped.
func (s *Session) LookupCompanies(ctx context.Context, query string) ([]model.CompanyMatch, bool) {
	s.mu.Lock()
	s.lookupSeq++
	seq := s.lookupSeq
	s.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		return nil, true
	}

	matches, err := s.client.SearchCompanies(ctx, query)
	if err != nil {
		zap.L().Error("dashboard: company lookup failed", zap.String("query", query), zap.Error(err))
		matches = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return matches, seq == s.lookupSeq
}

// Compare runs the legacy comparison for companies and builds its chart
func (s *Session) Compare(ctx context.Context, companies []string, chartType model.ChartType, scope string) (*CompareChart, error) {
	if len(companies) == 0 {
		return nil, ErrNoCompanies
	}
	if chartType == "" {
		chartType = model.ChartLine
	}

	resp, err := s.client.CompareData(ctx, model.CompareRequest{
		CompanyIDs:  companies,
		ChartType:   string(chartType),
		ScopeChoice: scope,
	})
	if err != nil {
		zap.L().Error("dashboard: compare failed", zap.Strings("companies", companies), zap.Error(err))
		return nil, eris.Wrap(err, "dashboard: compare")
	}
	return BuildCompareChart(resp, chartType, scope), nil
}

// Restore reapplies a saved company, year and report selection. Reports
// outside that company and year are skipped.
func (s *Session) Restore(company string, year int, selected []model.Report) State {
	st := s.SelectCompany(company)
	if year != 0 {
		st = s.SelectYear(year)
	}
	for _, r := range FilteredReports(selected, company, year) {
		if !st.IsReportSelected(r) {
			st = s.ToggleReportSelection(r)
		}
	}
	return st
}
