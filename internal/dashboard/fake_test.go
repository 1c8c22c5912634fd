package dashboard

import (
	"context"
	"sync"

	"github.com/ppiankov/csrlens/internal/api"
	"github.com/ppiankov/csrlens/internal/model"
)

type fakeClient struct {
	mu sync.Mutex

	reports    []model.Report
	indicators []model.Indicator
	matches    []model.CompanyMatch
	compare    *model.CompareResponse
	err        error

	// searchFn overrides SearchData when set
	searchFn func(ctx context.Context, q api.DataQuery) ([]model.DataPoint, error)

	dataQueries   []api.DataQuery
	lookupQueries []string
	compareReqs   []model.CompareRequest
}

func (f *fakeClient) Reports(ctx context.Context, q api.ReportQuery) ([]model.Report, error) {
	return f.reports, f.err
}

func (f *fakeClient) Indicators(ctx context.Context) ([]model.Indicator, error) {
	return f.indicators, f.err
}

func (f *fakeClient) SearchIndicators(ctx context.Context, term string) ([]model.Indicator, error) {
	return FilterIndicators(f.indicators, term), f.err
}

func (f *fakeClient) SearchData(ctx context.Context, q api.DataQuery) ([]model.DataPoint, error) {
	f.mu.Lock()
	f.dataQueries = append(f.dataQueries, q)
	fn := f.searchFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, q)
	}
	return nil, f.err
}

func (f *fakeClient) SearchCompanies(ctx context.Context, query string) ([]model.CompanyMatch, error) {
	f.mu.Lock()
	f.lookupQueries = append(f.lookupQueries, query)
	f.mu.Unlock()
	return f.matches, f.err
}

func (f *fakeClient) CompareData(ctx context.Context, req model.CompareRequest) (*model.CompareResponse, error) {
	f.mu.Lock()
	f.compareReqs = append(f.compareReqs, req)
	f.mu.Unlock()
	return f.compare, f.err
}

func (f *fakeClient) queries() []api.DataQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.DataQuery(nil), f.dataQueries...)
}

type recordingDownloader struct {
	calls    int
	filename string
	data     []byte
	err      error
}

func (d *recordingDownloader) Download(filename string, data []byte) error {
	d.calls++
	d.filename = filename
	d.data = data
	return d.err
}

func num(v float64) model.Number { return model.NewNumber(v) }

func point(security string, year int, name string, value model.Number, raw string) model.DataPoint {
	return model.DataPoint{
		Security:          security,
		ReportYear:        year,
		IndicatorName:     name,
		ValueStandardized: value,
		ValueRaw:          model.FlexString(raw),
	}
}
