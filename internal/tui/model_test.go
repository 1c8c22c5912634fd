package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/csrlens/internal/api"
	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/model"
)

type stubClient struct {
	mu      sync.Mutex
	lookups []string
}

func (c *stubClient) Reports(ctx context.Context, q api.ReportQuery) ([]model.Report, error) {
	return []model.Report{
		{Security: "Acme", ReportYear: 2022, IndicatorName: "Water Usage", ReportURL: "u1"},
		{Security: "Acme", ReportYear: 2023, IndicatorName: "Water Usage", ReportURL: "u2"},
		{Security: "3M Company", ReportYear: 2023, IndicatorName: "Scope 1", ReportURL: "u3"},
	}, nil
}

func (c *stubClient) Indicators(ctx context.Context) ([]model.Indicator, error) { return nil, nil }

func (c *stubClient) SearchIndicators(ctx context.Context, term string) ([]model.Indicator, error) {
	return nil, nil
}

func (c *stubClient) SearchData(ctx context.Context, q api.DataQuery) ([]model.DataPoint, error) {
	return []model.DataPoint{
		{Security: q.Security, ReportYear: 2023, IndicatorName: "Water Usage", ValueStandardized: model.NewNumber(120)},
		{Security: q.Security, ReportYear: 2023, IndicatorName: "Water Target", ValueRaw: "Reduce 20%"},
	}, nil
}

func (c *stubClient) SearchCompanies(ctx context.Context, query string) ([]model.CompanyMatch, error) {
	c.mu.Lock()
	c.lookups = append(c.lookups, query)
	c.mu.Unlock()
	return []model.CompanyMatch{{CompanyName: "3M Company", Ticker: "MMM"}}, nil
}

func (c *stubClient) CompareData(ctx context.Context, req model.CompareRequest) (*model.CompareResponse, error) {
	return nil, nil
}

type memDownloader struct {
	name string
	data []byte
}

func (d *memDownloader) Download(name string, data []byte) error {
	d.name, d.data = name, data
	return nil
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyCtrlL = tea.KeyMsg{Type: tea.KeyCtrlL}
)

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func loaded(t *testing.T, c *stubClient, opts Options) Model {
	t.Helper()
	sess := dashboard.NewSession(c)
	m := New(context.Background(), sess, opts)
	m, _ = send(t, m, loadedMsg{err: sess.Load(context.Background())})
	return m
}

func TestDebouncedCompanySearch(t *testing.T) {
	m := loaded(t, &stubClient{}, Options{Debounce: time.Millisecond})

	m, cmd := send(t, m, keyRunes("a"))
	require.NotNil(t, cmd)
	first := m.inputSeq
	m, _ = send(t, m, keyRunes("c"))
	assert.Empty(t, dashboard.FilteredCompanies(m.st), "filter waits for the debounce")

	m, _ = send(t, m, debounceMsg{seq: first})
	assert.Empty(t, m.st.SearchTerm, "stale debounce tick is ignored")

	m, _ = send(t, m, debounceMsg{seq: m.inputSeq})
	assert.Equal(t, "ac", m.st.SearchTerm)
	assert.Equal(t, []string{"Acme"}, dashboard.FilteredCompanies(m.st))
}

func TestSelectCompanyYearAndSearch(t *testing.T) {
	var changes []dashboard.State
	m := loaded(t, &stubClient{}, Options{OnChange: func(st dashboard.State) { changes = append(changes, st) }})

	m, _ = send(t, m, keyRunes("acme"))
	m, _ = send(t, m, debounceMsg{seq: m.inputSeq})
	m, _ = send(t, m, keyEnter)
	assert.Equal(t, modeYear, m.mode)
	assert.Equal(t, "Acme", m.st.SelectedCompany)

	m, _ = send(t, m, keyDown)
	m, cmd := send(t, m, keyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, 2023, m.st.SelectedYear)
	assert.Equal(t, modeResults, m.mode)

	m, _ = send(t, m, cmd())
	assert.True(t, m.st.SearchExecuted)
	require.Len(t, m.st.IndicatorChart, 1)
	require.Len(t, m.st.Targets, 1)
	assert.Contains(t, m.View(), "Water Usage")

	require.Len(t, changes, 2)
	assert.Equal(t, 2023, changes[1].SelectedYear)
}

func TestTrendAndSource(t *testing.T) {
	m := loaded(t, &stubClient{}, Options{})
	m, _ = send(t, m, keyRunes("acme"))
	m, _ = send(t, m, debounceMsg{seq: m.inputSeq})
	m, _ = send(t, m, keyEnter)
	m, _ = send(t, m, keyDown)
	m, cmd := send(t, m, keyEnter)
	m, _ = send(t, m, cmd())

	m, cmd = send(t, m, keyEnter)
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.Equal(t, "Water Usage", m.st.SelectedIndicator)
	assert.Len(t, m.st.Trend, 1)

	m, cmd = send(t, m, keyRunes("s"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	require.NotNil(t, m.st.Source)
	assert.Contains(t, m.View(), "Source: Water Usage")

	m, _ = send(t, m, keyEsc)
	assert.Nil(t, m.st.Source)
	assert.Equal(t, modeResults, m.mode)
}

func TestReportSelectionAndExport(t *testing.T) {
	dl := &memDownloader{}
	m := loaded(t, &stubClient{}, Options{Downloader: dl})
	m, _ = send(t, m, keyRunes("acme"))
	m, _ = send(t, m, debounceMsg{seq: m.inputSeq})
	m, _ = send(t, m, keyEnter)
	m, cmd := send(t, m, keyEnter)
	m, _ = send(t, m, cmd())

	m, _ = send(t, m, keyRunes("r"))
	assert.Equal(t, modeReports, m.mode)

	m, cmd = send(t, m, keyRunes("e"))
	m, _ = send(t, m, cmd())
	assert.Equal(t, "Nothing selected to export.", m.status)
	assert.Empty(t, dl.name)

	m, _ = send(t, m, keyRunes(" "))
	assert.Len(t, m.st.SelectedReports, 1)
	m, cmd = send(t, m, keyRunes("e"))
	m, _ = send(t, m, cmd())
	assert.Equal(t, "Acme_2022.csv", dl.name)
	assert.Contains(t, string(dl.data), "Acme,2022,Water Usage,u1")
}

func TestLookupMode(t *testing.T) {
	c := &stubClient{}
	m := loaded(t, c, Options{})

	m, _ = send(t, m, keyCtrlL)
	assert.Equal(t, modeLookup, m.mode)

	m, _ = send(t, m, keyRunes("3m"))
	m, cmd := send(t, m, debounceMsg{seq: m.inputSeq})
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	require.Len(t, m.matches, 1)
	assert.Contains(t, m.View(), "3M Company (MMM)")

	m, _ = send(t, m, keyEnter)
	assert.Equal(t, "3M Company", m.st.SelectedCompany)
	assert.Equal(t, modeYear, m.mode)
	assert.Equal(t, []string{"3m"}, c.lookups)
}

func TestLookupEmptyQueryHidesResults(t *testing.T) {
	c := &stubClient{}
	m := loaded(t, c, Options{})
	m, _ = send(t, m, keyCtrlL)
	m.matches = []model.CompanyMatch{{CompanyName: "stale"}}
	m.input.SetValue("x")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Empty(t, m.input.Value())
	assert.Nil(t, m.matches)

	_, cmd := send(t, m, debounceMsg{seq: m.inputSeq})
	assert.Nil(t, cmd)
	assert.Empty(t, c.lookups)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-1, 3))
	assert.Equal(t, 2, clamp(5, 3))
	assert.Equal(t, 0, clamp(1, 0))
}
