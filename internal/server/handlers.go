package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ppiankov/csrlens/internal/chart"
	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/model"
)

const maxRequestBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type searchResponse struct {
	Company  string                 `json:"company"`
	Year     int                    `json:"year"`
	Executed bool                   `json:"executed"`
	Chart    []dashboard.ChartPoint `json:"chart"`
	Targets  []dashboard.TargetItem `json:"targets"`
}

type compareRequest struct {
	Companies []string        `json:"companies"`
	ChartType model.ChartType `json:"chart_type"`
	Scope     string          `json:"scope"`
}

type exportRequest struct {
	Company string         `json:"company"`
	Year    int            `json:"year"`
	Reports []model.Report `json:"reports"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// yearParam parses an optional year; "" is 0
func yearParam(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(v)
	if err != nil || y < 0 {
		return 0, eris.Errorf("invalid %s %q", name, v)
	}
	return y, nil
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	st, err := s.state(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "could not load reports")
		return
	}
	q := r.URL.Query().Get("q")
	var names []string
	if strings.TrimSpace(q) == "" {
		names = dashboard.CompanyList(st.Reports)
	} else {
		names = dashboard.FilteredCompanies(dashboard.SetSearchTerm(st, q))
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": orEmpty(names)})
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	st, err := s.state(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "could not load reports")
		return
	}
	company := chi.URLParam(r, "company")
	writeJSON(w, http.StatusOK, map[string]any{
		"company": company,
		"years":   orEmpty(dashboard.AvailableYears(st.Reports, company)),
	})
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	st, err := s.state(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "could not load indicators")
		return
	}
	catalog := dashboard.FilterIndicators(st.Indicators, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{"themes": dashboard.GroupByTheme(catalog)})
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := s.state(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "could not load reports")
		return
	}
	reports := dashboard.FilteredReports(st.Reports, r.URL.Query().Get("company"), year)
	writeJSON(w, http.StatusOK, map[string]any{"reports": orEmpty(reports)})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	company := r.URL.Query().Get("company")
	year, err := yearParam(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := dashboard.NewSession(s.client)
	sess.SelectCompany(company)
	sess.SelectYear(year)
	st := sess.RunSearch(r.Context(), company, year)

	writeJSON(w, http.StatusOK, searchResponse{
		Company:  company,
		Year:     year,
		Executed: st.SearchExecuted,
		Chart:    orEmpty(st.IndicatorChart),
		Targets:  orEmpty(st.Targets),
	})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	company := r.URL.Query().Get("company")
	indicator := r.URL.Query().Get("indicator")
	if company == "" || indicator == "" {
		writeError(w, http.StatusBadRequest, "company and indicator are required")
		return
	}

	sess := dashboard.NewSession(s.client)
	sess.SelectCompany(company)
	st := sess.SelectIndicator(r.Context(), indicator)
	writeJSON(w, http.StatusOK, map[string]any{
		"company":   company,
		"indicator": indicator,
		"trend":     orEmpty(st.Trend),
	})
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := dashboard.NewSession(s.client)
	sess.SelectCompany(r.URL.Query().Get("company"))
	sess.SelectYear(year)
	writeJSON(w, http.StatusOK, sess.FetchSourceDetail(r.Context(), r.URL.Query().Get("indicator")))
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	sess := dashboard.NewSession(s.client)
	matches, _ := sess.LookupCompanies(r.Context(), r.URL.Query().Get("q"))
	type match struct {
		model.CompanyMatch
		Token string `json:"token"`
		Label string `json:"label"`
	}
	out := make([]match, 0, len(matches))
	for _, m := range matches {
		out = append(out, match{CompanyMatch: m, Token: m.Token(), Label: m.Label()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": out})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Companies) == 0 {
		writeError(w, http.StatusBadRequest, dashboard.ErrNoCompanies.Error())
		return
	}

	cc, err := dashboard.NewSession(s.client).Compare(r.Context(), req.Companies, req.ChartType, req.Scope)
	if err != nil {
		writeError(w, http.StatusBadGateway, "comparison failed")
		return
	}
	writeJSON(w, http.StatusOK, cc)
}

// responseDownloader streams an export as an attachment
type responseDownloader struct {
	w http.ResponseWriter
}

func (d responseDownloader) Download(filename string, data []byte) error {
	d.w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	d.w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	d.w.WriteHeader(http.StatusOK)
	_, err := d.w.Write(data)
	return err
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := dashboard.NewSession(s.client)
	sess.Restore(req.Company, req.Year, req.Reports)
	ok, err := sess.ExportSelectedReports(responseDownloader{w: w})
	if err != nil {
		zap.L().Error("server: export failed", zap.Error(err))
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleSearchChart(w http.ResponseWriter, r *http.Request) {
	company := r.URL.Query().Get("company")
	year, err := yearParam(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := dashboard.NewSession(s.client)
	sess.SelectCompany(company)
	sess.SelectYear(year)
	st := sess.RunSearch(r.Context(), company, year)
	if !st.SearchExecuted || len(st.IndicatorChart) == 0 {
		writeError(w, http.StatusNotFound, "no numeric indicators")
		return
	}

	png, err := chart.IndicatorBars(fmt.Sprintf("%s %d", company, year), st.IndicatorChart, s.size)
	if err != nil {
		zap.L().Error("server: render chart", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not render chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
