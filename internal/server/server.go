// Package server exposes dashboard views as JSON for a browser front end.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ppiankov/csrlens/internal/api"
	"github.com/ppiankov/csrlens/internal/chart"
	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/model"
)

// Server serves read-only dashboard views backed by the CSR data API.
// The report list and indicator catalog are loaded once and shared;
// every other view runs against a fresh session.
type Server struct {
	client api.Client
	cfg    model.ServerConfig
	size   chart.Size

	catalog *dashboard.Session
	mu      sync.Mutex
	loaded  bool
}

// New creates a server
func New(client api.Client, cfg model.ServerConfig, size chart.Size) *Server {
	return &Server{
		client:  client,
		cfg:     cfg,
		size:    size,
		catalog: dashboard.NewSession(client),
	}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/companies", s.handleCompanies)
		r.Get("/companies/{company}/years", s.handleYears)
		r.Get("/indicators", s.handleIndicators)
		r.Get("/reports", s.handleReports)
		r.Get("/search", s.handleSearch)
		r.Get("/trend", s.handleTrend)
		r.Get("/source", s.handleSource)
		r.Get("/lookup", s.handleLookup)
		r.Post("/compare", s.handleCompare)
		r.Post("/export", s.handleExport)
		r.Get("/charts/search.png", s.handleSearchChart)
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server: listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "server: listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	zap.L().Info("server: shutting down")
	return eris.Wrap(srv.Shutdown(shutdownCtx), "server: shutdown")
}

// state returns the shared catalog, loading it on first use.
// A failed load is retried on the next request.
func (s *Server) state(ctx context.Context) (dashboard.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		if err := s.catalog.Load(ctx); err != nil {
			return dashboard.State{}, err
		}
		s.loaded = true
	}
	return s.catalog.State(), nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
