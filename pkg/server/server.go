package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sourceinfo/sourceinfo/internal/store"
	"github.com/sourceinfo/sourceinfo/pkg/analyze"
	"github.com/sourceinfo/sourceinfo/pkg/evidence"
	"github.com/sourceinfo/sourceinfo/pkg/source"
)

// Server provides the HTTP API.
type Server struct {
	store    store.Store
	engine   *evidence.Engine
	fetcher  *analyze.Fetcher
	analyzer *analyze.Analyzer
	log      *slog.Logger
	port     int
}

// New creates a new HTTP server. fetcher and analyzer may be nil when the
// analysis pipeline is disabled; catalogue endpoints work regardless.
func New(s store.Store, engine *evidence.Engine, fetcher *analyze.Fetcher, analyzer *analyze.Analyzer, log *slog.Logger, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		store:    s,
		engine:   engine,
		fetcher:  fetcher,
		analyzer: analyzer,
		log:      log,
		port:     port,
	}
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sources", s.handleListSources)
		r.Get("/sources/{domain}", s.handleGetSource)
		r.Get("/sources/{domain}/counternarratives", s.handleCounternarratives)
		r.Post("/score", s.handleScore)
		r.Get("/stats", s.handleStats)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze/batch", s.handleAnalyzeBatch)
		r.Post("/content", s.handleContent)
		r.Get("/usage", s.handleUsage)
	})

	return r
}

// ListenAndServe starts the HTTP server and blocks until a shutdown signal.
func (s *Server) ListenAndServe() error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2 * time.Minute, // analysis calls are slow
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, evidence.ErrInvalidContext), errors.Is(err, source.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.log.Error("request failed", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
