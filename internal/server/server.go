// Package server exposes the reconstruction pipeline over HTTP.
//
// Routes:
//
//	POST /v1/unshred       raw image body → reconstructed image (or JSON)
//	GET  /v1/runs          recent runs, newest first
//	GET  /v1/runs/{id}     one stored run including its candidate trace
//	GET  /healthz          liveness and build info
//
// Errors are JSON objects carrying the machine-readable code from
// pkg/errors: {"error": {"code": "INVALID_CONFIG", "message": "..."}}.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/unshred/pkg/observability"
	"github.com/matzehuels/unshred/pkg/pipeline"
	"github.com/matzehuels/unshred/pkg/store"
)

// Config wires a Server.
type Config struct {
	Runner *pipeline.Runner
	// Store records runs. Nil disables recording and the /v1/runs routes
	// answer 404.
	Store  store.Store
	Logger *log.Logger

	// Defaults apply when a request omits a query parameter.
	Defaults pipeline.Options

	// MaxUploadBytes caps request bodies. Zero means 32 MiB.
	MaxUploadBytes int64
}

// Server is the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger
	defaults pipeline.Options
	maxBody  int64
	router   chi.Router
}

// New builds a Server and its routes.
func New(cfg Config) *Server {
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}

	s := &Server{
		runner:   cfg.Runner,
		store:    cfg.Store,
		logger:   cfg.Logger,
		defaults: cfg.Defaults,
		maxBody:  cfg.MaxUploadBytes,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/unshred", s.handleUnshred)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// observe reports every request to the HTTP hooks and the access log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Millisecond))
	})
}
