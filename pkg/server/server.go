// Package server exposes the layout pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz               liveness and build version
//	POST /v1/layout             graph in, layout JSON out
//	POST /v1/render/{format}    graph in, artifact out (svg, dot, pdf, png, json)
//
// Both POST routes take a [Request] body. Every response carries an
// X-Request-ID header; errors are JSON documents with a stable code (see
// [ErrorResponse]).
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stratum/pkg/pipeline"
)

// Defaults applied by [Config.WithDefaults].
const (
	DefaultAddr            = ":8080"
	DefaultMaxBodyBytes    = 8 << 20
	DefaultRequestTimeout  = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Config configures a [Server].
type Config struct {
	Addr           string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	Logger         *log.Logger
}

// WithDefaults returns a copy of c with every unset field filled.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

// Server serves the HTTP API. It is safe for concurrent use.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	router chi.Router
}

// New builds a server around runner.
func New(runner *pipeline.Runner, cfg Config) *Server {
	s := &Server{cfg: cfg.WithDefaults(), runner: runner}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		r.Post("/layout", s.handleLayout)
		r.Post("/render/{format}", s.handleRender)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound(r.URL.Path))
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.cfg.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
