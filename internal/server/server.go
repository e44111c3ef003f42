// Package server exposes the skeletonize pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz      liveness check, answers "ok"
//	GET  /version      build information as JSON
//	POST /v1/skeleton  body is an image; answers the skeleton image
//	POST /v1/graph     body is an image; answers the skeleton graph
//
// Both POST routes accept ?strict=true to reject grey pixels. /v1/skeleton
// takes ?format=png|gif|bmp|tiff (default png) and /v1/graph takes
// ?format=json|dot (default json).
//
// Errors are JSON objects {"code": ..., "message": ...} using the codes of
// package errors.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/skeletonize/pkg/pipeline"
)

// Default request limits.
const (
	DefaultMaxUploadBytes = 32 << 20
	DefaultMaxPixels      = 64 << 20
)

// Limits bounds the work a single request may cause. Zero fields take the
// defaults above.
type Limits struct {
	// MaxUploadBytes bounds the request body.
	MaxUploadBytes int64
	// MaxPixels bounds the decoded image, checked against its header before
	// any pixel data is decoded.
	MaxPixels int64
}

// shutdownTimeout is how long in-flight requests may take after the
// listener closes.
const shutdownTimeout = 10 * time.Second

// Server serves thinning requests with a shared pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	limits Limits
	router chi.Router
}

// New creates a server. A nil logger uses log.Default().
func New(runner *pipeline.Runner, logger *log.Logger, limits Limits) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if limits.MaxUploadBytes <= 0 {
		limits.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if limits.MaxPixels <= 0 {
		limits.MaxPixels = DefaultMaxPixels
	}
	s := &Server{
		runner: runner,
		logger: logger,
		limits: limits,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/skeleton", s.handleSkeleton)
		r.Post("/graph", s.handleGraph)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
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
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
