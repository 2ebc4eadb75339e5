// Package server exposes the LinguaCare translation pipeline over HTTP.
//
// The API is consumed by the bedside client: it uploads recorded turns and
// document photos, renders the running conversation, and downloads transcript
// exports. All handlers sit behind the observe middleware, so every request
// carries a trace and a latency sample.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/linguacare/internal/catalog"
	"github.com/MrWong99/linguacare/internal/conversation"
	"github.com/MrWong99/linguacare/internal/health"
	"github.com/MrWong99/linguacare/internal/observe"
	"github.com/MrWong99/linguacare/internal/pipeline"
)

// shutdownTimeout is how long Run waits for in-flight requests to finish
// after the context is cancelled.
const shutdownTimeout = 10 * time.Second

// maxUploadBytes bounds multipart uploads (audio recordings and document
// photos).
const maxUploadBytes = 32 << 20

// Server serves the LinguaCare HTTP API.
type Server struct {
	addr     string
	runner   *pipeline.Runner
	log      *conversation.Log
	catalog  *catalog.Catalog
	metrics  *observe.Metrics
	health   *health.Handler
	certFile string
	keyFile  string
}

// Option configures a [Server].
type Option func(*Server)

// WithHealth sets the health handler. Defaults to one with no readiness
// checkers.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithMetrics overrides the metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithTLS enables HTTPS with the given certificate pair.
func WithTLS(certFile, keyFile string) Option {
	return func(s *Server) {
		s.certFile = certFile
		s.keyFile = keyFile
	}
}

// New creates a [Server] around the given pipeline, conversation log, and
// language catalog.
func New(addr string, runner *pipeline.Runner, log *conversation.Log, cat *catalog.Catalog, opts ...Option) *Server {
	s := &Server{
		addr:    addr,
		runner:  runner,
		log:     log,
		catalog: cat,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if s.health == nil {
		s.health = health.New()
	}
	return s
}

// Handler returns the full route table wrapped in the observe middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/turns", s.handleTurn)
	mux.HandleFunc("GET /v1/conversation", s.handleConversation)
	mux.HandleFunc("GET /v1/conversation/export", s.handleExport)
	mux.HandleFunc("GET /v1/conversation/live", s.handleLive)
	mux.HandleFunc("POST /v1/documents", s.handleDocument)
	mux.HandleFunc("GET /v1/languages", s.handleLanguages)

	s.health.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return observe.Middleware(s.metrics)(mux)
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening", "addr", s.addr, "tls", s.certFile != "")
		var err error
		if s.certFile != "" {
			err = srv.ListenAndServeTLS(s.certFile, s.keyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
