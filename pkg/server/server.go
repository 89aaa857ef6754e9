// Package server exposes live sessions over HTTP.
//
// # Routes
//
//	GET    /healthz                  liveness
//	GET    /metrics                  Prometheus exposition (when configured)
//	POST   /sessions                 create a session
//	GET    /sessions                 list session ids
//	GET    /sessions/{id}            session status
//	DELETE /sessions/{id}            delete a session
//	POST   /sessions/{id}/events     apply a JSON array of producer events
//	POST   /sessions/{id}/layout     start (or restart) the layout engine
//	DELETE /sessions/{id}/layout     stop the layout engine
//	GET    /sessions/{id}/dirty      objects with stale visuals; clears their flags
//	GET    /sessions/{id}/scene      every object, flags untouched
//	GET    /sessions/{id}/positions  positions keyed by external address
//	GET    /sessions/{id}/dot        pinned Graphviz source
//	GET    /sessions/{id}/svg        rendered scene
//
// Errors are JSON objects with the error code and a user message. Codes map
// to statuses: invalid input is 400, unknown sessions are 404, topology
// errors are 422.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/scgraph/pkg/config"
	"github.com/matzehuels/scgraph/pkg/session"
)

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics serves h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// Server is the HTTP surface over a session store.
type Server struct {
	store   *session.Store
	cfg     config.ServerConfig
	logger  *log.Logger
	metrics http.Handler
	router  chi.Router
}

// New creates a server over store.
func New(store *session.Store, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		store:  store,
		cfg:    cfg,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Get("/", s.listSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.sessionStatus)
			r.Delete("/", s.deleteSession)
			r.Post("/events", s.applyEvents)
			r.Post("/layout", s.startLayout)
			r.Delete("/layout", s.stopLayout)
			r.Get("/dirty", s.dirty)
			r.Get("/scene", s.snapshot)
			r.Get("/positions", s.positions)
			r.Get("/dot", s.dot)
			r.Get("/svg", s.svg)
		})
	})
	return r
}

// ListenAndServe serves on the configured address until ctx ends, then
// shuts down gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
