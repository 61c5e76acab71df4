// Package server exposes placement sessions and the one-shot pipeline over HTTP.
//
// # Routes
//
//	POST   /api/v1/sessions                        create a session
//	GET    /api/v1/sessions/{id}                   session scene
//	DELETE /api/v1/sessions/{id}                   delete a session
//	POST   /api/v1/sessions/{id}/boxes             place boxes
//	GET    /api/v1/sessions/{id}/render/{format}   render the session scene
//	POST   /api/v1/layout                          place a box list in one call
//	GET    /api/v1/events?stream={id}              placement events (SSE)
//	GET    /healthz                                liveness and build info
//
// Errors are JSON objects {"code", "message"}; the status is derived from
// the error code, so an unplaceable box answers 422.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/r3labs/sse/v2"

	"github.com/matzehuels/pinwheel/pkg/pipeline"
	"github.com/matzehuels/pinwheel/pkg/session"
)

// Defaults.
const (
	DefaultAddr           = "127.0.0.1:8080"
	DefaultRequestTimeout = 60 * time.Second
	DefaultCleanupEvery   = 10 * time.Minute
	maxBodyBytes          = 4 << 20
)

// Server is the HTTP API.
type Server struct {
	manager *session.Manager
	runner  *pipeline.Runner
	events  *sse.Server
	logger  *log.Logger
	router  chi.Router

	sessionTTL     time.Duration
	requestTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithSessionTTL sets the session lifetime.
func WithSessionTTL(ttl time.Duration) Option { return func(s *Server) { s.sessionTTL = ttl } }

// WithRequestTimeout bounds the duration of non-streaming requests.
func WithRequestTimeout(d time.Duration) Option { return func(s *Server) { s.requestTimeout = d } }

// New creates a server storing sessions in store and running one-shot
// layouts and renders through runner. A nil runner uses an uncached runner.
func New(store session.Store, runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		logger:         log.NewWithOptions(io.Discard, log.Options{}),
		sessionTTL:     session.DefaultTTL,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	s.runner = runner

	s.events = sse.New()
	s.events.AutoStream = false
	s.events.AutoReplay = false

	s.manager = session.NewManager(store,
		session.WithTTL(s.sessionTTL),
		session.WithLogger(s.logger),
		session.WithPublisher(ssePublisher{s.events}),
	)
	s.router = s.routes()
	return s
}

// Manager returns the session manager.
func (s *Server) Manager() *session.Manager { return s.manager }

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/v1/events", s.handleEvents)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.requestTimeout))
		r.Use(limitBody)

		r.Post("/api/v1/layout", s.handleLayout)
		r.Route("/api/v1/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/boxes", s.handlePlace)
				r.Get("/render/{format}", s.handleRender)
			})
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. It also runs periodic session cleanup.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go s.manager.RunCleanup(cleanupCtx, DefaultCleanupEvery)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	s.events.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close stops event streams and releases the session store.
func (s *Server) Close() error {
	s.events.Close()
	return s.manager.Store().Close()
}
