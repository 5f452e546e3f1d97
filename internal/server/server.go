// Package server serves the article over HTTP.
//
// Every reader gets a session holding their own live page, so steps and
// viewport changes are tracked per browser. Chart snapshots that do not
// need a session are rendered through the pipeline runner and cached.
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

	"github.com/matzehuels/scrolly/pkg/article"
	"github.com/matzehuels/scrolly/pkg/chart"
	"github.com/matzehuels/scrolly/pkg/pipeline"
	"github.com/matzehuels/scrolly/pkg/session"
)

// Config configures the server.
type Config struct {
	Addr         string
	SessionTTL   time.Duration
	ReapInterval time.Duration

	// Viewport is the container size a new page starts with, before the
	// browser reports its own.
	Viewport    chart.Size
	Debounce    time.Duration
	Transitions time.Duration
}

// Server is the article HTTP service.
type Server struct {
	cfg    Config
	data   *article.Datasets
	store  *session.MemoryStore
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a server over data. runner renders the stateless snapshot
// endpoint; nil disables caching.
func New(cfg Config, data *article.Datasets, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if cfg.Viewport == (chart.Size{}) {
		cfg.Viewport = chart.Size{Width: pipeline.DefaultWidth, Height: pipeline.DefaultHeight}
	}
	s := &Server{
		cfg:    cfg,
		data:   data,
		store:  session.NewMemoryStore(cfg.SessionTTL),
		runner: runner,
		logger: logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/", s.handlePage)
	r.Get("/charts/{chart}.svg", s.handleSnapshot)

	r.Route("/api", func(r chi.Router) {
		r.Get("/steps", s.handleSteps)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Post("/steps/{step}", s.handleStep)
			r.Post("/viewport", s.handleViewport)
			r.Get("/charts/{chart}.svg", s.handleSessionChart)
		})
	})
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// Sessions returns the session store.
func (s *Server) Sessions() *session.MemoryStore { return s.store }

// Run serves until ctx is canceled, then shuts down gracefully and closes
// every session.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	reapCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	go session.Reap(reapCtx, s.store, s.cfg.ReapInterval, s.logger)

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		_ = s.store.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	_ = s.store.Close()
	s.logger.Info("server stopped")
	return err
}

// newPage creates and mounts a page for a new reader.
func (s *Server) newPage(ctx context.Context) (*article.Page, error) {
	page, err := s.data.NewPage(s.cfg.Viewport,
		chart.WithLogger(s.logger),
		chart.WithDebounce(s.cfg.Debounce),
		chart.WithTransitions(s.cfg.Transitions))
	if err != nil {
		return nil, err
	}
	page.Mount(ctx)
	return page, nil
}

func (s *Server) newSession(ctx context.Context) (*session.Session, error) {
	page, err := s.newPage(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(page, s.store.TTL())
	if err != nil {
		page.Close()
		return nil, err
	}
	if err := s.store.Set(ctx, sess); err != nil {
		page.Close()
		return nil, err
	}
	s.logger.Debug("session created", "id", sess.ID)
	return sess, nil
}
