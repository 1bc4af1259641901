package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"NewsletterDigest/internal/ports"
)

// Runner triggers a newsletter run on demand.
type Runner interface {
	Run(ctx context.Context) error
}

// Server exposes subscriber CRUD, unsubscribe, and a manual run trigger.
// Handlers are thin adapters over the document store and the orchestrator.
type Server struct {
	router *chi.Mux
	store  ports.SubscriberStore
	runner Runner
	logger *slog.Logger
	http   *http.Server
}

// New creates a server with all routes registered.
func New(store ports.SubscriberStore, runner Runner, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		store:  store,
		runner: runner,
		logger: logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Route("/subscribers", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleAdd)
		r.Get("/{email}", s.handleGet)
		r.Put("/{email}", s.handleUpdate)
		r.Delete("/{email}", s.handleDelete)
	})

	s.router.Get("/unsubscribe/{email}", s.handleUnsubscribe)
	s.router.Post("/run", s.handleRun)

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// Router returns the chi router, mostly for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start begins serving on the given port and blocks until shutdown.
func (s *Server) Start(port int) error {
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
