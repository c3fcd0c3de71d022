// Package web exposes the search engine as a small JSON API.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kozaktomas/photo-librarian/internal/config"
	"github.com/kozaktomas/photo-librarian/internal/search"
	"github.com/kozaktomas/photo-librarian/internal/store"
)

// Server represents the web server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	handlers   *searchHandlers
	log        *zap.Logger
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, engine *search.Engine, records store.RecordReader, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(2 * time.Minute))

	s := &Server{
		router: r,
		log:    log,
		handlers: &searchHandlers{
			engine:   engine,
			records:  records,
			defaults: cfg.Search,
			log:      log,
		},
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Web.ListenAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handlers.health)
		r.Get("/stats", s.handlers.stats)
		r.Post("/search/text", s.handlers.searchText)
		r.Post("/search/image", s.handlers.searchImage)
		r.Post("/search/fused", s.handlers.searchFused)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("starting web server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down web server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
