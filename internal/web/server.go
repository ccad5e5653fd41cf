package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/face-filter/internal/catalog"
	"github.com/kozaktomas/face-filter/internal/config"
	"github.com/kozaktomas/face-filter/internal/logging"
	"github.com/kozaktomas/face-filter/internal/session"
	"github.com/kozaktomas/face-filter/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config       *config.Config
	router       *chi.Mux
	httpServer   *http.Server
	catalog      *catalog.Catalog
	sessions     *session.Manager
	frameLimiter *middleware.FrameLimiter
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, cat *catalog.Catalog, sessions *session.Manager) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:   cfg,
		router:   r,
		catalog:  cat,
		sessions: sessions,
		frameLimiter: middleware.NewFrameLimiter(cfg.Web.FrameRateLimit, func(id string) bool {
			_, err := sessions.Get(id)
			return err == nil
		}),
	}
	sessions.OnUnmount(s.frameLimiter.Forget)

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))

	// Set up routes
	s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
		// No WriteTimeout: event streams stay open for the lifetime of a session.
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	logging.Info(logging.Fields{"addr": s.httpServer.Addr}, "starting web server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown unmounts every session, which ends their event streams, then gracefully
// shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info(nil, "shutting down web server")

	s.sessions.CloseAll()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
