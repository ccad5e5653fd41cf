package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-filter/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Create handlers
	configHandler := handlers.NewConfigHandler(s.config)
	filtersHandler := handlers.NewFiltersHandler(s.catalog)
	sessionsHandler := handlers.NewSessionsHandler(s.sessions)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Config
		r.Get("/config", configHandler.Get)

		// Filter catalog
		r.Get("/filters", filtersHandler.List)
		r.Post("/filters", filtersHandler.Register)

		// Sessions (one per mounted view)
		r.Post("/sessions", sessionsHandler.Create)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", sessionsHandler.Get)
			r.Delete("/", sessionsHandler.Delete)
			r.Get("/events", sessionsHandler.Events)

			// Carousel
			r.Get("/carousel", sessionsHandler.Carousel)
			r.Post("/carousel/tap", sessionsHandler.Tap)
			r.Post("/carousel/scroll", sessionsHandler.Scroll)

			// Video frames
			r.With(s.frameLimiter.Middleware).Put("/frame", sessionsHandler.Frame)
		})
	})
}
