package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/celebrity-detector/internal/web/handlers"
	"github.com/kozaktomas/celebrity-detector/internal/web/static"
)

func (s *Server) setupRoutes() {
	pageHandler := handlers.NewPageHandler(s.service, s.recent, s.logger)
	apiHandler := handlers.NewAPIHandler(s.service, s.logger)

	s.router.Get("/", pageHandler.Show)
	s.router.With(s.rateLimiter.Limit(pageHandler.TooManyRequests)).Post("/", pageHandler.Submit)
	s.router.Post("/recent/clear", pageHandler.ClearRecent)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", apiHandler.Health)
		r.Get("/history", apiHandler.History)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimiter.Middleware)
			r.Post("/identify", apiHandler.Identify)
			r.Post("/ask", apiHandler.Ask)
		})
	})

	s.router.Get("/static/*", s.serveStatic)
}

// serveStatic serves the embedded stylesheet.
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.StripPrefix("/static/", http.FileServer(static.GetFileSystem())).ServeHTTP(w, r)
}
