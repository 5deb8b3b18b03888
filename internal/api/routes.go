package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(h *Handler, defaultUser string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	// Health check is public
	r.Get("/api/v1/health", h.Health)

	// Everything else requires auth
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.apiKey))
		r.Use(UserMiddleware(defaultUser))

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/dreams", h.ListDreams)
			r.Post("/dreams", h.CreateDream)
			r.Get("/dreams/{id}", h.GetDream)
			r.Delete("/dreams/{id}", h.DeleteDream)
			r.Post("/dreams/{id}/image", h.GenerateImage)

			r.Get("/calendar", h.Calendar)
			r.Get("/stats", h.Stats)
		})
	})

	return r
}
