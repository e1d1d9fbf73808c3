package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/olimpofit/gym-server/internal/config"
)

// SetupRoutes configures the full route tree. /health stays public;
// everything under /api requires a valid bearer token, with admin-only
// gates applied inside each handler group.
func SetupRoutes(cfg config.ServerConfig, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", deps.Health.Handle)

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.Auth.RequireAuth)

		r.Route("/memberships", func(r chi.Router) {
			deps.Memberships.Routes(r, deps.Auth.RequireAdmin)
		})
		r.Route("/notifications", func(r chi.Router) {
			deps.Notifications.Routes(r, deps.Auth.RequireAdmin)
		})
		if deps.Uploads != nil {
			r.Route("/uploads", func(r chi.Router) {
				r.Use(deps.Auth.RequireAdmin)
				deps.Uploads.Routes(r)
			})
		}
	})

	return r
}
