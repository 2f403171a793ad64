package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/devluc/finance-api/internal/api"
	apiMiddleware "github.com/devluc/finance-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.authenticator, app.jwtService)
	releaseHandler := api.NewReleaseHandler(app.releaseService, app.userService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/users", authHandler.Register)
		r.Post("/users/authenticate", authHandler.Authenticate)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/releases", func(r chi.Router) {
				r.Get("/", releaseHandler.Search)
				r.Post("/", releaseHandler.Create)
				r.Get("/last/{userId}", releaseHandler.LastReleases)
				r.Get("/paginated/{userId}", releaseHandler.Paginated)
				r.Get("/{id}", releaseHandler.GetByID)
				r.Put("/{id}", releaseHandler.Update)
				r.Patch("/{id}/status", releaseHandler.UpdateStatus)
				r.Delete("/{id}", releaseHandler.Delete)
			})

			r.Get("/users/{id}/balance", releaseHandler.Balance)
			r.Get("/users/{id}/extract", releaseHandler.Extract)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
