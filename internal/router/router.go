// Package router sets up all HTTP routes and middleware chains for the
// ContentWizard API. Catalog routes are public; everything user-owned sits
// behind bearer authentication, and AI routes are additionally rate limited.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"contentwizard/internal/handlers"
	"contentwizard/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(
	sessions middleware.SessionVerifier,
	aiLimiter *middleware.RateLimiter,
	corsOrigins []string,
	auth *handlers.Auth,
	cat *handlers.Catalog,
	projects *handlers.Projects,
	aiHandler *handlers.AI,
	drafts *handlers.Drafts,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(corsOrigins))

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/telegram", auth.TelegramLogin)

		// Catalog: read-only configuration, no session needed.
		r.Get("/content-types", cat.ContentTypes)
		r.Get("/content-types/{id}", cat.ContentType)
		r.Get("/niches", cat.Niches)
		r.Get("/catalog/stats", cat.Stats)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(sessions))

			r.Get("/auth/user", auth.CurrentUser)
			r.Post("/auth/logout", auth.Logout)
			r.Put("/auth/preferences", auth.UpdatePreferences)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projects.List)
				r.Post("/", projects.Create)
				r.Get("/stats", projects.Stats)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", projects.Get)
					r.Put("/", projects.Update)
					r.Delete("/", projects.Delete)

					// Constructor
					r.Post("/blocks", projects.SelectTemplate)
					r.Put("/blocks/{pbId}/variables/{name}", projects.SetVariable)
					r.Delete("/blocks/{pbId}/variables/{name}", projects.UnsetVariable)
					r.Put("/blocks/{pbId}/content", projects.SetContent)
					r.Delete("/blocks/{pbId}", projects.RemoveBlock)
					r.Get("/render", projects.Render)

					// Export
					r.Post("/export", projects.Export)
					r.Get("/exports", projects.Exports)
				})
			})

			r.Route("/constructor", func(r chi.Router) {
				r.Post("/save-state", drafts.Save)
				r.Get("/state", drafts.Load)
				r.Delete("/state", drafts.Clear)
			})

			r.Route("/ai", func(r chi.Router) {
				r.Use(aiLimiter.Middleware)
				r.Post("/generate", aiHandler.Generate)
				r.Post("/improve", aiHandler.Improve)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
