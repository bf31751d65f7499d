/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/requests/*        Training request lifecycle
  /api/sessions/*        Session management and registration
  /api/registrations/*   Registration review
  /api/documents/*       Supporting document upload/serving
  /api/scenarios/*       Demo scenarios
  /api/admin/*           Admin operations

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Training request routes
		r.Route("/requests", func(r chi.Router) {
			r.Get("/", h.ListRequests)
			r.Post("/", h.SubmitRequest)
			r.Get("/{id}", h.GetRequest)
			r.Post("/{id}/review", h.ReviewRequest)
			r.Post("/{id}/schedule", h.ScheduleRequest)
		})

		// Session routes
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Post("/", h.CreateSession)
			r.Get("/stats", h.GetSessionStats)
			r.Get("/{id}", h.GetSession)
			r.Put("/{id}", h.UpdateSession)
			r.Delete("/{id}", h.DeleteSession)
			r.Post("/{id}/archive", h.ArchiveSession)
			r.Post("/{id}/restore", h.RestoreSession)
			r.Get("/{id}/registrations", h.ListSessionRegistrations)
			r.Post("/{id}/registrations", h.RegisterForSession)
		})

		// Registration routes
		r.Route("/registrations", func(r chi.Router) {
			r.Get("/", h.ListMyRegistrations)
			r.Get("/{id}", h.GetRegistration)
			r.Post("/{id}/approve", h.ApproveRegistration)
			r.Post("/{id}/reject", h.RejectRegistration)
			r.Delete("/{id}", h.DeleteRegistration)
		})

		// Document routes
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", h.UploadDocument)
			r.Get("/{ref}", h.ServeDocument)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/complete-elapsed", h.CompleteElapsed)
		})
	})

	return r
}
