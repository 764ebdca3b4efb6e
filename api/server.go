/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the SPA front end

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
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Planning routes - the engine's public surface
		r.Route("/planning", func(r chi.Router) {
			r.Post("/suggest-resources", h.SuggestResources)
			r.Post("/allocate", h.Allocate)
		})

		// Resource routes
		r.Route("/resources", func(r chi.Router) {
			r.Get("/", h.ListResources)
			r.Post("/", h.CreateResource)
			r.Get("/{id}", h.GetResource)
			r.Put("/{id}", h.UpdateResource)
			r.Delete("/{id}", h.DeleteResource)
			r.Get("/{id}/skills", h.ListResourceSkills)
			r.Post("/{id}/skills/{skillId}", h.AssignResourceSkill)
			r.Delete("/{id}/skills/{skillId}", h.RemoveResourceSkill)
		})

		// Skill routes
		r.Route("/skills", func(r chi.Router) {
			r.Get("/", h.ListSkills)
			r.Post("/", h.CreateSkill)
			r.Delete("/{id}", h.DeleteSkill)
		})

		// Work item routes
		r.Route("/work-items", func(r chi.Router) {
			r.Get("/", h.ListWorkItems)
			r.Post("/", h.CreateWorkItem)
			r.Get("/{id}", h.GetWorkItem)
			r.Put("/{id}", h.UpdateWorkItem)
			r.Delete("/{id}", h.DeleteWorkItem)
			r.Get("/{id}/skills", h.ListWorkItemSkills)
			r.Post("/{id}/skills/{skillId}", h.AddWorkItemSkill)
			r.Delete("/{id}/skills/{skillId}", h.RemoveWorkItemSkill)
		})

		// Allocation routes
		r.Route("/allocations", func(r chi.Router) {
			r.Get("/", h.ListAllocations)
			r.Delete("/", h.DeleteAllocations)
		})
	})

	return r
}
