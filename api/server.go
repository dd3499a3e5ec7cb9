/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/attendance/*  Marking, review, reads, analytics, export
  /api/employees/*   Roster management (HR)
  /api/audit         Reviewer action trail (HR)
  /api/admin/*       Demo seeding and bulk reset

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
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", actorHeader},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/attendance", func(r chi.Router) {
			r.Post("/entry", h.MarkEntry)
			r.Post("/exit", h.MarkExit)
			r.Get("/today", h.GetToday)
			r.Get("/pending", h.PendingRecords)
			r.Get("/summary", h.Summary)
			r.Get("/export", h.Export)
			r.Get("/employee/{id}", h.EmployeeRecords)
			r.Get("/team/{id}", h.TeamRecords)
			r.Get("/overview/{employeeId}", h.Overview)
			r.Post("/{id}/status", h.UpdateStatus)
			r.Post("/{id}/reason", h.UpdateReason)
			r.Get("/", h.AllRecords)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.SaveEmployee)
			r.Put("/{id}", h.SaveEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
		})

		r.Get("/audit", h.ListAudit)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/seed", h.SeedDemo)
			r.Post("/reset", h.ResetAll)
		})
	})

	return r
}
