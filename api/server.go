/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Structured request logging (zap)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for configured origins

ROUTE GROUPS:
  /api/actions               Workflow vocabulary
  /api/charge-definitions/*  Catalog management
  /api/rates/*               Rate calculation
  /api/scenarios/*           Worked examples
  /healthz                   Liveness probe

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. An empty
// allowedOrigins permits any origin.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/actions", h.ListActions)

		r.Route("/charge-definitions", func(r chi.Router) {
			r.Get("/", h.ListChargeDefinitions)
			r.Post("/", h.CreateChargeDefinition)
			r.Get("/{id}", h.GetChargeDefinition)
			r.Delete("/{id}", h.DeleteChargeDefinition)
		})

		r.Route("/rates", func(r chi.Router) {
			r.Post("/charge", h.ChargeRate)
			r.Post("/periods", h.PeriodRates)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/{name}/run", h.RunScenario)
		})
	})

	return r
}
