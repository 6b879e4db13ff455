/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the UI

ROUTE GROUPS:
  /api/session/*        Login, logout, status
  /api/state            Current state
  /api/dispatch         Actions
  /api/notifications/*  Manual rescan
  /api/backup*          Backup download, schema
  /api/restore          Backup upload
  /api/reports/*        Statements and summaries
  /api/audit            Balance check
  /api/scenarios/*      Demo datasets
  /                     Endpoint index

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

// DefaultOrigins are allowed when no origins are configured.
var DefaultOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		r.Get("/state", h.GetState)
		r.Post("/dispatch", h.Dispatch)
		r.Post("/notifications/rescan", h.Rescan)

		r.Get("/backup", h.Backup)
		r.Get("/backup/schema", h.BackupSchema)
		r.Post("/restore", h.Restore)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/parties/{id}", h.PartyStatement)
			r.Get("/invoices", h.Invoices)
			r.Get("/stock", h.StockSummary)
			r.Get("/cash", h.CashSummary)
		})
		r.Get("/audit", h.Audit)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Day Book</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Day Book API</h1>
<ul>
<li><a href="/api/session">/api/session</a> - Login status</li>
<li><a href="/api/state">/api/state</a> - Current book</li>
<li><a href="/api/reports/stock">/api/reports/stock</a> - Stock levels</li>
<li><a href="/api/backup/schema">/api/backup/schema</a> - Backup file schema</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo datasets</li>
</ul>
</body>
</html>`))
	})

	return r
}
