// Package api wires the HTTP boundary: route registration, request/response
// shapes and their handlers. Everything under /api/v1 talks to the tool
// engine; /v1/chat/completions is the OpenAI-compatible chat surface.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/matiasleandrokruk/toolbridge/internal/api/handlers"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/audit"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/chat"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/eventbus"
	"github.com/matiasleandrokruk/toolbridge/internal/version"
)

// Deps carries the services the router exposes. Audit may be nil when no
// database is configured; the audit endpoints then answer 503.
type Deps struct {
	Registry *tool.Registry
	Chat     *chat.Service
	Audit    *audit.Service
	Bus      eventbus.EventBus
	Log      *slog.Logger
}

// NewRouter creates and configures the chi router with all routes.
func NewRouter(deps Deps) *chi.Mux {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check — used by load balancers and health probes.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","version":"` + version.Version + `"}`)) //nolint:errcheck
	})

	toolHandler := handlers.NewToolHandler(deps.Registry, deps.Bus, deps.Log)
	auditHandler := handlers.NewAuditHandler(deps.Audit)
	chatHandler := handlers.NewChatHandler(deps.Chat, deps.Log)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/tools", func(r chi.Router) {
			r.Get("/", toolHandler.ListTools)           // GET  /api/v1/tools?category=
			r.Get("/stats", toolHandler.Stats)          // GET  /api/v1/tools/stats
			r.Post("/stats/reset", toolHandler.ResetStats) // POST /api/v1/tools/stats/reset?tool=
			r.Post("/execute", toolHandler.Execute)     // POST /api/v1/tools/execute
			r.Get("/{name}", toolHandler.GetTool)       // GET  /api/v1/tools/{name}
		})
		r.Route("/audit", func(r chi.Router) {
			r.Get("/invocations", auditHandler.ListInvocations) // GET /api/v1/audit/invocations
		})
	})

	// OpenAI-compatible surface, outside /api/v1 so existing OpenAI
	// clients can point their base URL at this server unchanged.
	r.Post("/v1/chat/completions", chatHandler.ChatCompletions)

	return r
}
