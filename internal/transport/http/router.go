package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	admin "platewise/pkg/platform/middleware/admin"
	request "platewise/pkg/platform/middleware/request"
)

// NewRouter wires all endpoints. Admin routes are mounted behind the key
// check; everything else is open to the page scripts this service backs.
func NewRouter(h *Handler, adminKeyHash string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(Recovery(logger))
	r.Use(Logger(logger))
	r.Use(ClientInfo)
	r.Use(BearerToken)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/verification/status", h.handleStatus)
	r.Get("/verification/badge", h.handleBadge)
	r.Get("/healthz", h.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminKey(adminKeyHash, logger))
		r.Put("/verification/override", h.handleSetOverride)
		r.Delete("/verification/override", h.handleClearOverride)
		r.Post("/verification/cache/invalidate", h.handleInvalidate)
		r.Get("/verification/audit", h.handleAudit)
	})

	return r
}
