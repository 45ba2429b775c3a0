// Package httptransport is the thin HTTP layer over the verification core.
// Handlers decode, validate, delegate, and encode; every decision lives in
// the service, cache, or override packages.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"platewise/internal/audit"
	"platewise/internal/verification/badge"
	"platewise/internal/verification/models"
	dErrors "platewise/pkg/domain-errors"
	"platewise/pkg/platform/httputil"
)

// StatusCache is the resolution surface the handlers consume.
type StatusCache interface {
	Get(ctx context.Context, subjectKey string) (models.Result, error)
	Invalidate(ctx context.Context, subjectKey string) error
	InvalidateAll(ctx context.Context) error
}

// Overrides mutates the current-user manual override.
type Overrides interface {
	Set(ctx context.Context, isVerified bool, reason string) error
	Clear(ctx context.Context) error
	Peek(ctx context.Context) (*models.Override, error)
}

// AuditLog reads back recent resolution events.
type AuditLog interface {
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

// HealthCheck reports one dependency's liveness. Nil-able: absent optional
// backends simply contribute no check.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	cache     StatusCache
	overrides Overrides
	audits    AuditLog
	logger    *slog.Logger
	checks    map[string]HealthCheck
}

func NewHandler(cache StatusCache, overrides Overrides, audits AuditLog, logger *slog.Logger) *Handler {
	return &Handler{
		cache:     cache,
		overrides: overrides,
		audits:    audits,
		logger:    logger,
		checks:    map[string]HealthCheck{},
	}
}

// AddHealthCheck registers a named dependency probe for /healthz.
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	if check != nil {
		h.checks[name] = check
	}
}

func subjectFromQuery(r *http.Request) string {
	return models.SubjectForUser(r.URL.Query().Get("user_id"))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.cache.Get(r.Context(), subjectFromQuery(r))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "resolution failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

type badgeResponse struct {
	Label      string        `json:"label"`
	IsVerified bool          `json:"is_verified"`
	Status     models.Status `json:"status"`
	Panel      []string      `json:"panel"`
}

func (h *Handler) handleBadge(w http.ResponseWriter, r *http.Request) {
	result, err := h.cache.Get(r.Context(), subjectFromQuery(r))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "resolution failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, badgeResponse{
		Label:      badge.Label(result),
		IsVerified: result.IsVerified,
		Status:     result.Status,
		Panel:      badge.Panel(result),
	})
}

type overrideRequest struct {
	IsVerified *bool  `json:"is_verified"`
	Reason     string `json:"reason"`
}

func (h *Handler) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	if req.IsVerified == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "is_verified is required"))
		return
	}

	ctx := r.Context()
	if err := h.overrides.Set(ctx, *req.IsVerified, req.Reason); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "persisting override failed"))
		return
	}
	// The override changes what the current-user subject resolves to, so the
	// cached entry is stale the moment it lands.
	if err := h.cache.Invalidate(ctx, models.SubjectCurrentUser); err != nil {
		h.logger.WarnContext(ctx, "cache invalidation after override failed", "error", err)
	}

	// One response shape regardless of whether the readback succeeds.
	resp := models.Override{IsVerified: *req.IsVerified, Reason: req.Reason, SetAt: time.Now().UTC()}
	if stored, err := h.overrides.Peek(ctx); err == nil && stored != nil {
		resp = *stored
	} else if err != nil {
		h.logger.WarnContext(ctx, "override readback failed", "error", err)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleClearOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.overrides.Clear(ctx); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "clearing override failed"))
		return
	}
	if err := h.cache.Invalidate(ctx, models.SubjectCurrentUser); err != nil {
		h.logger.WarnContext(ctx, "cache invalidation after override clear failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

type invalidateRequest struct {
	SubjectKey string `json:"subject_key"`
}

func (h *Handler) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
			return
		}
	}

	ctx := r.Context()
	var err error
	if req.SubjectKey == "" {
		err = h.cache.InvalidateAll(ctx)
	} else {
		err = h.cache.Invalidate(ctx, req.SubjectKey)
	}
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "cache invalidation failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	events, err := h.audits.Recent(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "reading audit events failed"))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	failures := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":   "degraded",
			"failures": failures,
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
