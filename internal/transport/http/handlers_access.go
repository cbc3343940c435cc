package httptransport

import (
	"context"
	"net/http"
	"time"

	"fleetgate/internal/audit"
	"fleetgate/internal/capability"
	"fleetgate/internal/guard"
	"fleetgate/internal/platform/middleware"
	"fleetgate/internal/transport/http/shared"
	gwErrors "fleetgate/pkg/errors"
)

// ActorStore serves actor records for the source endpoint and for
// per-request access checks.
type ActorStore interface {
	Fetch(ctx context.Context, email string) (*capability.Actor, error)
}

type accessRequiredResponse struct {
	Path         string `json:"path"`
	AuthRequired bool   `json:"auth_required"`
}

type accessCheckResponse struct {
	Path    string `json:"path"`
	Allowed bool   `json:"allowed"`
}

// handleAccessRequired answers whether a path needs an authenticated session.
// Open endpoint so login flows can probe before a session exists.
func (h *Handler) handleAccessRequired(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		shared.WriteError(w, gwErrors.New(gwErrors.CodeBadRequest, "path query parameter is required"))
		return
	}
	path = guard.NormalizePath(path)

	shared.WriteJSON(w, http.StatusOK, accessRequiredResponse{
		Path:         path,
		AuthRequired: h.evaluator.IsAuthRequired(path),
	})
}

// handleAccessCheck evaluates the requesting actor against a path.
func (h *Handler) handleAccessCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	path := r.URL.Query().Get("path")
	if path == "" {
		shared.WriteError(w, gwErrors.New(gwErrors.CodeBadRequest, "path query parameter is required"))
		return
	}
	path = guard.NormalizePath(path)

	actor, ok := h.requestActor(w, r)
	if !ok {
		return
	}

	allowed := h.evaluator.CheckAccess(path, actor)

	outcome := "denied"
	kind := audit.EventAccessDenied
	if allowed {
		outcome = "granted"
		kind = audit.EventAccessGranted
	}
	if h.metrics != nil {
		h.metrics.AccessChecks.WithLabelValues(outcome).Inc()
	}
	h.publish(ctx, audit.Event{
		Kind:       kind,
		Timestamp:  time.Now().UTC(),
		Path:       path,
		ActorEmail: actor.Email,
	})
	if !allowed {
		h.logger.WarnContext(ctx, "access denied",
			"path", path,
			"actor", actor.Email,
			"request_id", requestID,
		)
	}

	shared.WriteJSON(w, http.StatusOK, accessCheckResponse{Path: path, Allowed: allowed})
}

// requestActor resolves the authenticated actor for the current request. A
// missing record means the actor was deleted after the token was minted, so
// the caller gets a 401 rather than a policy answer.
func (h *Handler) requestActor(w http.ResponseWriter, r *http.Request) (*capability.Actor, bool) {
	ctx := r.Context()
	email := middleware.GetActorEmail(ctx)
	if email == "" {
		// Should never happen behind RequireAuth.
		h.logger.ErrorContext(ctx, "actor email missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, gwErrors.New(gwErrors.CodeInternal, "authentication context error"))
		return nil, false
	}

	actor, err := h.actors.Fetch(ctx, email)
	if err != nil {
		h.logger.WarnContext(ctx, "actor lookup failed",
			"actor", email,
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, gwErrors.Wrap(err, gwErrors.CodeUnauthorized, "actor no longer exists"))
		return nil, false
	}
	return actor, true
}

func (h *Handler) publish(ctx context.Context, event audit.Event) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "audit publish failed",
			"kind", string(event.Kind),
			"error", err,
		)
	}
}
