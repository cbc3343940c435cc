package httptransport

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"fleetgate/internal/audit"
	"fleetgate/internal/platform/middleware"
	"fleetgate/internal/session/device"
	sessionstore "fleetgate/internal/session/store"
	"fleetgate/internal/transport/http/shared"
	gwErrors "fleetgate/pkg/errors"
	"fleetgate/pkg/platform/sentinel"
)

type sessionResponse struct {
	SessionID  string    `json:"session_id"`
	ActorEmail string    `json:"actor_email"`
	Device     string    `json:"device"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// handleSessionCreate records a server-side session for a freshly minted
// token. The token itself comes from the authentication exchange; this
// endpoint only pins the session record the gateway validates against.
func (h *Handler) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	sessionID, err := uuid.Parse(middleware.GetSessionID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "token carried malformed session id",
			"error", err,
			"request_id", requestID,
		)
		shared.WriteError(w, gwErrors.New(gwErrors.CodeUnauthorized, "invalid session id"))
		return
	}
	email := middleware.GetActorEmail(ctx)

	// The actor must still exist before a session is pinned.
	if _, ok := h.requestActor(w, r); !ok {
		return
	}

	now := time.Now().UTC()
	record := &sessionstore.Record{
		ID:         sessionID,
		ActorEmail: email,
		Device:     device.ParseUserAgent(r.UserAgent()),
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(h.sessionTTL),
	}
	if err := h.sessions.Create(ctx, record); err != nil {
		h.logger.ErrorContext(ctx, "session create failed",
			"session_id", sessionID,
			"error", err,
			"request_id", requestID,
		)
		shared.WriteError(w, gwErrors.Wrap(err, gwErrors.CodeInternal, "session create failed"))
		return
	}

	if h.metrics != nil {
		h.metrics.SessionsCreated.Inc()
	}
	h.publish(ctx, audit.Event{
		Kind:       audit.EventSessionCreated,
		Timestamp:  now,
		ActorEmail: email,
	})

	shared.WriteJSON(w, http.StatusCreated, sessionResponse{
		SessionID:  record.ID.String(),
		ActorEmail: record.ActorEmail,
		Device:     record.Device,
		ExpiresAt:  record.ExpiresAt,
	})
}

// handleSessionValidate confirms the session record is alive and returns the
// current actor snapshot. Remote deployments poll this during their
// checking-auth phase.
func (h *Handler) handleSessionValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := uuid.Parse(middleware.GetSessionID(ctx))
	if err != nil {
		shared.WriteError(w, gwErrors.New(gwErrors.CodeUnauthorized, "invalid session id"))
		return
	}

	record, err := h.sessions.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			shared.WriteError(w, gwErrors.Wrap(err, gwErrors.CodeUnauthorized, "session not found"))
			return
		}
		h.logger.ErrorContext(ctx, "session lookup failed",
			"session_id", sessionID,
			"error", err,
		)
		shared.WriteError(w, gwErrors.Wrap(err, gwErrors.CodeInternal, "session lookup failed"))
		return
	}

	now := time.Now().UTC()
	if record.Expired(now) {
		shared.WriteError(w, gwErrors.New(gwErrors.CodeUnauthorized, "session expired"))
		return
	}

	actor, ok := h.requestActor(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Touch(ctx, sessionID, now); err != nil {
		// Stale last-seen is tolerable; the session is still valid.
		h.logger.WarnContext(ctx, "session touch failed",
			"session_id", sessionID,
			"error", err,
		)
	}

	shared.WriteJSON(w, http.StatusOK, actor)
}

// handleSessionDelete tears the session record down on logout.
func (h *Handler) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := uuid.Parse(middleware.GetSessionID(ctx))
	if err != nil {
		shared.WriteError(w, gwErrors.New(gwErrors.CodeUnauthorized, "invalid session id"))
		return
	}

	if err := h.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		h.logger.ErrorContext(ctx, "session delete failed",
			"session_id", sessionID,
			"error", err,
		)
		shared.WriteError(w, gwErrors.Wrap(err, gwErrors.CodeInternal, "session delete failed"))
		return
	}

	h.publish(ctx, audit.Event{
		Kind:       audit.EventSessionCleared,
		Timestamp:  time.Now().UTC(),
		ActorEmail: middleware.GetActorEmail(ctx),
	})

	w.WriteHeader(http.StatusNoContent)
}
