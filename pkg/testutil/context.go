package testutil

import (
	"context"
	"net/http"

	"fleetgate/internal/platform/middleware"
)

// WithActorEmail adds an actor email to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithActorEmail(req *http.Request, email string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyActorEmail, email)
	return req.WithContext(ctx)
}

// WithSessionID adds a session ID to the request context.
func WithSessionID(req *http.Request, sessionID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeySessionID, sessionID)
	return req.WithContext(ctx)
}

// WithAuth adds both actor email and session ID to the request context.
// This is the typical state for an authenticated request.
func WithAuth(req *http.Request, email, sessionID string) *http.Request {
	return WithSessionID(WithActorEmail(req, email), sessionID)
}
