// Package audit records route access decisions for security review. Events
// are emitted on the side of the decision path and must never influence it: a
// publisher failure is logged and dropped, not surfaced to the guard.
package audit

import (
	"context"
	"time"
)

// EventKind names what happened.
type EventKind string

const (
	EventAccessGranted  EventKind = "access_granted"
	EventAccessDenied   EventKind = "access_denied"
	EventLoginRedirect  EventKind = "login_redirect"
	EventSessionCreated EventKind = "session_created"
	EventSessionCleared EventKind = "session_cleared"
)

// Event is one access decision. ActorEmail is empty for anonymous visitors.
// The event carries no required-capability details: registry contents stay
// out of anything that leaves the process.
type Event struct {
	Kind       EventKind `json:"kind"`
	Timestamp  time.Time `json:"timestamp"`
	Path       string    `json:"path"`
	ActorEmail string    `json:"actor_email,omitempty"`
}

// Publisher delivers audit events to a sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}
