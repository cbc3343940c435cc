// Package store persists server-side session records: one row per issued
// session, keyed by session ID. The CheckingAuth re-validation path looks
// sessions up here; logout deletes the record so a stolen token dies with
// the session.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one server-side session.
type Record struct {
	ID         uuid.UUID `json:"id"`
	ActorEmail string    `json:"actor_email"`
	Device     string    `json:"device"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the record is past its expiry at now.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && r.ExpiresAt.Before(now)
}

// Store persists session records.
//
// Error contract: Find returns sentinel.ErrNotFound (wrapped) for missing or
// expired sessions; Delete returns sentinel.ErrNotFound when nothing was
// deleted; other errors are infrastructure failures.
type Store interface {
	Create(ctx context.Context, record *Record) error
	Find(ctx context.Context, sessionID uuid.UUID) (*Record, error)
	Touch(ctx context.Context, sessionID uuid.UUID, at time.Time) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
}
