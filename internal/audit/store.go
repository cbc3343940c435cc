package audit

import "context"

// Store persists consumed audit events for review.
type Store interface {
	Append(ctx context.Context, event Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}
