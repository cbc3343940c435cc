// Package actor defines where actor records come from. The session refresher
// and the transport layer only see the Source interface; the concrete source
// may be the remote actor endpoint (client subpackage) or the gateway's own
// store (store subpackage).
package actor

import (
	"context"

	"fleetgate/internal/capability"
)

// Source fetches the current actor record by its stable identifier (email).
// Implementations return sentinel.ErrNotFound (wrapped) when the actor no
// longer exists, so callers can distinguish "gone" from transient failure.
type Source interface {
	Fetch(ctx context.Context, email string) (*capability.Actor, error)
}
