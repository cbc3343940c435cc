package httptransport

import (
	"context"
	"fmt"
	"net/http"

	"fleetgate/internal/capability"
	"fleetgate/internal/guard"
	"fleetgate/internal/platform/middleware"
	"fleetgate/internal/transport/http/shared"
	"fleetgate/pkg/platform/sentinel"
)

// NewSessionValidator builds the per-request session resolution step from the
// actor store: the bearer claims land in the request context via OptionalAuth
// and the store confirms the actor still exists. The guard evaluates each
// page navigation against the actor resolved this way, never against a
// process-wide session.
func NewSessionValidator(actors ActorStore) guard.SessionValidator {
	return &contextSessionValidator{actors: actors}
}

type contextSessionValidator struct {
	actors ActorStore
}

func (v *contextSessionValidator) Validate(ctx context.Context) (*capability.Actor, error) {
	email := middleware.GetActorEmail(ctx)
	if email == "" {
		return nil, fmt.Errorf("no session token: %w", sentinel.ErrNotFound)
	}
	return v.actors.Fetch(ctx, email)
}

type pageShellResponse struct {
	App  string `json:"app"`
	Path string `json:"path"`
}

// handlePageShell serves the back-office shell for any route the guard let
// through. Actual page content ships with the client bundle; the shell
// response confirms the navigation was authorized.
func (h *Handler) handlePageShell(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, pageShellResponse{
		App:  "fleet-backoffice",
		Path: guard.NormalizePath(r.URL.Path),
	})
}
