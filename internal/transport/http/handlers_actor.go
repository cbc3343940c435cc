package httptransport

import (
	"errors"
	"net/http"

	"github.com/asaskevich/govalidator"

	"fleetgate/internal/transport/http/shared"
	gwErrors "fleetgate/pkg/errors"
	"fleetgate/pkg/platform/sentinel"
)

// handleActorFetch serves actor records to the refresh loop and to peer
// deployments configured with this gateway as their actor source.
func (h *Handler) handleActorFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := r.URL.Query().Get("id")
	if !govalidator.IsEmail(email) {
		shared.WriteError(w, gwErrors.New(gwErrors.CodeBadRequest, "id must be an actor email"))
		return
	}

	actor, err := h.actors.Fetch(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			shared.WriteError(w, gwErrors.Wrap(err, gwErrors.CodeNotFound, "actor not found"))
			return
		}
		h.logger.ErrorContext(ctx, "actor fetch failed",
			"actor", email,
			"error", err,
		)
		shared.WriteError(w, gwErrors.Wrap(err, gwErrors.CodeInternal, "actor fetch failed"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, actor)
}
