package httptransport

import (
	"net/http"

	"fleetgate/internal/navigation"
	"fleetgate/internal/transport/http/shared"
)

type navigationEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Path  string `json:"path"`
}

type navigationResponse struct {
	Entries []navigationEntry `json:"entries"`
}

type landingResponse struct {
	LandingPath string `json:"landing_path"`
}

// handleNavigation returns the menu filtered to what the actor may open.
func (h *Handler) handleNavigation(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requestActor(w, r)
	if !ok {
		return
	}

	visible := h.nav.FilterForActor(actor)
	entries := make([]navigationEntry, 0, len(visible))
	for _, e := range visible {
		entries = append(entries, toNavigationEntry(e))
	}

	shared.WriteJSON(w, http.StatusOK, navigationResponse{Entries: entries})
}

// handleNavigationLanding returns where the actor should land after login.
func (h *Handler) handleNavigationLanding(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requestActor(w, r)
	if !ok {
		return
	}

	shared.WriteJSON(w, http.StatusOK, landingResponse{
		LandingPath: h.nav.DefaultLandingPath(actor),
	})
}

func toNavigationEntry(e navigation.Entry) navigationEntry {
	return navigationEntry{
		ID:    e.ID,
		Label: e.Label,
		Icon:  e.Icon,
		Path:  e.Path,
	}
}
