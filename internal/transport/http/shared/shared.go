// Package shared holds response helpers used by every transport handler so
// error envelopes stay consistent across the surface.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	gwErrors "fleetgate/pkg/errors"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded error into a JSON envelope. Unknown errors
// collapse to internal_error so internals never leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := string(gwErrors.CodeInternal)

	var gw *gwErrors.GatewayError
	if errors.As(err, &gw) {
		status = gwErrors.ToHTTPStatus(gw.Code)
		code = string(gw.Code)
	}

	WriteJSON(w, status, map[string]string{"error": code})
}
