package guard

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Middleware adapts one session's guard decisions to HTTP routes. It reads
// the guard's own session, so it fits a handler dedicated to a single client
// (an embedded shell, a kiosk). Routes served to many clients must use
// SharedMiddleware instead.
func Middleware(g *Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := g.Evaluate(r.Context(), NormalizePath(r.URL.Path))
			writeDecision(w, r, decision, next)
		})
	}
}

// SharedMiddleware guards routes served to many concurrent clients. The actor
// is resolved from each request's own context through v, never from the
// guard's session, so an anonymous request stays anonymous no matter who
// authenticated before it.
func SharedMiddleware(g *Guard, v SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := g.EvaluateFor(r.Context(), NormalizePath(r.URL.Path), v)
			writeDecision(w, r, decision, next)
		})
	}
}

// writeDecision renders one guard decision onto the response. Public and
// authorized navigations pass through; anonymous visitors are redirected to
// the login entry point; denied actors get the access-denied payload with
// their landing path as the single recovery action. The payload never names
// capabilities or registry contents.
func writeDecision(w http.ResponseWriter, r *http.Request, decision Decision, next http.Handler) {
	switch decision.State {
	case StatePublic, StateAuthorized:
		next.ServeHTTP(w, r)
	case StateHydrating:
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "loading",
		})
	default:
		if decision.RedirectTo != "" {
			http.Redirect(w, r, decision.RedirectTo, http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":        "access_denied",
			"message":      "You do not have access to this page.",
			"landing_path": decision.LandingPath,
		})
	}
}

// NormalizePath strips a trailing slash (beyond the bare root) so matching
// sees the canonical form. Query strings never reach here; r.URL.Path is
// already bare.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if path != "/" {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
