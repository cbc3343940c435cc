// Package httptransport is the thin HTTP layer over the policy engine. It
// delegates to domain services without embedding business logic so transport
// concerns remain isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleetgate/internal/access"
	"fleetgate/internal/audit"
	"fleetgate/internal/guard"
	"fleetgate/internal/navigation"
	"fleetgate/internal/platform/metrics"
	"fleetgate/internal/platform/middleware"
	sessionstore "fleetgate/internal/session/store"
)

// Handler bundles the dependencies the transport surface needs.
type Handler struct {
	logger     *slog.Logger
	evaluator  *access.Evaluator
	nav        *navigation.Resolver
	actors     ActorStore
	sessions   sessionstore.Store
	validator  middleware.JWTValidator
	publisher  audit.Publisher
	metrics    *metrics.Metrics
	sessionTTL time.Duration
	guard      *guard.Guard
}

// Option customizes a Handler.
type Option func(*Handler)

// WithAuditPublisher routes access and session events to a publisher.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(h *Handler) {
		h.publisher = p
	}
}

// WithMetrics attaches transport metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithSessionTTL bounds session record lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(h *Handler) {
		h.sessionTTL = ttl
	}
}

// WithGuard mounts the route guard over the back-office page routes.
func WithGuard(g *guard.Guard) Option {
	return func(h *Handler) {
		h.guard = g
	}
}

// NewHandler creates the transport handler.
func NewHandler(
	logger *slog.Logger,
	evaluator *access.Evaluator,
	nav *navigation.Resolver,
	actors ActorStore,
	sessions sessionstore.Store,
	validator middleware.JWTValidator,
	opts ...Option,
) *Handler {
	h := &Handler{
		logger:     logger,
		evaluator:  evaluator,
		nav:        nav,
		actors:     actors,
		sessions:   sessions,
		validator:  validator,
		sessionTTL: 12 * time.Hour,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter wires the gateway surface. Policy endpoints require a bearer
// token; the actor source endpoint and health surface stay open for
// intra-service use.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.LatencyMiddleware(h.metrics))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/access/required", h.handleAccessRequired)
	r.Get("/actor", h.handleActorFetch)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/access/check", h.handleAccessCheck)
		r.Get("/navigation", h.handleNavigation)
		r.Get("/navigation/landing", h.handleNavigationLanding)
		r.Post("/auth/session", h.handleSessionCreate)
		r.Get("/auth/session", h.handleSessionValidate)
		r.Delete("/auth/session", h.handleSessionDelete)
	})

	if h.guard != nil {
		// Page routes serve every client through one guard, so the actor is
		// resolved from each request's bearer claims, not from the guard's
		// session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(h.validator, h.logger))
			r.Use(guard.SharedMiddleware(h.guard, NewSessionValidator(h.actors)))
			r.Handle("/*", http.HandlerFunc(h.handlePageShell))
		})
	}

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
