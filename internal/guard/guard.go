// Package guard enforces the route policy on every navigation. It owns the
// session lifecycle around the access evaluator: hydration of persisted
// session state, re-validation of the session against the server, redirects
// for anonymous visitors, and the explicit access-denied rendering for
// authenticated actors lacking a capability.
package guard

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"fleetgate/internal/access"
	"fleetgate/internal/audit"
	"fleetgate/internal/capability"
	"fleetgate/internal/navigation"
	"fleetgate/internal/session"
)

var tracer = otel.Tracer("fleetgate/guard")

var (
	decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetgate_guard_decisions_total",
		Help: "Route guard decisions by resulting state",
	}, []string{"state"})
	evaluationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleetgate_guard_evaluation_seconds",
		Help:    "Latency of route guard evaluations",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
	})
)

// State is the guard's position in its evaluation lifecycle.
type State int

const (
	// StateHydrating: persisted session state has not been read yet; no
	// navigation decisions are made and callers render a loading
	// placeholder.
	StateHydrating State = iota
	// StateCheckingAuth: a session re-validation is in flight; guarded
	// content stays suspended until it resolves.
	StateCheckingAuth
	// StatePublic: the path requires no authentication.
	StatePublic
	// StateAuthorized: the actor may enter the path.
	StateAuthorized
	// StateUnauthorized: entry denied; the decision carries either a
	// login redirect (no actor) or a landing path (actor lacking the
	// capability).
	StateUnauthorized
)

func (s State) String() string {
	switch s {
	case StateHydrating:
		return "hydrating"
	case StateCheckingAuth:
		return "checking_auth"
	case StatePublic:
		return "public"
	case StateAuthorized:
		return "authorized"
	case StateUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// SessionValidator re-validates the current session against the server and
// returns the actor it belongs to. Implementations typically call a remote
// session endpoint.
type SessionValidator interface {
	Validate(ctx context.Context) (*capability.Actor, error)
}

// Decision is the outcome of one navigation evaluation.
type Decision struct {
	State State
	Path  string
	// RedirectTo is set when the visitor must be sent to the login entry
	// point (unauthorized with no actor).
	RedirectTo string
	// LandingPath is set when an authenticated actor was denied: the
	// access-denied view offers it as the single recovery action. No
	// auto-redirect happens, so the denial stays visible.
	LandingPath string
}

// Guard evaluates navigations for one session. Every path change re-runs the
// full evaluation; the guard holds no per-path cache because the refresher
// may change the bag between navigations.
type Guard struct {
	evaluator *access.Evaluator
	nav       *navigation.Resolver
	sess      *session.Context
	refresher *session.Refresher
	validator SessionValidator
	publisher audit.Publisher
	logger    *slog.Logger
	loginPath string

	hydrated atomic.Bool
	state    atomic.Int32
	sf       singleflight.Group
}

// Option configures a Guard.
type Option func(*Guard)

// WithValidator wires the session re-validation step (CheckingAuth).
func WithValidator(v SessionValidator) Option {
	return func(g *Guard) {
		g.validator = v
	}
}

// WithRefresher wires the background bag refresher. The guard starts it on
// login and stops it on logout.
func WithRefresher(r *session.Refresher) Option {
	return func(g *Guard) {
		g.refresher = r
	}
}

// WithAuditPublisher wires the decision audit trail.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(g *Guard) {
		g.publisher = p
	}
}

// WithLogger injects a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// WithLoginPath overrides the login entry point for redirects.
func WithLoginPath(path string) Option {
	return func(g *Guard) {
		g.loginPath = path
	}
}

// New constructs a guard over one session context.
func New(evaluator *access.Evaluator, nav *navigation.Resolver, sess *session.Context, opts ...Option) *Guard {
	g := &Guard{
		evaluator: evaluator,
		nav:       nav,
		sess:      sess,
		logger:    slog.Default(),
		loginPath: "/auth/login",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Hydrate marks the persisted session state as read. A nil actor hydrates an
// anonymous session; a non-nil actor seeds the session and starts the bag
// refresher. Until Hydrate is called, Evaluate returns StateHydrating and
// decides nothing.
func (g *Guard) Hydrate(actor *capability.Actor) {
	if actor != nil {
		g.login(actor)
	}
	g.hydrated.Store(true)
}

// Login installs a freshly authenticated actor (the authentication-callback
// exchange produced it) and starts the bag refresher.
func (g *Guard) Login(actor *capability.Actor) {
	g.login(actor)
	g.hydrated.Store(true)
}

func (g *Guard) login(actor *capability.Actor) {
	g.sess.Create(actor)
	if g.refresher != nil {
		g.refresher.Start(actor.Email)
	}
	g.publish(context.Background(), audit.Event{
		Kind:       audit.EventSessionCreated,
		Timestamp:  time.Now(),
		ActorEmail: actor.Email,
	})
}

// Logout stops the refresher synchronously before clearing the bag, so an
// in-flight refresh can never repopulate capabilities after logout.
func (g *Guard) Logout() {
	email := g.sess.Email()
	if g.refresher != nil {
		g.refresher.Stop()
	}
	g.sess.Clear()
	g.publish(context.Background(), audit.Event{
		Kind:       audit.EventSessionCleared,
		Timestamp:  time.Now(),
		ActorEmail: email,
	})
}

// State reports the guard's current lifecycle state. During an in-flight
// session re-validation this reads StateCheckingAuth.
func (g *Guard) State() State {
	if !g.hydrated.Load() {
		return StateHydrating
	}
	return State(g.state.Load())
}

// Evaluate runs the full policy evaluation for one navigation to path. The
// path must be normalized (no query string, no trailing slash beyond root).
// Evaluate never fails: every ambiguity resolves to a denial decision. It
// reads the guard's own session and therefore serves exactly one client;
// routes shared between clients go through EvaluateFor.
func (g *Guard) Evaluate(ctx context.Context, path string) Decision {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "guard.Evaluate",
		trace.WithAttributes(attribute.String("route.path", path)))
	defer span.End()

	decision := g.evaluate(ctx, path)

	g.state.Store(int32(decision.State))
	decisions.WithLabelValues(decision.State.String()).Inc()
	evaluationSeconds.Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("guard.state", decision.State.String()))
	return decision
}

// EvaluateFor runs one navigation evaluation for a caller-resolved session
// instead of the guard's own. Shared HTTP routes serve many clients through a
// single guard; resolving the actor from each request's validator keeps one
// client's session from ever deciding another client's navigation. EvaluateFor
// never reads or seeds the guard's session context.
func (g *Guard) EvaluateFor(ctx context.Context, path string, v SessionValidator) Decision {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "guard.EvaluateFor",
		trace.WithAttributes(attribute.String("route.path", path)))
	defer span.End()

	decision := g.evaluateFor(ctx, path, v)

	decisions.WithLabelValues(decision.State.String()).Inc()
	evaluationSeconds.Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("guard.state", decision.State.String()))
	return decision
}

func (g *Guard) evaluateFor(ctx context.Context, path string, v SessionValidator) Decision {
	if !g.hydrated.Load() {
		return Decision{State: StateHydrating, Path: path}
	}

	if !g.evaluator.IsAuthRequired(path) {
		return Decision{State: StatePublic, Path: path}
	}

	var actor *capability.Actor
	if v != nil {
		a, err := v.Validate(ctx)
		if err != nil {
			g.logger.DebugContext(ctx, "request session validation failed",
				"path", path,
				"error", err,
			)
		} else {
			actor = a
		}
	}
	return g.decide(ctx, path, actor)
}

func (g *Guard) evaluate(ctx context.Context, path string) Decision {
	if !g.hydrated.Load() {
		return Decision{State: StateHydrating, Path: path}
	}

	if !g.evaluator.IsAuthRequired(path) {
		return Decision{State: StatePublic, Path: path}
	}

	actor := g.sess.Actor()
	if actor == nil && g.validator != nil {
		actor = g.checkAuth(ctx)
	}
	return g.decide(ctx, path, actor)
}

func (g *Guard) decide(ctx context.Context, path string, actor *capability.Actor) Decision {
	if actor == nil {
		g.publish(ctx, audit.Event{
			Kind:      audit.EventLoginRedirect,
			Timestamp: time.Now(),
			Path:      path,
		})
		return Decision{State: StateUnauthorized, Path: path, RedirectTo: g.loginPath}
	}

	if g.evaluator.CheckAccess(path, actor) {
		g.publish(ctx, audit.Event{
			Kind:       audit.EventAccessGranted,
			Timestamp:  time.Now(),
			Path:       path,
			ActorEmail: actor.Email,
		})
		return Decision{State: StateAuthorized, Path: path}
	}

	g.logger.WarnContext(ctx, "access denied",
		"path", path,
		"actor", actor.Email,
	)
	g.publish(ctx, audit.Event{
		Kind:       audit.EventAccessDenied,
		Timestamp:  time.Now(),
		Path:       path,
		ActorEmail: actor.Email,
	})
	return Decision{
		State:       StateUnauthorized,
		Path:        path,
		LandingPath: g.nav.DefaultLandingPath(actor),
	}
}

// checkAuth re-validates the session. Concurrent navigations share one
// in-flight validation through singleflight, so no two authentication checks
// run at once for the same session.
func (g *Guard) checkAuth(ctx context.Context) *capability.Actor {
	g.state.Store(int32(StateCheckingAuth))

	v, err, _ := g.sf.Do("session", func() (any, error) {
		return g.validator.Validate(ctx)
	})
	if err != nil {
		g.logger.WarnContext(ctx, "session re-validation failed",
			"error", err,
		)
		return nil
	}
	actor, ok := v.(*capability.Actor)
	if !ok || actor == nil {
		return nil
	}

	g.sess.Create(actor)
	if g.refresher != nil {
		g.refresher.Start(actor.Email)
	}
	return actor
}

// publish emits an audit event on the side of the decision path. Failures
// are logged and dropped; they never change the decision.
func (g *Guard) publish(ctx context.Context, event audit.Event) {
	if g.publisher == nil {
		return
	}
	if err := g.publisher.Publish(ctx, event); err != nil {
		g.logger.ErrorContext(ctx, "audit publish failed",
			"kind", string(event.Kind),
			"error", err,
		)
	}
}
