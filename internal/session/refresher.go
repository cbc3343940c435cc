package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fleetgate/internal/actor"
	"fleetgate/pkg/platform/sentinel"
)

// DefaultRefreshPeriod bounds the staleness window for permission edits made
// on the server side: within one period the bag reflects them without
// re-login.
const DefaultRefreshPeriod = 60 * time.Second

var (
	refreshTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetgate_session_refresh_ticks_total",
		Help: "Session refresh ticks by outcome",
	}, []string{"outcome"})
)

// Refresher periodically re-fetches the session actor's record so that
// permission edits propagate without re-login. Start and Stop form an
// idempotent pair: Start always stops a previous run first, so there is never
// more than one active timer per session, and Stop returns only after the
// background goroutine has fully exited.
type Refresher struct {
	source actor.Source
	sess   *Context
	period time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithPeriod overrides the refresh period.
func WithPeriod(period time.Duration) RefresherOption {
	return func(r *Refresher) {
		r.period = period
	}
}

// WithLogger injects a structured logger.
func WithLogger(logger *slog.Logger) RefresherOption {
	return func(r *Refresher) {
		r.logger = logger
	}
}

// NewRefresher constructs a refresher bound to one session context.
func NewRefresher(source actor.Source, sess *Context, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		source: source,
		sess:   sess,
		period: DefaultRefreshPeriod,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins refreshing the record identified by email. A previous run is
// stopped first.
func (r *Refresher) Start(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go r.run(ctx, email, done)
}

// Stop halts refreshing and waits for the background goroutine to exit, so a
// caller clearing the session immediately afterwards cannot race an in-flight
// tick.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

// Running reports whether a refresh timer is active.
func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Refresher) stopLocked() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel = nil
	r.done = nil
}

func (r *Refresher) run(ctx context.Context, email string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx, email)
		}
	}
}

// tick performs one refresh. Outcomes follow the spec'd failure taxonomy:
// success replaces the whole bag; a vanished actor keeps the stale bag (the
// next access checks keep failing safe); any other error is retried on the
// next tick.
func (r *Refresher) tick(ctx context.Context, email string) {
	gen := r.sess.Generation()

	record, err := r.source.Fetch(ctx, email)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		refreshTicks.WithLabelValues("actor_gone").Inc()
		r.logger.WarnContext(ctx, "session refresh: actor no longer exists, keeping stale bag",
			"email", email,
		)
		return
	case err != nil:
		refreshTicks.WithLabelValues("error").Inc()
		r.logger.WarnContext(ctx, "session refresh failed, retrying next tick",
			"email", email,
			"error", err,
		)
		return
	}

	if !r.sess.ReplaceBagAt(gen, record.Capabilities) {
		refreshTicks.WithLabelValues("superseded").Inc()
		return
	}
	refreshTicks.WithLabelValues("ok").Inc()
}
