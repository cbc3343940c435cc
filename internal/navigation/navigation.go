// Package navigation filters the static back-office menu down to what an
// actor may use and derives the actor's default landing path. Menu filtering
// is a rendering convenience only: enforcement always re-checks the route
// policy registry, never the filtered menu.
package navigation

import (
	"fleetgate/internal/capability"
	"fleetgate/internal/routepolicy"
)

// Entry describes one menu item. Requirement mirrors the route policy entry
// for the target path but is consulted only for rendering.
type Entry struct {
	ID          string
	Label       string
	Icon        string
	Path        string
	Requirement routepolicy.Requirement
}

// Resolver answers menu and landing-path questions for one static menu.
type Resolver struct {
	menu []Entry
	// homeKey designates the capability that routes an actor to the
	// primary dashboard; dashboardPath is also the zero-capability
	// fallback so landing-path resolution can never redirect-loop.
	homeKey       capability.Key
	dashboardPath string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHome overrides the home capability and its dashboard path.
func WithHome(key capability.Key, path string) Option {
	return func(r *Resolver) {
		r.homeKey = key
		r.dashboardPath = path
	}
}

// New constructs a resolver over the static menu definition.
func New(menu []Entry, opts ...Option) *Resolver {
	r := &Resolver{
		menu:          menu,
		homeKey:       capability.KeyViewDashboard,
		dashboardPath: "/dashboard",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FilterForActor returns the menu entries the actor may use, preserving the
// static definition order. Public entries are always kept; a nil actor keeps
// only those.
func (r *Resolver) FilterForActor(actor *capability.Actor) []Entry {
	visible := make([]Entry, 0, len(r.menu))
	for _, e := range r.menu {
		if e.Requirement.Satisfied(actor) {
			visible = append(visible, e)
		}
	}
	return visible
}

// DefaultLandingPath returns where the actor should land after login or after
// a denial. Holders of the home capability land on the dashboard; otherwise
// the first visible menu entry wins. An actor with nothing visible still gets
// the dashboard path — the route guard renders that as an access-denied view
// rather than redirecting again, which keeps zero-capability actors out of a
// redirect cycle.
func (r *Resolver) DefaultLandingPath(actor *capability.Actor) string {
	if actor.Has(r.homeKey) {
		return r.dashboardPath
	}
	if visible := r.FilterForActor(actor); len(visible) > 0 {
		return visible[0].Path
	}
	return r.dashboardPath
}
