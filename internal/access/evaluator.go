// Package access decides whether an actor may enter a path. Every function
// here is fail-closed: missing data (no actor, no matching policy entry)
// resolves to denial, never to access, and nothing in this package panics or
// returns an error.
package access

import (
	"strings"

	"fleetgate/internal/capability"
	"fleetgate/internal/routepolicy"
)

// Evaluator answers access questions against a route policy registry.
type Evaluator struct {
	registry *routepolicy.Registry
	// publicAuthPrefix marks the authentication entry routes (login,
	// callback) as public even when the registry has no entry for them,
	// so a broken registry cannot lock actors out of logging in.
	publicAuthPrefix string
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithPublicAuthPrefix overrides the designated public auth prefix.
func WithPublicAuthPrefix(prefix string) Option {
	return func(e *Evaluator) {
		e.publicAuthPrefix = prefix
	}
}

// New constructs an evaluator over the given registry.
func New(registry *routepolicy.Registry, opts ...Option) *Evaluator {
	e := &Evaluator{
		registry:         registry,
		publicAuthPrefix: "/auth",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsAuthRequired reports whether entering path requires an authenticated
// actor. The literal root and the public auth prefix are explicitly public
// regardless of registry contents. A path with no registry entry at all also
// requires authentication: an undeclared route must never present itself as
// public.
func (e *Evaluator) IsAuthRequired(path string) bool {
	if path == "/" || e.isPublicAuthPath(path) {
		return false
	}
	entry, ok := e.registry.Resolve(path)
	if !ok {
		return true
	}
	return !entry.Requirement().IsPublic()
}

// CheckAccess reports whether actor may enter path. A nil actor is denied
// outright; a path with no policy entry is denied for every actor; a public
// entry admits everyone; otherwise the entry's requirement decides (OR
// semantics over the listed capabilities).
func (e *Evaluator) CheckAccess(path string, actor *capability.Actor) bool {
	if actor == nil {
		return false
	}
	entry, ok := e.registry.Resolve(path)
	if !ok {
		return false
	}
	return entry.Requirement().Satisfied(actor)
}

func (e *Evaluator) isPublicAuthPath(path string) bool {
	if e.publicAuthPrefix == "" {
		return false
	}
	return path == e.publicAuthPrefix || strings.HasPrefix(path, e.publicAuthPrefix+"/")
}

// HasAny reports whether actor holds at least one of keys. Call sites
// needing AND semantics use HasAll; route matching itself always uses OR.
func HasAny(actor *capability.Actor, keys ...capability.Key) bool {
	return actor.HasAny(keys...)
}

// HasAll reports whether actor holds every one of keys, for actions gated on
// multiple simultaneous capabilities.
func HasAll(actor *capability.Actor, keys ...capability.Key) bool {
	if actor == nil {
		return false
	}
	return actor.HasAll(keys...)
}
