// Package session holds the client-side session state: the authenticated
// actor and its capability bag, plus the background refresher that keeps the
// bag in sync with the server-held source of truth.
package session

import (
	"sync"

	"fleetgate/internal/capability"
)

// Context owns the actor for one authenticated session. All bag mutations are
// atomic whole-value replacements: readers either see the previous bag or the
// next one, never a partial merge. The generation counter lets an in-flight
// refresh detect that the session was cleared or re-created underneath it and
// drop its write instead of repopulating stale capabilities.
type Context struct {
	mu         sync.RWMutex
	actor      *capability.Actor
	generation uint64
}

// NewContext returns an empty, unauthenticated session context.
func NewContext() *Context {
	return &Context{}
}

// Create installs the actor for a freshly authenticated session, replacing
// whatever was there before.
func (c *Context) Create(actor *capability.Actor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actor = actor
	c.generation++
}

// Actor returns a snapshot of the current actor, or nil when the session is
// unauthenticated. The snapshot shares the bag map, which is safe because
// bags are replaced, never mutated in place.
func (c *Context) Actor() *capability.Actor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.actor == nil {
		return nil
	}
	snapshot := *c.actor
	return &snapshot
}

// Email returns the stable identifier of the session actor, or "" when
// unauthenticated.
func (c *Context) Email() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.actor == nil {
		return ""
	}
	return c.actor.Email
}

// Generation returns the current session generation. Callers that intend to
// write back later (the refresher) capture it before their fetch.
func (c *Context) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// ReplaceBag swaps the actor's capability bag wholesale.
func (c *Context) ReplaceBag(bag capability.Bag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.actor == nil {
		return
	}
	c.actor.Capabilities = bag
}

// ReplaceBagAt swaps the bag only when the session generation still matches
// gen. It reports whether the write happened. A refresh that raced a logout
// or a re-login observes a generation bump and drops its write.
func (c *Context) ReplaceBagAt(gen uint64, bag capability.Bag) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.actor == nil || c.generation != gen {
		return false
	}
	c.actor.Capabilities = bag
	return true
}

// Clear drops the actor on logout. The generation bump invalidates any
// in-flight refresh write.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actor = nil
	c.generation++
}
