package capability

import "github.com/google/uuid"

// Role is the legacy coarse role enum that predates per-capability grants.
// Routes still carrying a role requirement are evaluated through the same
// policy abstraction as capability routes (see routepolicy.Requirement); the
// role survives here only until the migration to capability bags completes.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleExecutive Role = "executive"
	RoleDriver    Role = "driver"
)

// Actor is the authenticated session subject. HomeLocation is display-only
// and never feeds a policy decision.
type Actor struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Role         Role      `json:"role,omitempty"`
	HomeLocation string    `json:"home_location,omitempty"`
	Capabilities Bag       `json:"capabilities"`
}

// Has reports whether the actor holds k. Nil actors hold nothing.
func (a *Actor) Has(k Key) bool {
	if a == nil {
		return false
	}
	return a.Capabilities.Has(k)
}

// HasAny reports whether the actor holds at least one of keys.
func (a *Actor) HasAny(keys ...Key) bool {
	if a == nil {
		return false
	}
	return a.Capabilities.HasAny(keys...)
}

// HasAll reports whether the actor holds every one of keys.
func (a *Actor) HasAll(keys ...Key) bool {
	if a == nil {
		return false
	}
	return a.Capabilities.HasAll(keys...)
}
