package routepolicy

import "fleetgate/internal/capability"

// RequirementKind tags the single access-policy variant attached to a route.
// The legacy role-enum routes and the current capability routes went through
// the same migration squeeze: both are expressed as a Requirement and decided
// by the one Satisfied evaluator below, so there is exactly one enforcement
// path regardless of which vintage a route declaration is.
type RequirementKind int

const (
	// KindPublic marks a route anyone may enter, authenticated or not.
	KindPublic RequirementKind = iota
	// KindAnyCapability grants entry when the actor holds at least one of
	// the listed capabilities (OR semantics, deliberately not AND: a route
	// may be reachable via several different capabilities).
	KindAnyCapability
	// KindRole is the legacy variant: entry requires one of the listed
	// coarse roles. New routes must use KindAnyCapability.
	KindRole
)

// Requirement is the tagged-variant access policy for one route.
type Requirement struct {
	kind         RequirementKind
	capabilities []capability.Key
	roles        []capability.Role
}

// Public returns the requirement satisfied by everyone.
func Public() Requirement {
	return Requirement{kind: KindPublic}
}

// RequireAny builds a capability requirement with OR semantics. An empty key
// list degenerates to a public requirement, matching the registry invariant
// that an entry with no required capabilities is public.
func RequireAny(keys ...capability.Key) Requirement {
	if len(keys) == 0 {
		return Public()
	}
	return Requirement{kind: KindAnyCapability, capabilities: keys}
}

// RequireRole builds a legacy role requirement. An empty role list
// degenerates to public, mirroring RequireAny.
func RequireRole(roles ...capability.Role) Requirement {
	if len(roles) == 0 {
		return Public()
	}
	return Requirement{kind: KindRole, roles: roles}
}

// Kind returns the variant tag.
func (r Requirement) Kind() RequirementKind {
	return r.kind
}

// IsPublic reports whether the requirement admits everyone.
func (r Requirement) IsPublic() bool {
	return r.kind == KindPublic
}

// Capabilities returns the capability list for KindAnyCapability entries.
// The slice is shared; callers must not mutate it.
func (r Requirement) Capabilities() []capability.Key {
	return r.capabilities
}

// Satisfied is the canonical evaluator: it reports whether the actor meets
// the requirement. It never errors; a nil actor satisfies only public
// requirements (fail closed).
func (r Requirement) Satisfied(actor *capability.Actor) bool {
	switch r.kind {
	case KindPublic:
		return true
	case KindAnyCapability:
		return actor.HasAny(r.capabilities...)
	case KindRole:
		if actor == nil {
			return false
		}
		for _, role := range r.roles {
			if actor.Role == role {
				return true
			}
		}
		return false
	default:
		return false
	}
}
