// Package routepolicy declares the route policy table for the fleet
// back-office and resolves request paths against it.
//
// Resolution is strictly first-match-wins over declaration order. There is no
// most-specific-match fallback: a path that satisfies the prefix test of two
// entries resolves to whichever was registered first. That makes registration
// order an authoring constraint — entries for nested routes (add, edit) must
// be declared before the general detail entry whose placeholder prefix also
// covers them. The ordering dependency is inherited behavior; do not "fix" it
// by switching to longest-match without auditing every registered route.
package routepolicy

// Entry binds one compiled path pattern to its access requirement.
type Entry struct {
	pattern     Pattern
	mode        MatchMode
	requirement Requirement
}

// NewEntry compiles pattern and attaches the requirement. The mode is ignored
// for patterns containing a placeholder, which always match by static prefix.
func NewEntry(pattern string, mode MatchMode, requirement Requirement) Entry {
	return Entry{
		pattern:     CompilePattern(pattern),
		mode:        mode,
		requirement: requirement,
	}
}

// Pattern returns the entry's compiled pattern.
func (e Entry) Pattern() Pattern {
	return e.pattern
}

// Requirement returns the entry's access requirement.
func (e Entry) Requirement() Requirement {
	return e.requirement
}

// Registry is the ordered route policy table. It is built once at startup and
// read-only afterwards.
type Registry struct {
	entries []Entry
}

// New builds a registry from entries in the given declaration order.
func New(entries ...Entry) *Registry {
	return &Registry{entries: entries}
}

// Resolve returns the first entry matching path, or false when no entry
// matches. Callers must treat no-match as deny-by-default; an undeclared
// route is never visible.
func (r *Registry) Resolve(path string) (Entry, bool) {
	for _, e := range r.entries {
		if e.pattern.matches(path, e.mode) {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns the table in declaration order for diagnostics and menu
// cross-checks. The slice is shared; callers must not mutate it.
func (r *Registry) Entries() []Entry {
	return r.entries
}
