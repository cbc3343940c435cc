package routepolicy

import "strings"

// MatchMode selects the comparison applied to patterns without a placeholder.
type MatchMode int

const (
	// ModeExact requires string equality with the request path.
	ModeExact MatchMode = iota
	// ModePrefix requires the request path to start with the pattern.
	ModePrefix
)

type segmentKind int

const (
	segLiteral segmentKind = iota
	segPlaceholder
)

// segment is one compiled path segment: either a fixed literal or a
// placeholder standing in for a dynamic identifier (":id" style).
type segment struct {
	kind    segmentKind
	literal string
}

// Pattern is a path pattern compiled once at registry construction so that
// per-request matching never re-parses the pattern string.
type Pattern struct {
	raw      string
	segments []segment
	// staticPrefix caches the literal run up to the first placeholder,
	// including a trailing slash, e.g. "/vehicles/edit/" for
	// "/vehicles/edit/:id". Empty when the pattern has no placeholder.
	staticPrefix string
}

// CompilePattern parses a pattern such as "/vehicles/:id/edit" into its
// segment form. Placeholder segments start with ':'. The root pattern "/"
// compiles to zero segments.
func CompilePattern(raw string) Pattern {
	p := Pattern{raw: raw}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return p
	}
	var literals []string
	sawPlaceholder := false
	for _, part := range strings.Split(trimmed, "/") {
		if strings.HasPrefix(part, ":") {
			p.segments = append(p.segments, segment{kind: segPlaceholder, literal: strings.TrimPrefix(part, ":")})
			sawPlaceholder = true
			continue
		}
		p.segments = append(p.segments, segment{kind: segLiteral, literal: part})
		if !sawPlaceholder {
			literals = append(literals, part)
		}
	}
	if sawPlaceholder {
		p.staticPrefix = "/" + strings.Join(literals, "/") + "/"
	}
	return p
}

// String returns the original pattern text.
func (p Pattern) String() string {
	return p.raw
}

// HasPlaceholder reports whether the pattern carries a dynamic segment.
func (p Pattern) HasPlaceholder() bool {
	return p.staticPrefix != ""
}

// matches applies the spec'd matching rules for a single pattern:
//
//   - The root pattern "/" matches only the literal root path.
//   - A pattern with a placeholder matches any path starting with its static
//     prefix. This intentionally also matches deeper sub-paths (an edit
//     sub-route nests under the detail route's prefix), which is why more
//     specific entries must be registered first.
//   - Otherwise the match mode decides: exact equality or string prefix.
//
// The request path must be normalized: no query string, no trailing slash
// beyond the bare root.
func (p Pattern) matches(path string, mode MatchMode) bool {
	if p.raw == "/" {
		return path == "/"
	}
	if path == "/" {
		return false
	}
	if p.HasPlaceholder() {
		return strings.HasPrefix(path, p.staticPrefix)
	}
	if mode == ModePrefix {
		return strings.HasPrefix(path, p.raw)
	}
	return path == p.raw
}
