package routepolicy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompilePattern(t *testing.T) {
	t.Run("root compiles to zero segments", func(t *testing.T) {
		p := CompilePattern("/")
		assert.False(t, p.HasPlaceholder())
		assert.Equal(t, "/", p.String())
	})

	t.Run("literal pattern has no static prefix", func(t *testing.T) {
		p := CompilePattern("/vehicles")
		assert.False(t, p.HasPlaceholder())
	})

	t.Run("placeholder pattern caches static prefix", func(t *testing.T) {
		p := CompilePattern("/vehicles/edit/:id")
		assert.True(t, p.HasPlaceholder())
		assert.Equal(t, "/vehicles/edit/", p.staticPrefix)
	})

	t.Run("leading placeholder yields bare slash prefix", func(t *testing.T) {
		p := CompilePattern("/:slug")
		assert.True(t, p.HasPlaceholder())
		assert.Equal(t, "/", p.staticPrefix)
	})
}

func TestPatternMatches(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		mode    MatchMode
		path    string
		want    bool
	}{
		{"root matches only root", "/", ModeExact, "/", true},
		{"root does not match other paths", "/", ModeExact, "/vehicles", false},
		{"root path never matches non-root patterns", "/vehicles", ModePrefix, "/", false},
		{"exact match equal", "/vehicles", ModeExact, "/vehicles", true},
		{"exact match rejects sub-path", "/vehicles", ModeExact, "/vehicles/7", false},
		{"prefix match accepts sub-path", "/auth", ModePrefix, "/auth/login", true},
		{"prefix match accepts equal path", "/auth", ModePrefix, "/auth", true},
		{"prefix match rejects sibling", "/auth", ModePrefix, "/settings", false},
		{"placeholder matches identifier", "/vehicles/:id", ModeExact, "/vehicles/42", true},
		{"placeholder matches deeper sub-path", "/vehicles/:id", ModeExact, "/vehicles/42/history", true},
		{"placeholder rejects bare prefix without segment", "/vehicles/:id", ModeExact, "/vehicles", false},
		{"placeholder with trailing literal still matches on prefix", "/vehicles/:id/edit", ModeExact, "/vehicles/42", true},
		{"nested placeholder prefix", "/vehicles/edit/:id", ModeExact, "/vehicles/edit/42", true},
		{"nested placeholder rejects other branch", "/vehicles/edit/:id", ModeExact, "/vehicles/add", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CompilePattern(tt.pattern)
			assert.Equal(t, tt.want, p.matches(tt.path, tt.mode))
		})
	}
}
