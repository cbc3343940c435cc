package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_InMemoryStore_AppendAndRecent(t *testing.T) {
	store := NewInMemoryStore()
	ctx := t.Context()

	for i, kind := range []EventKind{EventAccessGranted, EventAccessDenied, EventLoginRedirect} {
		require.NoError(t, store.Append(ctx, Event{
			Kind:      kind,
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
			Path:      "/vehicles",
		}))
	}

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	last, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, EventAccessDenied, last[0].Kind)
	assert.Equal(t, EventLoginRedirect, last[1].Kind)
}

func Test_DecodeEvent(t *testing.T) {
	t.Run("round trips a published payload", func(t *testing.T) {
		event, err := decodeEvent([]byte(`{"kind":"access_denied","timestamp":"2026-08-30T10:00:00Z","path":"/owners","actor_email":"viewer@fleet.example"}`))
		require.NoError(t, err)
		assert.Equal(t, EventAccessDenied, event.Kind)
		assert.Equal(t, "/owners", event.Path)
		assert.Equal(t, "viewer@fleet.example", event.ActorEmail)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		_, err := decodeEvent([]byte(`{not json`))
		assert.Error(t, err)
	})

	t.Run("rejects a payload without a kind", func(t *testing.T) {
		_, err := decodeEvent([]byte(`{"path":"/owners"}`))
		assert.Error(t, err)
	})
}
