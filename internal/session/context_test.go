package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetgate/internal/capability"
)

func TestContextLifecycle(t *testing.T) {
	t.Run("starts unauthenticated", func(t *testing.T) {
		c := NewContext()
		assert.Nil(t, c.Actor())
		assert.Empty(t, c.Email())
	})

	t.Run("create installs the actor", func(t *testing.T) {
		c := NewContext()
		c.Create(&capability.Actor{Email: "ops@fleet.example"})
		require.NotNil(t, c.Actor())
		assert.Equal(t, "ops@fleet.example", c.Email())
	})

	t.Run("clear drops the actor and bumps the generation", func(t *testing.T) {
		c := NewContext()
		c.Create(&capability.Actor{Email: "ops@fleet.example"})
		gen := c.Generation()
		c.Clear()
		assert.Nil(t, c.Actor())
		assert.NotEqual(t, gen, c.Generation())
	})
}

func TestReplaceBag(t *testing.T) {
	t.Run("replaces wholesale", func(t *testing.T) {
		c := NewContext()
		c.Create(&capability.Actor{
			Email:        "ops@fleet.example",
			Capabilities: capability.Bag{capability.KeyViewVehicles: true},
		})

		c.ReplaceBag(capability.Bag{capability.KeyViewOwners: true})

		actor := c.Actor()
		assert.False(t, actor.Has(capability.KeyViewVehicles), "old grants must not leak through a replace")
		assert.True(t, actor.Has(capability.KeyViewOwners))
	})

	t.Run("no-op on an unauthenticated session", func(t *testing.T) {
		c := NewContext()
		c.ReplaceBag(capability.Bag{capability.KeyViewVehicles: true})
		assert.Nil(t, c.Actor())
	})
}

func TestReplaceBagAt(t *testing.T) {
	t.Run("writes when the generation matches", func(t *testing.T) {
		c := NewContext()
		c.Create(&capability.Actor{Email: "ops@fleet.example"})
		gen := c.Generation()

		assert.True(t, c.ReplaceBagAt(gen, capability.Bag{capability.KeyViewVehicles: true}))
		assert.True(t, c.Actor().Has(capability.KeyViewVehicles))
	})

	t.Run("refresh racing a logout drops its write", func(t *testing.T) {
		c := NewContext()
		c.Create(&capability.Actor{Email: "ops@fleet.example"})
		gen := c.Generation()

		// Logout lands between the refresher's fetch and its write-back.
		c.Clear()

		assert.False(t, c.ReplaceBagAt(gen, capability.Bag{capability.KeyViewVehicles: true}))
		assert.Nil(t, c.Actor(), "cleared session must stay cleared")
	})

	t.Run("refresh racing a re-login drops its write", func(t *testing.T) {
		c := NewContext()
		c.Create(&capability.Actor{Email: "ops@fleet.example"})
		gen := c.Generation()

		c.Create(&capability.Actor{Email: "other@fleet.example"})

		assert.False(t, c.ReplaceBagAt(gen, capability.Bag{capability.KeyViewVehicles: true}))
		assert.False(t, c.Actor().Has(capability.KeyViewVehicles))
	})
}

func TestActorSnapshotIsolation(t *testing.T) {
	c := NewContext()
	c.Create(&capability.Actor{
		Email:        "ops@fleet.example",
		Capabilities: capability.Bag{capability.KeyViewVehicles: true},
	})

	snapshot := c.Actor()
	c.ReplaceBag(capability.Bag{})

	// The snapshot keeps the bag it was read with; the next read sees the
	// replacement. No reader ever sees a half-updated bag.
	assert.True(t, snapshot.Has(capability.KeyViewVehicles))
	assert.False(t, c.Actor().Has(capability.KeyViewVehicles))
}
