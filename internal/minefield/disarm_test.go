package minefield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stardrift/tactical/pkg/core"
)

func TestDisarmByOwnerAlwaysSucceeds(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		f := newTestFixture(t, seed)
		ship := f.addShip(t, 7, 0, 0)

		mine, err := f.engine.LayMine(7, ship.ID, core.Position{}, core.MineGravimetric, nil)
		require.NoError(t, err)

		result, err := f.engine.DisarmMine(mine.ID, 7, ship.ID)
		require.NoError(t, err)
		assert.True(t, result.Disarmed, "seed %d: owner disarm must never fail", seed)
		assert.True(t, result.OwnerBonus)
		assert.Nil(t, result.Detonation)

		dead, _ := f.backend.GetMine(mine.ID)
		assert.False(t, dead.IsActive)
		assert.Nil(t, dead.ExplodedAt)
	}
}

func TestDisarmByOtherPlayer(t *testing.T) {
	const trials = 2000

	f := newTestFixture(t, 42)
	owner := f.addShip(t, 7, 0, 0)

	succeeded, exploded := 0, 0
	for i := 0; i < trials; i++ {
		actor := f.addShip(t, 8, 0, 0)
		mine, err := f.engine.LayMine(7, owner.ID, core.Position{}, core.MineStandard, nil)
		require.NoError(t, err)

		result, err := f.engine.DisarmMine(mine.ID, 8, actor.ID)
		require.NoError(t, err)
		assert.False(t, result.OwnerBonus)

		switch {
		case result.Disarmed:
			succeeded++
		case result.Detonation != nil:
			exploded++
			dead, _ := f.backend.GetMine(mine.ID)
			assert.NotNil(t, dead.ExplodedAt)
		}

		// a failed attempt with no detonation leaves the mine live;
		// clear it so the owner never hits the cap
		if live, ok := f.backend.GetMine(mine.ID); ok && live.IsActive {
			_, err := f.engine.DisarmMine(mine.ID, 7, owner.ID)
			require.NoError(t, err)
		}
	}

	// Standard mine: success 0.6, explosion 0.4 x 0.3 = 0.12
	assert.InDelta(t, 0.6, float64(succeeded)/trials, 0.05)
	assert.InDelta(t, 0.12, float64(exploded)/trials, 0.03)
}

func TestDisarmDamagesAttemptingShip(t *testing.T) {
	// run seeds until one produces a fail-and-explode outcome
	for seed := int64(1); seed <= 200; seed++ {
		f := newTestFixture(t, seed)
		owner := f.addShip(t, 7, 0, 0)
		actor := f.addShip(t, 8, 0, 0)

		mine, err := f.engine.LayMine(7, owner.ID, core.Position{}, core.MineStandard, &LayOptions{Damage: 60})
		require.NoError(t, err)

		result, err := f.engine.DisarmMine(mine.ID, 8, actor.ID)
		require.NoError(t, err)
		if result.Detonation == nil {
			continue
		}

		after, _ := f.backend.GetShip(actor.ID)
		assert.Equal(t, 100-result.Detonation.ShieldDamage, after.ShieldCharge)
		assert.Equal(t, 100-result.Detonation.HullDamage, after.HullPoints)

		untouched, _ := f.backend.GetShip(owner.ID)
		assert.Equal(t, 100, untouched.ShieldCharge)
		assert.Equal(t, 100, untouched.HullPoints)
		return
	}
	t.Fatal("no seed produced a disarm failure explosion")
}

func TestDisarmDeadMine(t *testing.T) {
	f := newTestFixture(t, 1)
	ship := f.addShip(t, 7, 0, 0)

	mine, err := f.engine.LayMine(7, ship.ID, core.Position{}, core.MineStandard, nil)
	require.NoError(t, err)

	_, err = f.engine.DisarmMine(mine.ID, 7, ship.ID)
	require.NoError(t, err)

	_, err = f.engine.DisarmMine(mine.ID, 7, ship.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.engine.DisarmMine(999, 7, ship.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.engine.DisarmMine(mine.ID, 7, 999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDisarmByChannel(t *testing.T) {
	f := newTestFixture(t, 1)
	ship := f.addShip(t, 7, 0, 0)

	mine, err := f.engine.LayMine(7, ship.ID, core.Position{}, core.MineStandard, nil)
	require.NoError(t, err)

	result, err := f.engine.DisarmByChannel(mine.Channel, 7, ship.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, result.MineID)
	assert.True(t, result.Disarmed)

	_, err = f.engine.DisarmByChannel(mine.Channel, 7, ship.ID)
	assert.ErrorIs(t, err, core.ErrNotFound, "channels of dead mines do not resolve")
}
