package minefield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stardrift/tactical/pkg/core"
)

func TestDetectMines(t *testing.T) {
	f := newTestFixture(t, 3)
	owner := f.addShip(t, 7, 0, 0)
	scanner := f.addShip(t, 8, 0, 0)

	near, err := f.engine.LayMine(7, owner.ID, core.Position{X: 100}, core.MineStandard, nil)
	require.NoError(t, err)
	far, err := f.engine.LayMine(7, owner.ID, core.Position{X: 4000}, core.MineStandard, nil)
	require.NoError(t, err)
	_, err = f.engine.LayMine(7, owner.ID, core.Position{X: 50000}, core.MineStandard, nil)
	require.NoError(t, err)

	// run scans until both in-range mines show up in one pass
	for i := 0; i < 200; i++ {
		found, err := f.engine.DetectMines(scanner.ID, 5000, nil)
		require.NoError(t, err)

		for _, d := range found {
			assert.LessOrEqual(t, d.Distance, 5000.0)
		}
		for j := 1; j < len(found); j++ {
			assert.LessOrEqual(t, found[j-1].Distance, found[j].Distance, "results sorted by distance")
		}

		if len(found) == 2 {
			assert.Equal(t, near.ID, found[0].MineID)
			assert.Equal(t, far.ID, found[1].MineID)
			assert.Greater(t, found[0].Confidence, found[1].Confidence,
				"closer mine must scan with higher confidence")
			return
		}
	}
	t.Fatal("200 scans never reported both in-range mines")
}

func TestDetectMinesSkipsHiddenAndDead(t *testing.T) {
	f := newTestFixture(t, 3)
	owner := f.addShip(t, 7, 0, 0)
	scanner := f.addShip(t, 8, 0, 0)

	hiddenFlag := false
	hidden, err := f.engine.LayMine(7, owner.ID, core.Position{X: 10}, core.MineStandard, &LayOptions{Visible: &hiddenFlag})
	require.NoError(t, err)
	disarmed, err := f.engine.LayMine(7, owner.ID, core.Position{X: 20}, core.MineStandard, nil)
	require.NoError(t, err)
	_, err = f.engine.DisarmMine(disarmed.ID, 7, owner.ID)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		found, err := f.engine.DetectMines(scanner.ID, 5000, nil)
		require.NoError(t, err)
		for _, d := range found {
			assert.NotEqual(t, hidden.ID, d.MineID, "hidden mines never scan")
			assert.NotEqual(t, disarmed.ID, d.MineID, "dead mines never scan")
		}
	}
}

func TestDetectMinesTypeFilter(t *testing.T) {
	f := newTestFixture(t, 3)
	owner := f.addShip(t, 7, 0, 0)
	scanner := f.addShip(t, 8, 0, 0)

	_, err := f.engine.LayMine(7, owner.ID, core.Position{X: 10}, core.MineStandard, nil)
	require.NoError(t, err)
	_, err = f.engine.LayMine(7, owner.ID, core.Position{X: 20}, core.MineThermal, nil)
	require.NoError(t, err)

	filter := core.MineThermal
	for i := 0; i < 100; i++ {
		found, err := f.engine.DetectMines(scanner.ID, 5000, &filter)
		require.NoError(t, err)
		for _, d := range found {
			assert.Equal(t, core.MineThermal, d.Type)
		}
	}

	bad := core.MineType(99)
	_, err = f.engine.DetectMines(scanner.ID, 5000, &bad)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = f.engine.DetectMines(999, 5000, nil)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDetectionProbability(t *testing.T) {
	// point blank standard mine, fighter scanner: 0.8 x 1 x 1 x 1
	assert.InDelta(t, 0.8, detectionProbability(0, 1000, core.MineStandard, 1.0), 1e-9)

	// at the edge of the range the base term hits zero, floor applies
	assert.Equal(t, detectMinP, detectionProbability(1000, 1000, core.MineStandard, 1.0))

	// stealth mines are much harder to see at every distance
	standard := detectionProbability(500, 1000, core.MineStandard, 1.0)
	stealth := detectionProbability(500, 1000, core.MineStealth, 1.0)
	assert.Less(t, stealth, standard)

	// decoy close to a scout caps at 1.0: 0.8 x 1.2 x 1.25 = 1.2
	assert.Equal(t, detectMaxP, detectionProbability(0, 1000, core.MineDecoy, 1.25))

	// monotone in distance
	prev := 2.0
	for d := 0.0; d <= 1000; d += 100 {
		p := detectionProbability(d, 1000, core.MineStandard, 1.0)
		assert.LessOrEqual(t, p, prev)
		prev = p
	}
}
