package guard

import (
	"errors"
	"fmt"
	"sort"

	"github.com/stardrift/tactical/internal/balance"
	"github.com/stardrift/tactical/internal/geo"
	"github.com/stardrift/tactical/internal/model"
	"github.com/stardrift/tactical/pkg/core"
)

// FireZipper sweeps every live mine within zipper_range of the firing ship
// by detonating it against that ship. The sweep is deliberately
// indiscriminate: the firing ship absorbs every blast, including from its
// own mines, trading hull for a clean corridor. Mines are swept nearest
// first so a destroyed ship stops the log mid-field rather than at random.
func (g *Guard) FireZipper(shipID uint) (core.SweepResult, error) {
	ship, ok := g.deps.Ships.GetShip(shipID)
	if !ok {
		return core.SweepResult{}, fmt.Errorf("ship %d: %w", shipID, core.ErrNotFound)
	}
	if !ship.HasZipper {
		return core.SweepResult{}, fmt.Errorf("ship %d has no zipper: %w", shipID, core.ErrInvalidOperation)
	}

	origin := ship.Position()
	sweepRange := g.deps.Params.Float64(balance.KeyZipperRange)

	// snapshot, then order nearest first with the id as tiebreak
	type target struct {
		mine     model.Mine
		distance float64
	}
	var targets []target
	for _, mine := range g.deps.Mines.LiveMines() {
		d := geo.Distance(origin, mine.Position())
		if d <= sweepRange {
			targets = append(targets, target{mine: mine, distance: d})
		}
	}
	sort.Slice(targets, func(i, j int) bool {
		if targets[i].distance != targets[j].distance {
			return targets[i].distance < targets[j].distance
		}
		return targets[i].mine.ID < targets[j].mine.ID
	})

	result := core.SweepResult{ShipID: shipID}
	for _, tgt := range targets {
		det, err := g.deps.Ordnance.TriggerMine(tgt.mine.ID, shipID)
		if err != nil {
			// the mine went terminal between snapshot and trigger
			if errors.Is(err, core.ErrNotFound) {
				continue
			}
			return result, fmt.Errorf("sweeping mine %d: %w", tgt.mine.ID, err)
		}
		result.Triggered++
		result.TotalDamage += det.Damage
		result.Detonations = append(result.Detonations, det)
	}

	g.deps.Logger.Info("zipper fired",
		"shipId", shipID, "range", sweepRange,
		"triggered", result.Triggered, "totalDamage", result.TotalDamage)
	return result, nil
}
