package guard

import (
	"fmt"

	"github.com/stardrift/tactical/internal/balance"
	"github.com/stardrift/tactical/internal/geo"
	"github.com/stardrift/tactical/internal/model"
	"github.com/stardrift/tactical/pkg/core"
)

// emergencyDamageFactor scales the boundary teleport damage for a
// voluntary emergency jump.
const emergencyDamageFactor = 2

// CheckBoundary pulls a ship back inside the universe if it has drifted
// past the edge. The forced teleport deals hull damage directly, ignoring
// shields, kills the ship's velocity and drops any target lock. Ships
// inside the boundary are untouched.
func (g *Guard) CheckBoundary(shipID uint) (core.TeleportResult, error) {
	unlock := g.deps.Locks.Lock("ship", shipID)
	defer unlock()

	ship, ok := g.deps.Ships.GetShip(shipID)
	if !ok {
		return core.TeleportResult{}, fmt.Errorf("ship %d: %w", shipID, core.ErrNotFound)
	}

	bounds := geo.NewBounds(g.deps.Params.Float64(balance.KeyUniverseMax))
	pos := ship.Position()
	if bounds.Contains(pos) {
		return core.TeleportResult{Teleported: false, Position: pos}, nil
	}

	margin := g.deps.Params.Float64(balance.KeyBoundaryMargin)
	clamped := bounds.Clamp(pos, margin)
	damage := g.deps.Params.Int(balance.KeyTeleportDamage)

	// the X axis wins the message when both axes are out
	axis := "Y"
	if pos.X > bounds.Max() || pos.X < -bounds.Max() {
		axis = "X"
	}

	if err := g.relocate(&ship, clamped, damage); err != nil {
		return core.TeleportResult{}, err
	}

	result := core.TeleportResult{
		Teleported: true,
		Position:   clamped,
		HullDamage: damage,
		Message:    fmt.Sprintf("boundary breach on %s axis, emergency teleport to (%.0f, %.0f)", axis, clamped.X, clamped.Y),
	}
	g.deps.Logger.Warn("ship breached universe boundary",
		"shipId", shipID, "axis", axis,
		"from", pos, "to", clamped, "hullDamage", damage)
	return result, nil
}

// CheckAllShips runs the boundary check over every tracked ship and
// returns how many were teleported back. Used by the periodic sweep job.
func (g *Guard) CheckAllShips() (int, error) {
	teleported := 0
	for _, ship := range g.deps.Ships.Ships() {
		result, err := g.CheckBoundary(ship.ID)
		if err != nil {
			return teleported, err
		}
		if result.Teleported {
			teleported++
		}
	}
	return teleported, nil
}

// EmergencyTeleport performs a voluntary jump to the given target, or to a
// random in-bounds position when target is nil. The jump always happens
// and always costs double the boundary teleport damage, straight off the
// hull.
func (g *Guard) EmergencyTeleport(shipID uint, target *core.Position) (core.TeleportResult, error) {
	unlock := g.deps.Locks.Lock("ship", shipID)
	defer unlock()

	ship, ok := g.deps.Ships.GetShip(shipID)
	if !ok {
		return core.TeleportResult{}, fmt.Errorf("ship %d: %w", shipID, core.ErrNotFound)
	}
	if !ship.HasEmergencyTeleport {
		return core.TeleportResult{}, fmt.Errorf("ship %d has no emergency teleport: %w", shipID, core.ErrInvalidOperation)
	}

	bounds := geo.NewBounds(g.deps.Params.Float64(balance.KeyUniverseMax))
	margin := g.deps.Params.Float64(balance.KeyBoundaryMargin)

	var dest core.Position
	if target != nil {
		if !bounds.Contains(*target) {
			return core.TeleportResult{}, fmt.Errorf("target (%v, %v) outside universe: %w", target.X, target.Y, core.ErrInvalidArgument)
		}
		dest = *target
	} else {
		safe := bounds.Max() - margin
		dest = core.Position{
			X: g.deps.Rand.Uniform(-safe, safe),
			Y: g.deps.Rand.Uniform(-safe, safe),
		}
	}

	damage := emergencyDamageFactor * g.deps.Params.Int(balance.KeyTeleportDamage)
	if err := g.relocate(&ship, dest, damage); err != nil {
		return core.TeleportResult{}, err
	}

	result := core.TeleportResult{
		Teleported: true,
		Position:   dest,
		HullDamage: damage,
		Message:    fmt.Sprintf("emergency teleport to (%.0f, %.0f)", dest.X, dest.Y),
	}
	g.deps.Logger.Info("emergency teleport",
		"shipId", shipID, "to", dest, "hullDamage", damage)
	return result, nil
}

// relocate moves a ship, applies hull-only damage and resets its motion
// state. Callers hold the ship lock.
func (g *Guard) relocate(ship *model.Ship, dest core.Position, hullDamage int) error {
	ship.SetPosition(dest)
	ship.SpeedX = 0
	ship.SpeedY = 0
	ship.LockedTargetID = nil
	ship.HullPoints -= hullDamage
	if ship.HullPoints < 0 {
		ship.HullPoints = 0
	}
	if err := g.deps.Ships.UpdateShip(ship); err != nil {
		return fmt.Errorf("relocating ship %d: %w", ship.ID, err)
	}
	return nil
}
