package minefield

import (
	"fmt"

	"github.com/stardrift/tactical/pkg/core"
)

// non-owner disarm odds: base success chance scaled by the mine type's
// disarm modifier, and an independent explosion chance on failure.
const (
	disarmBaseChance     = 0.6
	disarmFailExplosionP = 0.3
)

// DisarmMine attempts to defuse a live mine. The owner always succeeds and
// nothing detonates. Anyone else succeeds with probability
// 0.6 × type modifier; a failed attempt has an independent 30% chance of
// setting the mine off against the attempting ship.
func (e *Engine) DisarmMine(mineID, actorPlayerID, actorShipID uint) (core.DisarmResult, error) {
	ship, ok := e.deps.Ships.GetShip(actorShipID)
	if !ok {
		return core.DisarmResult{}, fmt.Errorf("ship %d: %w", actorShipID, core.ErrNotFound)
	}

	unlock := e.deps.Locks.Lock("mine", mineID)
	defer unlock()

	mine, ok := e.deps.Mines.GetMine(mineID)
	if !ok || !mine.IsActive {
		return core.DisarmResult{}, fmt.Errorf("mine %d not live: %w", mineID, core.ErrNotFound)
	}

	if mine.OwnedBy(actorPlayerID) {
		mine.IsActive = false
		mine.IsArmed = false
		if err := e.deps.Mines.UpdateMine(&mine); err != nil {
			return core.DisarmResult{}, fmt.Errorf("recording disarm of mine %d: %w", mineID, err)
		}
		e.deps.Logger.Info("mine disarmed by owner", "mineId", mineID, "channel", mine.Channel)
		return core.DisarmResult{MineID: mineID, Disarmed: true, OwnerBonus: true}, nil
	}

	if e.deps.Rand.Chance(disarmBaseChance * mine.MineType.DisarmModifier()) {
		mine.IsActive = false
		mine.IsArmed = false
		if err := e.deps.Mines.UpdateMine(&mine); err != nil {
			return core.DisarmResult{}, fmt.Errorf("recording disarm of mine %d: %w", mineID, err)
		}
		e.deps.Logger.Info("mine disarmed", "mineId", mineID, "channel", mine.Channel, "actor", actorPlayerID)
		return core.DisarmResult{MineID: mineID, Disarmed: true}, nil
	}

	if e.deps.Rand.Chance(disarmFailExplosionP) {
		det, err := e.detonate(&mine, &ship)
		if err != nil {
			return core.DisarmResult{}, err
		}
		e.deps.Logger.Info("disarm failed, mine detonated",
			"mineId", mineID, "actor", actorPlayerID, "damage", det.Damage)
		return core.DisarmResult{MineID: mineID, Disarmed: false, Detonation: &det}, nil
	}

	e.deps.Logger.Debug("disarm failed", "mineId", mineID, "actor", actorPlayerID)
	return core.DisarmResult{MineID: mineID, Disarmed: false}, nil
}

// DisarmByChannel resolves a live mine by its channel tag and disarms it.
func (e *Engine) DisarmByChannel(channel int, actorPlayerID, actorShipID uint) (core.DisarmResult, error) {
	mine, ok := e.deps.Mines.GetMineByChannel(channel)
	if !ok {
		return core.DisarmResult{}, fmt.Errorf("channel %d: %w", channel, core.ErrNotFound)
	}
	return e.DisarmMine(mine.ID, actorPlayerID, actorShipID)
}
