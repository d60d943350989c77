// Package minefield owns the mine lifecycle: laying, field generation,
// detection, triggering, disarming and expiry. All terminal transitions are
// guarded check-then-set under a per-mine lock, so overlapping scheduler
// runs and racing player actions resolve each mine exactly once.
package minefield

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/stardrift/tactical/internal/balance"
	"github.com/stardrift/tactical/internal/cache"
	"github.com/stardrift/tactical/internal/channel"
	"github.com/stardrift/tactical/internal/model"
	"github.com/stardrift/tactical/internal/random"
	"github.com/stardrift/tactical/internal/storage"
	"github.com/stardrift/tactical/pkg/core"
)

// channel assignment bounds; channels are the player-facing correlation tag.
const (
	channelMin         = 1000
	channelMax         = 9999
	channelMaxAttempts = 50
)

// Dependencies holds all dependencies for the mine field engine.
type Dependencies struct {
	Mines  storage.MineStore
	Ships  storage.ShipStore
	Params *balance.Store
	Rand   random.Source
	Locks  *cache.EntityLocks
	Logger *slog.Logger

	// Events receives detonations for telemetry shipping. Optional; a
	// full feed drops the event rather than delaying the detonation.
	Events channel.Sender[core.DetonationResult]
}

// Engine is the mine field engine.
type Engine struct {
	deps Dependencies

	// layMu spans the channel draw and the insert, so two concurrent lays
	// cannot both claim the same free channel.
	layMu sync.Mutex
}

// NewEngine creates a new mine field engine.
func NewEngine(deps Dependencies) *Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Engine{deps: deps}
}

// LayOptions are the optional knobs for LayMine.
type LayOptions struct {
	// Damage overrides the random damage roll when > 0. The value is still
	// capped at the mine_damage_max balance parameter.
	Damage int
	// Visible controls passive scannability; nil defaults to true.
	Visible *bool
}

// LayMine creates a single armed mine at the given position, owned by the
// player flying the ship. The owner must be at fewer than max_mines live
// mines and the mine type must be a known class.
func (e *Engine) LayMine(ownerID, shipID uint, pos core.Position, mineType core.MineType, opts *LayOptions) (model.Mine, error) {
	if !mineType.Valid() {
		return model.Mine{}, fmt.Errorf("mine type %d: %w", mineType, core.ErrInvalidArgument)
	}

	ship, ok := e.deps.Ships.GetShip(shipID)
	if !ok {
		return model.Mine{}, fmt.Errorf("ship %d: %w", shipID, core.ErrNotFound)
	}
	if ship.PlayerID != ownerID {
		return model.Mine{}, fmt.Errorf("ship %d not flown by player %d: %w", shipID, ownerID, core.ErrNotFound)
	}

	maxMines := e.deps.Params.Int(balance.KeyMaxMines)
	if e.deps.Mines.CountLiveByPlayer(ownerID) >= maxMines {
		return model.Mine{}, fmt.Errorf("player %d at mine cap %d: %w", ownerID, maxMines, core.ErrLimitExceeded)
	}

	damageCap := e.deps.Params.Int(balance.KeyMineDamageMax)
	damage := 0
	if opts != nil && opts.Damage > 0 {
		damage = opts.Damage
	} else {
		damageMin := e.deps.Params.Int(balance.KeyMineDamageMin)
		// the two keys validate independently, so min can sit above max;
		// collapse the window instead of drawing a negative span
		if damageMin > damageCap {
			damageMin = damageCap
		}
		damage = damageMin + e.deps.Rand.IntN(damageCap-damageMin+1)
	}
	if damage > damageCap {
		damage = damageCap
	}

	visible := true
	if opts != nil && opts.Visible != nil {
		visible = *opts.Visible
	}

	e.layMu.Lock()
	defer e.layMu.Unlock()

	channel, err := e.assignChannel()
	if err != nil {
		return model.Mine{}, err
	}

	now := time.Now().UTC()
	mine := model.Mine{
		Channel:         channel,
		PlayerID:        &ownerID,
		PositionX:       pos.X,
		PositionY:       pos.Y,
		MineType:        mineType,
		IsActive:        true,
		IsArmed:         true,
		IsVisible:       visible,
		DamagePotential: damage,
		ArmedAt:         now,
	}

	if hours := e.deps.Params.Int(balance.KeyMineExpiryHours); hours > 0 {
		expires := now.Add(time.Duration(hours) * time.Hour)
		mine.ExpiresAt = &expires
	}

	if err := e.deps.Mines.AddMine(&mine); err != nil {
		return model.Mine{}, fmt.Errorf("persisting mine: %w", err)
	}

	e.deps.Logger.Info("mine laid",
		"mineId", mine.ID, "channel", mine.Channel, "type", mineType.String(),
		"owner", ownerID, "damage", damage)
	return mine, nil
}

// assignChannel draws random channels until one is free among live mines.
func (e *Engine) assignChannel() (int, error) {
	for i := 0; i < channelMaxAttempts; i++ {
		ch := channelMin + e.deps.Rand.IntN(channelMax-channelMin+1)
		if !e.deps.Mines.ChannelInUse(ch) {
			return ch, nil
		}
	}
	return 0, fmt.Errorf("no free mine channel after %d attempts: %w", channelMaxAttempts, core.ErrLimitExceeded)
}

// TriggerMine detonates an active, armed mine against the given ship.
// The transition to exploded is terminal; a mine that already detonated or
// was disarmed reports ErrNotFound and mutates nothing.
func (e *Engine) TriggerMine(mineID, shipID uint) (core.DetonationResult, error) {
	ship, ok := e.deps.Ships.GetShip(shipID)
	if !ok {
		return core.DetonationResult{}, fmt.Errorf("ship %d: %w", shipID, core.ErrNotFound)
	}

	unlock := e.deps.Locks.Lock("mine", mineID)
	defer unlock()

	mine, ok := e.deps.Mines.GetMine(mineID)
	if !ok || !mine.IsActive || !mine.IsArmed {
		return core.DetonationResult{}, fmt.Errorf("mine %d not live: %w", mineID, core.ErrNotFound)
	}

	return e.detonate(&mine, &ship)
}

// detonate applies the damage formula and commits the terminal transition.
// Callers hold the mine lock and have verified the mine is live.
func (e *Engine) detonate(mine *model.Mine, ship *model.Ship) (core.DetonationResult, error) {
	damage := e.rollDamage(mine)

	shieldDamage, hullDamage := 0, 0
	if ship != nil {
		unlockShip := e.deps.Locks.Lock("ship", ship.ID)
		current, ok := e.deps.Ships.GetShip(ship.ID)
		if ok {
			shieldDamage, hullDamage = applyDamage(&current, damage)
			if err := e.deps.Ships.UpdateShip(&current); err != nil {
				unlockShip()
				return core.DetonationResult{}, fmt.Errorf("applying damage to ship %d: %w", ship.ID, err)
			}
			*ship = current
		}
		unlockShip()
	}

	now := time.Now().UTC()
	mine.IsActive = false
	mine.IsArmed = false
	mine.ExplodedAt = &now
	if err := e.deps.Mines.UpdateMine(mine); err != nil {
		return core.DetonationResult{}, fmt.Errorf("recording detonation of mine %d: %w", mine.ID, err)
	}

	result := core.DetonationResult{
		MineID:       mine.ID,
		Channel:      mine.Channel,
		Type:         mine.MineType,
		Damage:       damage,
		ShieldDamage: shieldDamage,
		HullDamage:   hullDamage,
		ExplodedAt:   now,
	}

	if e.deps.Events != nil && !e.deps.Events.TrySend(result) {
		e.deps.Logger.Debug("detonation telemetry dropped, feed full",
			"mineId", mine.ID)
	}

	e.deps.Logger.Info("mine detonated",
		"mineId", mine.ID, "channel", mine.Channel, "type", mine.MineType.String(),
		"damage", damage)
	return result, nil
}

// rollDamage computes floor(potential * type modifier * uniform(0.8, 1.2)),
// minimum 1, except Decoy mines which always deal 0.
func (e *Engine) rollDamage(mine *model.Mine) int {
	if mine.MineType == core.MineDecoy {
		return 0
	}
	scaled := float64(mine.DamagePotential) * mine.MineType.DamageModifier() * e.deps.Rand.Uniform(0.8, 1.2)
	damage := int(math.Floor(scaled))
	if damage < 1 {
		damage = 1
	}
	return damage
}

// applyDamage deals damage shields-first and clamps both fields at zero.
func applyDamage(ship *model.Ship, damage int) (shieldDamage, hullDamage int) {
	shieldDamage = damage
	if ship.ShieldCharge < shieldDamage {
		shieldDamage = ship.ShieldCharge
	}
	hullDamage = damage - shieldDamage

	ship.ShieldCharge -= shieldDamage
	if ship.ShieldCharge < 0 {
		ship.ShieldCharge = 0
	}
	ship.HullPoints -= hullDamage
	if ship.HullPoints < 0 {
		ship.HullPoints = 0
	}
	return shieldDamage, hullDamage
}
