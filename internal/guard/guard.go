// Package guard owns the hazard responses around a ship: the zipper mine
// sweep and the universe boundary teleports. Both mutate ships under the
// shared per-entity locks so they compose safely with the mine engine.
package guard

import (
	"log/slog"

	"github.com/stardrift/tactical/internal/balance"
	"github.com/stardrift/tactical/internal/cache"
	"github.com/stardrift/tactical/internal/random"
	"github.com/stardrift/tactical/internal/storage"
	"github.com/stardrift/tactical/pkg/core"
)

// Detonator triggers a live mine against a ship. Satisfied by the mine
// field engine.
type Detonator interface {
	TriggerMine(mineID, shipID uint) (core.DetonationResult, error)
}

// Dependencies holds all dependencies for the guard.
type Dependencies struct {
	Ships    storage.ShipStore
	Mines    storage.MineStore
	Ordnance Detonator
	Params   *balance.Store
	Rand     random.Source
	Locks    *cache.EntityLocks
	Logger   *slog.Logger
}

// Guard runs zipper sweeps and boundary enforcement.
type Guard struct {
	deps Dependencies
}

// NewGuard creates a new guard.
func NewGuard(deps Dependencies) *Guard {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Guard{deps: deps}
}
