// internal/storage/storage.go
package storage

import "github.com/stardrift/tactical/internal/model"

// MineStore is the persistence surface the ordnance engine mutates through.
// Implementations return copies; callers mutate and commit via UpdateMine
// while holding the per-entity lock.
type MineStore interface {
	// AddMine persists a new mine and assigns its ID on the passed pointer.
	AddMine(m *model.Mine) error
	GetMine(id uint) (model.Mine, bool)
	GetMineByChannel(channel int) (model.Mine, bool)
	UpdateMine(m *model.Mine) error

	// LiveMines returns a snapshot of all active mines. Sweeps iterate the
	// snapshot taken at sweep start, never a live view.
	LiveMines() []model.Mine
	CountLiveByPlayer(playerID uint) int
	ChannelInUse(channel int) bool
}

// ShipStore is the minimal ship access the tactical engines need.
type ShipStore interface {
	AddShip(s *model.Ship) error
	GetShip(id uint) (model.Ship, bool)
	UpdateShip(s *model.Ship) error
	Ships() []model.Ship
}

// Backend is the interface all storage implementations must satisfy.
type Backend interface {
	Init() error
	Close() error

	MineStore
	ShipStore
}
