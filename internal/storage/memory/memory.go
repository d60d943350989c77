// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"sync"

	"github.com/stardrift/tactical/internal/model"
	"github.com/stardrift/tactical/pkg/core"
)

// Backend stores mines and ships in memory. It is the default backend for
// local play and the substrate the engine tests run against.
type Backend struct {
	mines map[uint]*model.Mine
	ships map[uint]*model.Ship

	mineCounter uint
	shipCounter uint
	mu          sync.RWMutex
}

// New creates a new memory backend.
func New() *Backend {
	return &Backend{
		mines: make(map[uint]*model.Mine),
		ships: make(map[uint]*model.Ship),
	}
}

// Init initializes the backend.
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources.
func (b *Backend) Close() error {
	return nil
}

// AddMine persists a new mine and assigns its ID.
func (b *Backend) AddMine(m *model.Mine) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mineCounter++
	m.ID = b.mineCounter
	stored := *m
	b.mines[m.ID] = &stored
	return nil
}

// GetMine returns a copy of the mine with the given id.
func (b *Backend) GetMine(id uint) (model.Mine, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	m, ok := b.mines[id]
	if !ok {
		return model.Mine{}, false
	}
	return *m, true
}

// GetMineByChannel returns a copy of the live mine on the given channel.
func (b *Backend) GetMineByChannel(channel int) (model.Mine, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, m := range b.mines {
		if m.Channel == channel && m.IsActive {
			return *m, true
		}
	}
	return model.Mine{}, false
}

// UpdateMine commits a mutated mine.
func (b *Backend) UpdateMine(m *model.Mine) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.mines[m.ID]; !ok {
		return fmt.Errorf("mine %d: %w", m.ID, core.ErrNotFound)
	}
	stored := *m
	b.mines[m.ID] = &stored
	return nil
}

// LiveMines returns a snapshot of all active mines.
func (b *Backend) LiveMines() []model.Mine {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.Mine, 0, len(b.mines))
	for _, m := range b.mines {
		if m.IsActive {
			out = append(out, *m)
		}
	}
	return out
}

// CountLiveByPlayer returns how many active mines the player owns.
func (b *Backend) CountLiveByPlayer(playerID uint) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, m := range b.mines {
		if m.IsActive && m.OwnedBy(playerID) {
			count++
		}
	}
	return count
}

// ChannelInUse reports whether a live mine already holds the channel.
func (b *Backend) ChannelInUse(channel int) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, m := range b.mines {
		if m.Channel == channel && m.IsActive {
			return true
		}
	}
	return false
}

// AddShip persists a new ship and assigns its ID.
func (b *Backend) AddShip(s *model.Ship) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.shipCounter++
	s.ID = b.shipCounter
	stored := *s
	b.ships[s.ID] = &stored
	return nil
}

// GetShip returns a copy of the ship with the given id.
func (b *Backend) GetShip(id uint) (model.Ship, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, ok := b.ships[id]
	if !ok {
		return model.Ship{}, false
	}
	return *s, true
}

// UpdateShip commits a mutated ship.
func (b *Backend) UpdateShip(s *model.Ship) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.ships[s.ID]; !ok {
		return fmt.Errorf("ship %d: %w", s.ID, core.ErrNotFound)
	}
	stored := *s
	b.ships[s.ID] = &stored
	return nil
}

// Ships returns a snapshot of all ships.
func (b *Backend) Ships() []model.Ship {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.Ship, 0, len(b.ships))
	for _, s := range b.ships {
		out = append(out, *s)
	}
	return out
}
