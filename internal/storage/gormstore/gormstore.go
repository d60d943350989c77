// Package gormstore implements the storage.Backend interface on a GORM
// database handle (postgres in production, sqlite as the local fallback).
// Reads are served from the entity cache where possible; every write goes
// through to the database.
package gormstore

import (
	"fmt"

	"github.com/stardrift/tactical/internal/cache"
	"github.com/stardrift/tactical/internal/model"

	"gorm.io/gorm"
)

// Backend persists mines and ships via GORM.
type Backend struct {
	db    *gorm.DB
	cache *cache.EntityCache
}

// New creates a new GORM storage backend.
func New(db *gorm.DB, entityCache *cache.EntityCache) *Backend {
	return &Backend{
		db:    db,
		cache: entityCache,
	}
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close is a no-op; the database manager owns the connection.
func (b *Backend) Close() error {
	return nil
}

// AddMine persists a new mine; GORM assigns the ID on the passed pointer.
func (b *Backend) AddMine(m *model.Mine) error {
	if err := b.db.Create(m).Error; err != nil {
		return fmt.Errorf("creating mine: %w", err)
	}
	b.cache.AddMine(*m)
	return nil
}

// GetMine returns the mine with the given id, from cache when possible.
func (b *Backend) GetMine(id uint) (model.Mine, bool) {
	if m, ok := b.cache.GetMine(id); ok {
		return m, true
	}

	var m model.Mine
	err := b.db.First(&m, id).Error
	if err != nil {
		return model.Mine{}, false
	}
	b.cache.AddMine(m)
	return m, true
}

// GetMineByChannel returns the live mine on the given channel.
func (b *Backend) GetMineByChannel(channel int) (model.Mine, bool) {
	var m model.Mine
	err := b.db.Where("channel = ? AND is_active = ?", channel, true).First(&m).Error
	if err != nil {
		return model.Mine{}, false
	}
	return m, true
}

// UpdateMine commits a mutated mine and refreshes the cache. Terminal mines
// are evicted; nothing reads them again.
func (b *Backend) UpdateMine(m *model.Mine) error {
	res := b.db.Save(m)
	if res.Error != nil {
		return fmt.Errorf("updating mine %d: %w", m.ID, res.Error)
	}
	if m.IsActive {
		b.cache.AddMine(*m)
	} else {
		b.cache.RemoveMine(m.ID)
	}
	return nil
}

// LiveMines returns all active mines.
func (b *Backend) LiveMines() []model.Mine {
	var mines []model.Mine
	b.db.Where("is_active = ?", true).Find(&mines)
	return mines
}

// CountLiveByPlayer returns how many active mines the player owns.
func (b *Backend) CountLiveByPlayer(playerID uint) int {
	var count int64
	b.db.Model(&model.Mine{}).
		Where("player_id = ? AND is_active = ?", playerID, true).
		Count(&count)
	return int(count)
}

// ChannelInUse reports whether a live mine already holds the channel.
func (b *Backend) ChannelInUse(channel int) bool {
	var count int64
	b.db.Model(&model.Mine{}).
		Where("channel = ? AND is_active = ?", channel, true).
		Count(&count)
	return count > 0
}

// AddShip persists a new ship.
func (b *Backend) AddShip(s *model.Ship) error {
	if err := b.db.Create(s).Error; err != nil {
		return fmt.Errorf("creating ship: %w", err)
	}
	b.cache.AddShip(*s)
	return nil
}

// GetShip returns the ship with the given id, from cache when possible.
func (b *Backend) GetShip(id uint) (model.Ship, bool) {
	if s, ok := b.cache.GetShip(id); ok {
		return s, true
	}

	var s model.Ship
	if err := b.db.First(&s, id).Error; err != nil {
		return model.Ship{}, false
	}
	b.cache.AddShip(s)
	return s, true
}

// UpdateShip commits a mutated ship and refreshes the cache.
func (b *Backend) UpdateShip(s *model.Ship) error {
	if err := b.db.Save(s).Error; err != nil {
		return fmt.Errorf("updating ship %d: %w", s.ID, err)
	}
	b.cache.AddShip(*s)
	return nil
}

// Ships returns all ships.
func (b *Backend) Ships() []model.Ship {
	var ships []model.Ship
	b.db.Find(&ships)
	return ships
}
