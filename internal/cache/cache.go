package cache

import (
	"sync"

	"github.com/stardrift/tactical/internal/model"
)

// EntityCache caches ships and mines when they are created to avoid
// subsequent db reads. Latency in the tactical paths is critical; boundary
// sweeps touch every ship every tick.
type EntityCache struct {
	m     sync.Mutex
	Ships map[uint]model.Ship
	Mines map[uint]model.Mine
}

func NewEntityCache() *EntityCache {
	return &EntityCache{
		m:     sync.Mutex{},
		Ships: make(map[uint]model.Ship),
		Mines: make(map[uint]model.Mine),
	}
}

func (c *EntityCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Ships = make(map[uint]model.Ship)
	c.Mines = make(map[uint]model.Mine)
}

func (c *EntityCache) GetShip(id uint) (model.Ship, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if s, ok := c.Ships[id]; ok {
		return s, true
	}
	return model.Ship{}, false
}

func (c *EntityCache) GetMine(id uint) (model.Mine, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if m, ok := c.Mines[id]; ok {
		return m, true
	}
	return model.Mine{}, false
}

func (c *EntityCache) AddShip(s model.Ship) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Ships[s.ID] = s
}

func (c *EntityCache) AddMine(m model.Mine) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Mines[m.ID] = m
}

func (c *EntityCache) RemoveMine(id uint) {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.Mines, id)
}
