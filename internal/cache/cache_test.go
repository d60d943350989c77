package cache

import (
	"sync"
	"testing"

	"github.com/stardrift/tactical/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestEntityCache_AddAndGet(t *testing.T) {
	c := NewEntityCache()

	ship := model.Ship{Name: "Vigilant"}
	ship.ID = 7
	c.AddShip(ship)

	got, ok := c.GetShip(7)
	assert.True(t, ok)
	assert.Equal(t, "Vigilant", got.Name)

	_, ok = c.GetShip(8)
	assert.False(t, ok)
}

func TestEntityCache_RemoveMine(t *testing.T) {
	c := NewEntityCache()

	mine := model.Mine{Channel: 4242}
	mine.ID = 3
	c.AddMine(mine)

	_, ok := c.GetMine(3)
	assert.True(t, ok)

	c.RemoveMine(3)
	_, ok = c.GetMine(3)
	assert.False(t, ok)
}

func TestEntityCache_Reset(t *testing.T) {
	c := NewEntityCache()
	c.AddShip(model.Ship{})
	c.AddMine(model.Mine{})

	c.Reset()

	assert.Empty(t, c.Ships)
	assert.Empty(t, c.Mines)
}

func TestEntityLocks_SerializesSameEntity(t *testing.T) {
	l := NewEntityLocks()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("mine", 1)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("expected 50 serialized increments, got %d", counter)
	}
}

func TestEntityLocks_DistinctEntitiesIndependent(t *testing.T) {
	l := NewEntityLocks()

	unlockMine := l.Lock("mine", 1)
	defer unlockMine()

	// A different entity's lock must not block.
	done := make(chan struct{})
	go func() {
		unlock := l.Lock("ship", 1)
		unlock()
		close(done)
	}()
	<-done
}
