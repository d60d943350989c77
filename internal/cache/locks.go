package cache

import (
	"fmt"
	"sync"
)

// EntityLocks hands out one mutex per entity so overlapping scheduler runs
// serialize mutations of a single mine or ship instead of blocking globally.
// Lock entries are never reclaimed; entity ids are dense and terminal
// entities stop being locked, so growth is bounded by the live set.
type EntityLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEntityLocks() *EntityLocks {
	return &EntityLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the mutex for the given entity and returns its unlock func.
func (l *EntityLocks) Lock(kind string, id uint) func() {
	key := fmt.Sprintf("%s/%d", kind, id)

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
