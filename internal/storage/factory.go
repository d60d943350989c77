// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/stardrift/tactical/internal/cache"
	"github.com/stardrift/tactical/internal/storage/gormstore"
	"github.com/stardrift/tactical/internal/storage/memory"

	"gorm.io/gorm"
)

// NewBackend creates a storage backend based on configuration. The gorm
// backend requires a connected database handle; the memory backend ignores it.
func NewBackend(storageType string, db *gorm.DB, entityCache *cache.EntityCache) (Backend, error) {
	switch storageType {
	case "gorm", "postgres", "sqlite":
		if db == nil {
			return nil, fmt.Errorf("storage type %q requires a database connection", storageType)
		}
		return gormstore.New(db, entityCache), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}
