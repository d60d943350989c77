// Package database owns the gorm connection for the engine: postgres when
// reachable, a local sqlite file otherwise, so tactical state survives a
// metrics or network outage.
package database

import (
	"database/sql"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stardrift/tactical/internal/model"
)

// Manager holds the active connection and its health state.
type Manager struct {
	DB             *gorm.DB
	IsValid        bool
	SqliteFilePath string
	Logger         zerolog.Logger

	sqlDB *sql.DB
	local bool
}

// NewManager creates an unconnected manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{Logger: log}
}

// Connect opens postgres, or falls back to sqlite when postgres is
// unreachable or fails its ping. An empty SqliteFilePath means the
// fallback runs in memory.
func (m *Manager) Connect() error {
	db, err := m.openPostgres()
	if err == nil {
		err = m.adopt(db)
	}
	if err != nil {
		m.Logger.Warn().Err(err).Msg("postgres unavailable, using local sqlite")
		db, err = m.openSqlite(m.SqliteFilePath)
		if err != nil {
			m.IsValid = false
			return fmt.Errorf("opening sqlite fallback: %w", err)
		}
		if err := m.adopt(db); err != nil {
			m.IsValid = false
			return fmt.Errorf("sqlite fallback unusable: %w", err)
		}
		m.local = true
	}

	m.IsValid = true
	if !m.local {
		m.sqlDB.SetMaxOpenConns(10)
	}
	m.Logger.Info().Bool("local", m.local).Msg("database connected")
	return nil
}

// adopt takes ownership of db after verifying it answers a ping.
func (m *Manager) adopt(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("accessing sql interface: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	m.DB = db
	m.sqlDB = sqlDB
	return nil
}

func (m *Manager) openPostgres() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		viper.GetString("db.host"),
		viper.GetString("db.port"),
		viper.GetString("db.username"),
		viper.GetString("db.password"),
		viper.GetString("db.database"),
	)
	m.Logger.Debug().Str("host", viper.GetString("db.host")).Msg("connecting to postgres")

	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

func (m *Manager) openSqlite(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
		m.Logger.Info().Msg("sqlite running in memory")
	} else {
		m.Logger.Info().Str("path", path).Msg("sqlite running on disk")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA user_version = 1;",
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}
	return db, nil
}

// Setup migrates the tactical schema.
func (m *Manager) Setup() error {
	m.Logger.Info().Msg("migrating schema")
	if err := m.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		m.IsValid = false
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}
