package model

import (
	"time"

	"github.com/stardrift/tactical/pkg/core"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Player{},
	&Ship{},
	&Mine{},
	&BalanceParameter{},
	&BalanceChange{},
	&EnginePerformance{},
}

////////////////////////
// PLAYER & SHIP MODELS
////////////////////////

// Player is a registered player account. AI/neutral ordnance has no player.
type Player struct {
	gorm.Model
	Name string `json:"name" gorm:"size:64;uniqueIndex"`
}

func (*Player) TableName() string {
	return "players"
}

// Ship is the minimal tactical view of a player vessel: position, defenses
// and the capability flags the ordnance engine needs. The wider ship
// lifecycle (purchasing, cargo, propulsion) is owned elsewhere.
type Ship struct {
	gorm.Model
	PlayerID  uint   `json:"playerId" gorm:"index:idx_ships_player_id"`
	Player    Player `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:PlayerID;"`
	Name      string `json:"name" gorm:"size:127"`
	ShipClass string `json:"shipClass" gorm:"size:32"`

	PositionX float64 `json:"positionX"`
	PositionY float64 `json:"positionY"`
	SpeedX    float64 `json:"speedX"`
	SpeedY    float64 `json:"speedY"`

	ShieldCharge int `json:"shieldCharge"`
	HullPoints   int `json:"hullPoints"`

	HasZipper            bool `json:"hasZipper"`
	HasEmergencyTeleport bool `json:"hasEmergencyTeleport"`

	// LockedTargetID is the ship id of the current weapon lock, if any.
	LockedTargetID *uint `json:"lockedTargetId"`
}

func (*Ship) TableName() string {
	return "ships"
}

// Position returns the ship position as a plane point.
func (s *Ship) Position() core.Position {
	return core.Position{X: s.PositionX, Y: s.PositionY}
}

// SetPosition moves the ship to p.
func (s *Ship) SetPosition(p core.Position) {
	s.PositionX = p.X
	s.PositionY = p.Y
}

////////////////////////
// ORDNANCE MODELS
////////////////////////

// Mine is a laid mine. Channel is the owner's correlation tag, unique among
// live mines. Terminal transitions (explode, disarm) clear IsActive/IsArmed
// exactly once and never reverse.
type Mine struct {
	gorm.Model
	Channel int `json:"channel" gorm:"index:idx_mines_channel"`

	// PlayerID is nil for neutral or AI-laid mines.
	PlayerID *uint `json:"playerId" gorm:"index:idx_mines_player_id"`

	PositionX float64 `json:"positionX"`
	PositionY float64 `json:"positionY"`

	MineType core.MineType `json:"mineType"`

	IsActive  bool `json:"isActive" gorm:"index:idx_mines_is_active"`
	IsArmed   bool `json:"isArmed"`
	IsVisible bool `json:"isVisible"`

	DamagePotential int `json:"damagePotential"`

	ArmedAt    time.Time  `json:"armedAt"`
	ExplodedAt *time.Time `json:"explodedAt"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

func (*Mine) TableName() string {
	return "mines"
}

// Position returns the mine position as a plane point.
func (m *Mine) Position() core.Position {
	return core.Position{X: m.PositionX, Y: m.PositionY}
}

// OwnedBy reports whether the mine belongs to the given player.
func (m *Mine) OwnedBy(playerID uint) bool {
	return m.PlayerID != nil && *m.PlayerID == playerID
}

////////////////////////
// BALANCE MODELS
////////////////////////

// BalanceParameter is the persisted form of a tunable balance value.
// Definition metadata (type, range, default) lives in code; only the current
// value and category are stored.
type BalanceParameter struct {
	gorm.Model
	Key      string         `json:"key" gorm:"size:64;uniqueIndex"`
	Value    datatypes.JSON `json:"value"`
	Category string         `json:"category" gorm:"size:32;index:idx_balance_parameters_category"`
}

func (*BalanceParameter) TableName() string {
	return "balance_parameters"
}

// BalanceChange is one append-only history entry for a parameter write.
type BalanceChange struct {
	gorm.Model
	Key      string         `json:"key" gorm:"size:64;index:idx_balance_changes_key"`
	OldValue datatypes.JSON `json:"oldValue"`
	NewValue datatypes.JSON `json:"newValue"`
	Actor    string         `json:"actor" gorm:"size:64"`
}

func (*BalanceChange) TableName() string {
	return "balance_changes"
}

////////////////////////
// PERFORMANCE MODELS
////////////////////////

// EnginePerformance is a periodic snapshot of engine and scheduler health.
type EnginePerformance struct {
	Time time.Time `json:"time" gorm:"type:timestamptz;index:idx_engine_performances_time"`

	LiveMines    uint `json:"liveMines"`
	TrackedShips uint `json:"trackedShips"`

	JobsRun     uint64 `json:"jobsRun"`
	JobsFailed  uint64 `json:"jobsFailed"`
	JobsRetried uint64 `json:"jobsRetried"`
	RetryQueue  uint   `json:"retryQueue"`

	LastSweepDurationMs float32 `json:"lastSweepDurationMs"`
}

func (*EnginePerformance) TableName() string {
	return "engine_performances"
}
