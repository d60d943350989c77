// pkg/core/results.go
package core

import "time"

// DetectedMine is a single scan hit. Confidence is the probability the scan
// used to decide whether to report the mine; it is recomputed per scan.
type DetectedMine struct {
	MineID     uint     `json:"mineId"`
	Channel    int      `json:"channel"`
	Type       MineType `json:"type"`
	TypeName   string   `json:"typeName"`
	Position   Position `json:"position"`
	Distance   float64  `json:"distance"`
	Confidence float64  `json:"confidence"`
}

// DetonationResult describes one mine explosion and the damage it dealt.
type DetonationResult struct {
	MineID       uint      `json:"mineId"`
	Channel      int       `json:"channel"`
	Type         MineType  `json:"type"`
	Damage       int       `json:"damage"`
	ShieldDamage int       `json:"shieldDamage"`
	HullDamage   int       `json:"hullDamage"`
	ExplodedAt   time.Time `json:"explodedAt"`
}

// DisarmResult describes the outcome of a disarm attempt. Detonation is set
// only when a failed attempt blew the mine up in the attempter's face.
type DisarmResult struct {
	MineID     uint              `json:"mineId"`
	Disarmed   bool              `json:"disarmed"`
	OwnerBonus bool              `json:"ownerBonus"`
	Detonation *DetonationResult `json:"detonation,omitempty"`
}

// FieldResult is the partial outcome of a best-effort batch lay.
type FieldResult struct {
	LaidMineIDs []uint `json:"laidMineIds"`
	Laid        int    `json:"laid"`
	Failed      int    `json:"failed"`
}

// SweepResult aggregates a zipper firing.
type SweepResult struct {
	ShipID      uint               `json:"shipId"`
	Triggered   int                `json:"triggered"`
	TotalDamage int                `json:"totalDamage"`
	Detonations []DetonationResult `json:"detonations"`
}

// TeleportResult describes a boundary correction or emergency jump.
type TeleportResult struct {
	Teleported bool     `json:"teleported"`
	Position   Position `json:"position"`
	HullDamage int      `json:"hullDamage"`
	Message    string   `json:"message,omitempty"`
}
