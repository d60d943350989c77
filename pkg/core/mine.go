// pkg/core/mine.go
package core

import "strings"

// MineType classifies a mine. Each type has its own detection-difficulty,
// damage-multiplier and disarm-difficulty coefficients.
type MineType int

const (
	MineStandard MineType = iota
	MineProximity
	MineMagnetic
	MineThermal
	MineGravimetric
	MineDecoy
	MineCluster
	MineEMP
	MineStealth
	MineAntiFighter

	mineTypeCount
)

// mineTypeSpec holds the per-type tuning coefficients.
type mineTypeSpec struct {
	name      string
	detection float64 // multiplier on detection probability
	damage    float64 // multiplier on damage_potential
	disarm    float64 // multiplier on non-owner disarm success, in [0.4, 1.0]
}

var mineTypeSpecs = [mineTypeCount]mineTypeSpec{
	MineStandard:    {"Standard", 1.00, 1.00, 1.00},
	MineProximity:   {"Proximity", 0.90, 1.10, 0.90},
	MineMagnetic:    {"Magnetic", 0.85, 1.15, 0.85},
	MineThermal:     {"Thermal", 0.80, 1.20, 0.80},
	MineGravimetric: {"Gravimetric", 0.70, 1.30, 0.70},
	MineDecoy:       {"Decoy", 1.20, 0.00, 1.00},
	MineCluster:     {"Cluster", 0.75, 1.50, 0.60},
	MineEMP:         {"EMP", 0.80, 0.90, 0.75},
	MineStealth:     {"Stealth", 0.40, 1.00, 0.50},
	MineAntiFighter: {"Anti-Fighter", 0.90, 1.25, 0.65},
}

// Valid reports whether t is one of the known mine classes.
func (t MineType) Valid() bool {
	return t >= MineStandard && t < mineTypeCount
}

// String returns the display name of the mine type.
func (t MineType) String() string {
	if !t.Valid() {
		return "Unknown"
	}
	return mineTypeSpecs[t].name
}

// MineTypeByName resolves a mine class from its display name,
// case-insensitively.
func MineTypeByName(name string) (MineType, bool) {
	for t, spec := range mineTypeSpecs {
		if strings.EqualFold(spec.name, name) {
			return MineType(t), true
		}
	}
	return 0, false
}

// DetectionModifier returns the detection-difficulty coefficient.
func (t MineType) DetectionModifier() float64 {
	if !t.Valid() {
		return 1.0
	}
	return mineTypeSpecs[t].detection
}

// DamageModifier returns the damage-multiplier coefficient.
func (t MineType) DamageModifier() float64 {
	if !t.Valid() {
		return 1.0
	}
	return mineTypeSpecs[t].damage
}

// DisarmModifier returns the non-owner disarm success coefficient.
func (t MineType) DisarmModifier() float64 {
	if !t.Valid() {
		return 1.0
	}
	return mineTypeSpecs[t].disarm
}

// FieldPattern is the placement pattern for a batch mine-laying operation.
type FieldPattern string

const (
	PatternGrid     FieldPattern = "grid"
	PatternCircular FieldPattern = "circular"
	PatternRandom   FieldPattern = "random"
)

// Valid reports whether p is a known placement pattern.
func (p FieldPattern) Valid() bool {
	switch p {
	case PatternGrid, PatternCircular, PatternRandom:
		return true
	}
	return false
}
