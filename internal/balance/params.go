// Package balance holds the named, range-validated tunables that all
// tactical calculations draw from. Values are read per operation and never
// cached across operations, so a write takes effect on the next invocation.
package balance

import "fmt"

// Kind is the value type of a parameter.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindJSON
)

// Parameter categories.
const (
	CategoryOrdnance  = "ordnance"
	CategoryBoundary  = "boundary"
	CategoryDetection = "detection"
	CategoryGeneral   = "general"
)

// Definition describes one tunable: its type, valid range, default and
// category. Predicate, when set, is an additional custom check run after
// type/range validation.
type Definition struct {
	Key       string
	Kind      Kind
	Default   any
	Min       float64 // inclusive, numeric kinds only
	Max       float64 // inclusive, numeric kinds only
	Category  string
	Predicate func(any) error
}

// Well-known parameter keys.
const (
	KeyMaxMines           = "max_mines"
	KeyMineDamageMin      = "mine_damage_min"
	KeyMineDamageMax      = "mine_damage_max"
	KeyMineDetectionRange = "mine_detection_range"
	KeyMineExpiryHours    = "mine_expiry_hours"
	KeyZipperRange        = "zipper_range"
	KeyUniverseMax        = "universe_max"
	KeyBoundaryMargin     = "boundary_margin"
	KeyTeleportDamage     = "teleport_damage"
)

// Defaults returns the built-in parameter set.
func Defaults() []Definition {
	return []Definition{
		{Key: KeyMaxMines, Kind: KindInt, Default: 20, Min: 1, Max: 500, Category: CategoryOrdnance},
		{Key: KeyMineDamageMin, Kind: KindInt, Default: 50, Min: 1, Max: 1000, Category: CategoryOrdnance},
		{Key: KeyMineDamageMax, Kind: KindInt, Default: 500, Min: 1, Max: 5000, Category: CategoryOrdnance},
		{Key: KeyMineDetectionRange, Kind: KindFloat, Default: 10000.0, Min: 100, Max: 100000, Category: CategoryDetection},
		{Key: KeyMineExpiryHours, Kind: KindInt, Default: 72, Min: 0, Max: 8760, Category: CategoryOrdnance},
		{Key: KeyZipperRange, Kind: KindFloat, Default: 5000.0, Min: 100, Max: 50000, Category: CategoryOrdnance},
		{Key: KeyUniverseMax, Kind: KindFloat, Default: 195000.0, Min: 1000, Max: 1000000, Category: CategoryBoundary},
		{Key: KeyBoundaryMargin, Kind: KindFloat, Default: 2000.0, Min: 0, Max: 10000, Category: CategoryBoundary,
			Predicate: func(v any) error {
				// A margin above the universe half-extent would teleport
				// ships out the far side.
				if f, ok := toFloat(v); ok && f >= 100000 {
					return fmt.Errorf("boundary margin %v unreasonably large", v)
				}
				return nil
			}},
		{Key: KeyTeleportDamage, Kind: KindInt, Default: 50, Min: 0, Max: 1000, Category: CategoryBoundary},
	}
}

// toFloat normalizes any numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
