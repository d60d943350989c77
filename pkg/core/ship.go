// pkg/core/ship.go
package core

// Ship classes recognized by the scanner model. Unknown classes scan at the
// baseline modifier.
const (
	ShipClassScout     = "scout"
	ShipClassFighter   = "fighter"
	ShipClassCruiser   = "cruiser"
	ShipClassFreighter = "freighter"
)

// ScannerModifier returns the detection multiplier for a ship class.
// Scouts carry better sensor suites, freighters worse ones.
func ScannerModifier(shipClass string) float64 {
	switch shipClass {
	case ShipClassScout:
		return 1.25
	case ShipClassFighter:
		return 1.0
	case ShipClassCruiser:
		return 1.1
	case ShipClassFreighter:
		return 0.8
	}
	return 1.0
}
