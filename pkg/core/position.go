// pkg/core/position.go
package core

// Position is a point on the universe plane.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
