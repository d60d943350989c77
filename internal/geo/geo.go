// Package geo provides planar geometry helpers for the universe plane.
// Positions are plain XY coordinates; there is no projection or datum, the
// universe is an abstract bounded rectangle centered on the origin.
package geo

import (
	"math"

	"github.com/stardrift/tactical/pkg/core"

	geom "github.com/peterstace/simplefeatures/geom"
)

// Distance returns the Euclidean distance between two positions.
func Distance(a, b core.Position) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Bearing returns the compass bearing in degrees [0, 360) from a to b,
// with 0 pointing up the +Y axis and 90 pointing along +X.
func Bearing(a, b core.Position) float64 {
	deg := math.Atan2(b.X-a.X, b.Y-a.Y) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Bounds is the playable universe rectangle: ±max on each axis.
type Bounds struct {
	env geom.Envelope
	max float64
}

// NewBounds builds the universe rectangle for the given half-extent.
func NewBounds(max float64) Bounds {
	var env geom.Envelope
	env = env.ExpandToIncludeXY(geom.XY{X: -max, Y: -max})
	env = env.ExpandToIncludeXY(geom.XY{X: max, Y: max})
	return Bounds{env: env, max: max}
}

// Max returns the half-extent of the bounds.
func (b Bounds) Max() float64 {
	return b.max
}

// Contains reports whether p lies inside the universe rectangle (edges
// inclusive).
func (b Bounds) Contains(p core.Position) bool {
	return b.env.Contains(geom.XY{X: p.X, Y: p.Y})
}

// Clamp returns p pulled back inside the rectangle, leaving margin between
// the result and any exceeded edge. Coordinates already in bounds are
// unchanged.
func (b Bounds) Clamp(p core.Position, margin float64) core.Position {
	out := p
	if out.X > b.max {
		out.X = b.max - margin
	} else if out.X < -b.max {
		out.X = -b.max + margin
	}
	if out.Y > b.max {
		out.Y = b.max - margin
	} else if out.Y < -b.max {
		out.Y = -b.max + margin
	}
	return out
}
