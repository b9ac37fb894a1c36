// Package pointset normalizes labelled point collections into the
// coordinate slices consumed by the geometry engine.
package pointset

import (
	"fmt"
	"math"
	"slices"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Point is a position in reconstruction space.
type Point struct {
	X, Y, Z float64
}

// Positioner is implemented by anything that has a location, e.g. a traced
// node carrying a radius and a compartment type.
type Positioner interface {
	Position() Point
}

// Position lets a bare Point satisfy Positioner.
func (p Point) Position() Point { return p }

// Vec returns p as an sdfx 3D vector.
func (p Point) Vec() v3.Vec { return v3.Vec{X: p.X, Y: p.Y, Z: p.Z} }

// Vec2 returns the (x, y) projection of p.
func (p Point) Vec2() v2.Vec { return v2.Vec{X: p.X, Y: p.Y} }

// FromVec converts an sdfx vector back into a Point.
func FromVec(v v3.Vec) Point { return Point{X: v.X, Y: v.Y, Z: v.Z} }

// DistanceTo returns the euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	return q.Vec().Sub(p.Vec()).Length()
}

// IsFinite reports whether all coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}

// Points is an ordered point collection. Order never affects hull results.
type Points []Point

// Collect flattens any slice of positioned items into Points.
func Collect[T Positioner](items []T) Points {
	out := make(Points, len(items))
	for i, it := range items {
		out[i] = it.Position()
	}
	return out
}

// Clone returns an independent copy of ps.
func (ps Points) Clone() Points {
	return slices.Clone(ps)
}

// Vecs returns the 3D coordinates of ps.
func (ps Points) Vecs() []v3.Vec {
	out := make([]v3.Vec, len(ps))
	for i, p := range ps {
		out[i] = p.Vec()
	}
	return out
}

// Vecs2 returns the (x, y) projections of ps.
func (ps Points) Vecs2() []v2.Vec {
	out := make([]v2.Vec, len(ps))
	for i, p := range ps {
		out[i] = p.Vec2()
	}
	return out
}

// BoundingBox returns the axis-aligned box enclosing ps.
func (ps Points) BoundingBox() BoundingBox {
	return NewBoundingBox(ps...)
}
