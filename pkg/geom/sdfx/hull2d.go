package sdfx

import (
	"fmt"
	"slices"

	"github.com/chazu/arborhull/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	gogeom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// ConvexHull2D computes the convex hull of points with the Graham scan of
// go-geom/xy. Collinear boundary points are dropped and the result is
// wound counter-clockwise.
func (e *SdfxEngine) ConvexHull2D(points []v2.Vec) (*geom.Polygon, error) {
	// The scan needs three distinct points to seed its stack.
	if distinct2(points) < 3 {
		return nil, fmt.Errorf("convex hull of %d points: %w", len(points), geom.ErrDegenerate)
	}

	flat := make([]float64, 0, 2*len(points))
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	poly, ok := xy.ConvexHullFlat(gogeom.XY, flat).(*gogeom.Polygon)
	if !ok {
		// A point or a line string: every input point is collinear.
		return nil, fmt.Errorf("convex hull of %d collinear points: %w", len(points), geom.ErrDegenerate)
	}

	ring := poly.FlatCoords()
	ring = ring[:len(ring)-2] // the ring repeats its first vertex
	vs := make([]v2.Vec, 0, len(ring)/2)
	for i := 0; i < len(ring); i += 2 {
		vs = append(vs, v2.Vec{X: ring[i], Y: ring[i+1]})
	}
	if poly.Area() < 0 {
		slices.Reverse(vs)
	}
	if len(vs) < 3 {
		return nil, fmt.Errorf("convex hull of %d points: %w", len(points), geom.ErrDegenerate)
	}
	return &geom.Polygon{Vertices: vs}, nil
}

// distinct2 counts distinct points, stopping at three.
func distinct2(points []v2.Vec) int {
	var seen []v2.Vec
	for _, p := range points {
		if !slices.Contains(seen, p) {
			seen = append(seen, p)
			if len(seen) == 3 {
				break
			}
		}
	}
	return len(seen)
}

// toGeom converts a hull polygon into a closed go-geom ring.
func toGeom(p *geom.Polygon) *gogeom.Polygon {
	flat := make([]float64, 0, 2*len(p.Vertices)+2)
	for _, v := range p.Vertices {
		flat = append(flat, v.X, v.Y)
	}
	if len(p.Vertices) > 0 {
		flat = append(flat, p.Vertices[0].X, p.Vertices[0].Y)
	}
	return gogeom.NewPolygonFlat(gogeom.XY, flat, []int{len(flat)})
}
