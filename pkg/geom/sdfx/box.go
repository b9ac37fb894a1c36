package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/arborhull/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// rect is an oriented rectangle found by rotating calipers.
type rect struct {
	area        float64
	short, long float64
}

// minAreaRect returns the minimum-area rectangle enclosing a convex
// polygon. One side of the optimum is always collinear with a hull edge.
func minAreaRect(hull []v2.Vec) (rect, bool) {
	best := rect{area: math.Inf(1)}
	n := len(hull)
	if n < 3 {
		return best, false
	}
	for i := range hull {
		edge := hull[(i+1)%n].Sub(hull[i])
		l := edge.Length()
		if l == 0 {
			continue
		}
		u := edge.MulScalar(1 / l)
		w := v2.Vec{X: -u.Y, Y: u.X}

		minU, maxU := math.Inf(1), math.Inf(-1)
		minW, maxW := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			d := p.Sub(hull[i])
			pu, pw := d.Dot(u), d.Dot(w)
			minU, maxU = math.Min(minU, pu), math.Max(maxU, pu)
			minW, maxW = math.Min(minW, pw), math.Max(maxW, pw)
		}
		a, b := maxU-minU, maxW-minW
		if area := a * b; area < best.area {
			best = rect{area: area, short: math.Min(a, b), long: math.Max(a, b)}
		}
	}
	return best, !math.IsInf(best.area, 1)
}

// Boxivity is the ratio of the shape's size to that of the smallest
// enclosing box. For polygons the box is the minimum-area rectangle. For
// meshes it is the smallest box with one face parallel to a hull face.
func (e *SdfxEngine) Boxivity(s geom.Shape) (float64, error) {
	switch s := s.(type) {
	case *geom.Polygon:
		r, ok := minAreaRect(s.Vertices)
		if !ok || r.area == 0 {
			return 0, fmt.Errorf("boxivity: %w", geom.ErrDegenerate)
		}
		return polygonArea(s) / r.area, nil
	case *geom.Mesh:
		if !s.IsClosed() {
			return 0, fmt.Errorf("boxivity of open mesh: %w", geom.ErrUnsupported)
		}
		vol := meshVolume(s)
		if vol <= 0 {
			return 0, fmt.Errorf("boxivity of zero-volume mesh: %w", geom.ErrUnsupported)
		}
		box := e.minFaceAlignedBox(s)
		if math.IsInf(box, 1) || box == 0 {
			return 0, fmt.Errorf("boxivity: %w", geom.ErrDegenerate)
		}
		return vol / box, nil
	}
	return 0, unsupported("boxivity", s)
}

// minFaceAlignedBox returns the volume of the smallest box that has one
// face parallel to a mesh face. The cross-section is solved in 2D on the
// projection of the vertices onto that face plane.
func (e *SdfxEngine) minFaceAlignedBox(m *geom.Mesh) float64 {
	best := math.Inf(1)
	tris := m.Triangles()
	proj := make([]v2.Vec, len(m.Vertices))
	for _, t := range tris {
		n := t.Normal()
		if math.IsNaN(n.X) || n.Length() == 0 {
			continue
		}
		u, w := planeBasis(n)

		lo, hi := math.Inf(1), math.Inf(-1)
		for i, p := range m.Vertices {
			proj[i] = v2.Vec{X: p.Dot(u), Y: p.Dot(w)}
			h := p.Dot(n)
			lo, hi = math.Min(lo, h), math.Max(hi, h)
		}
		section, err := e.ConvexHull2D(proj)
		if err != nil {
			continue
		}
		r, ok := minAreaRect(section.Vertices)
		if !ok {
			continue
		}
		if vol := r.area * (hi - lo); vol < best {
			best = vol
		}
	}
	return best
}

// planeBasis returns two unit vectors spanning the plane normal to n.
func planeBasis(n v3.Vec) (v3.Vec, v3.Vec) {
	a := v3.Vec{X: 1}
	if math.Abs(n.X) > 0.9 {
		a = v3.Vec{Y: 1}
	}
	u := n.Cross(a).Normalize()
	return u, n.Cross(u).Normalize()
}
