// Package sdfx implements the geom.Engine interface on the vector, box and
// triangle types of the github.com/deadsy/sdfx CAD library, with gonum
// providing the eigen decompositions behind the shape descriptors.
package sdfx

import (
	"fmt"

	"github.com/chazu/arborhull/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/twpayne/go-geom/xy"
)

// Compile-time interface check.
var _ geom.Engine = (*SdfxEngine)(nil)

// SdfxEngine implements geom.Engine natively in Go.
type SdfxEngine struct {
	// eps is the relative tolerance used by the hull predicates, scaled by
	// the extent of each input.
	eps float64
}

// defaultEpsilon is the relative coplanarity tolerance.
const defaultEpsilon = 1e-10

// New returns a new SdfxEngine.
func New() *SdfxEngine {
	return &SdfxEngine{eps: defaultEpsilon}
}

// Size returns the area of a polygon or the volume of a mesh.
func (e *SdfxEngine) Size(s geom.Shape) (float64, error) {
	switch s := s.(type) {
	case *geom.Polygon:
		return polygonArea(s), nil
	case *geom.Mesh:
		return meshVolume(s), nil
	}
	return 0, unsupported("size", s)
}

// BoundarySize returns the perimeter of a polygon or the surface area of a
// mesh.
func (e *SdfxEngine) BoundarySize(s geom.Shape) (float64, error) {
	switch s := s.(type) {
	case *geom.Polygon:
		return polygonPerimeter(s), nil
	case *geom.Mesh:
		return meshArea(s), nil
	}
	return 0, unsupported("boundary size", s)
}

// Centroid returns the area centroid of a polygon (z = 0) or the volume
// centroid of a mesh.
func (e *SdfxEngine) Centroid(s geom.Shape) (v3.Vec, error) {
	switch s := s.(type) {
	case *geom.Polygon:
		if len(s.Vertices) < 3 {
			return v3.Vec{}, fmt.Errorf("centroid of %d-gon: %w", len(s.Vertices), geom.ErrDegenerate)
		}
		c := xy.PolygonsCentroid(toGeom(s))
		return v3.Vec{X: c.X(), Y: c.Y()}, nil
	case *geom.Mesh:
		c, _, err := meshMoments(s)
		return c, err
	}
	return v3.Vec{}, unsupported("centroid", s)
}

func unsupported(measure string, s geom.Shape) error {
	return fmt.Errorf("%s of %T: %w", measure, s, geom.ErrUnsupported)
}
