// Package geom defines the geometry engine the hull types delegate to.
// The engine computes convex hulls of point sets and measures the
// resulting shapes. Implementations (sdfx) live in subpackages so the
// rest of the system never depends on a particular backend.
package geom

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Engine is the abstract geometry engine.
//
// Every measure accepts a Shape produced by one of the hull calls. Measures
// that only make sense in one dimensionality take the concrete type.
type Engine interface {
	// Hulls
	ConvexHull2D(points []v2.Vec) (*Polygon, error)
	ConvexHull3D(input *Mesh) ([]*Mesh, error)

	// Extent measures
	Size(s Shape) (float64, error)
	BoundarySize(s Shape) (float64, error)
	Centroid(s Shape) (v3.Vec, error)

	// Shape descriptors
	Boxivity(s Shape) (float64, error)
	MainElongation(s Shape) (float64, error)
	Circularity(p *Polygon) (float64, error)
	Eccentricity(p *Polygon) (float64, error)
	Sphericity(m *Mesh) (float64, error)
	Compactness(m *Mesh) (float64, error)
}
