package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/arborhull/pkg/geom"
)

// Circularity is 4*pi*area / perimeter^2: 1 for a disc, smaller for any
// other shape.
func (e *SdfxEngine) Circularity(p *geom.Polygon) (float64, error) {
	if p == nil || len(p.Vertices) < 3 {
		return 0, fmt.Errorf("circularity: %w", geom.ErrDegenerate)
	}
	perim := polygonPerimeter(p)
	if perim == 0 {
		return 0, fmt.Errorf("circularity of zero-perimeter polygon: %w", geom.ErrDegenerate)
	}
	return 4 * math.Pi * polygonArea(p) / (perim * perim), nil
}

// Sphericity is the surface area of the sphere with the mesh's volume
// divided by the mesh surface area.
func (e *SdfxEngine) Sphericity(m *geom.Mesh) (float64, error) {
	vol, area, err := closedExtent(m, "sphericity")
	if err != nil {
		return 0, err
	}
	return math.Cbrt(math.Pi) * math.Pow(6*vol, 2.0/3.0) / area, nil
}

// Compactness is 36*pi*V^2 / A^3: 1 for a sphere.
func (e *SdfxEngine) Compactness(m *geom.Mesh) (float64, error) {
	vol, area, err := closedExtent(m, "compactness")
	if err != nil {
		return 0, err
	}
	return 36 * math.Pi * vol * vol / (area * area * area), nil
}

// Eccentricity of the ellipse with the polygon's second moments:
// sqrt(1 - minor/major) over the covariance eigenvalues.
func (e *SdfxEngine) Eccentricity(p *geom.Polygon) (float64, error) {
	if p == nil {
		return 0, fmt.Errorf("eccentricity: %w", geom.ErrDegenerate)
	}
	_, cov, err := polygonMoments(p.Vertices)
	if err != nil {
		return 0, fmt.Errorf("eccentricity: %w", err)
	}
	ev, err := eigenvalues(cov)
	if err != nil {
		return 0, fmt.Errorf("eccentricity: %w", err)
	}
	if ev[1] <= 0 {
		return 0, fmt.Errorf("eccentricity: %w", geom.ErrDegenerate)
	}
	return math.Sqrt(1 - math.Max(ev[0], 0)/ev[1]), nil
}

// MainElongation is 0 for shapes with no preferred axis and approaches 1
// for needle-like shapes. Polygons compare the sides of the minimum-area
// enclosing rectangle; meshes compare the two largest principal axes.
func (e *SdfxEngine) MainElongation(s geom.Shape) (float64, error) {
	switch s := s.(type) {
	case *geom.Polygon:
		r, ok := minAreaRect(s.Vertices)
		if !ok || r.long == 0 {
			return 0, fmt.Errorf("elongation: %w", geom.ErrDegenerate)
		}
		return 1 - r.short/r.long, nil
	case *geom.Mesh:
		_, cov, err := meshMoments(s)
		if err != nil {
			return 0, fmt.Errorf("elongation: %w", err)
		}
		ev, err := eigenvalues(cov)
		if err != nil {
			return 0, fmt.Errorf("elongation: %w", err)
		}
		if ev[2] <= 0 {
			return 0, fmt.Errorf("elongation: %w", geom.ErrDegenerate)
		}
		return 1 - math.Sqrt(math.Max(ev[1], 0)/ev[2]), nil
	}
	return 0, unsupported("elongation", s)
}

func closedExtent(m *geom.Mesh, measure string) (vol, area float64, err error) {
	if m == nil || !m.IsClosed() {
		return 0, 0, fmt.Errorf("%s of open mesh: %w", measure, geom.ErrUnsupported)
	}
	vol, area = meshVolume(m), meshArea(m)
	if area == 0 {
		return 0, 0, fmt.Errorf("%s of empty mesh: %w", measure, geom.ErrDegenerate)
	}
	return vol, area, nil
}
