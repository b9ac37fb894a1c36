package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/arborhull/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/mat"
)

// ---------------------------------------------------------------------------
// Polygon measures
// ---------------------------------------------------------------------------

// polygonArea is the enclosed area, independent of winding.
func polygonArea(p *geom.Polygon) float64 {
	return math.Abs(toGeom(p).Area())
}

func polygonPerimeter(p *geom.Polygon) float64 {
	return toGeom(p).Length()
}

// polygonMoments returns the area centroid and the 2x2 covariance of a
// uniform lamina over the polygon. Moments are accumulated over a triangle
// fan around the vertex mean to limit cancellation.
func polygonMoments(vs []v2.Vec) (v2.Vec, *mat.SymDense, error) {
	if len(vs) < 3 {
		return v2.Vec{}, nil, fmt.Errorf("moments of %d-gon: %w", len(vs), geom.ErrDegenerate)
	}
	var origin v2.Vec
	for _, v := range vs {
		origin = origin.Add(v)
	}
	origin = origin.MulScalar(1 / float64(len(vs)))

	var area, cx, cy, sxx, syy, sxy float64
	for i := range vs {
		a := vs[i].Sub(origin)
		b := vs[(i+1)%len(vs)].Sub(origin)
		w := (a.X*b.Y - b.X*a.Y) / 2
		area += w
		cx += w * (a.X + b.X) / 3
		cy += w * (a.Y + b.Y) / 3
		// Integral of x x^T over triangle (0, a, b) is w/12 (aa^T + bb^T + ss^T).
		s := a.Add(b)
		sxx += w / 12 * (a.X*a.X + b.X*b.X + s.X*s.X)
		syy += w / 12 * (a.Y*a.Y + b.Y*b.Y + s.Y*s.Y)
		sxy += w / 12 * (a.X*a.Y + b.X*b.Y + s.X*s.Y)
	}
	if math.Abs(area) == 0 {
		return v2.Vec{}, nil, fmt.Errorf("moments of zero-area polygon: %w", geom.ErrDegenerate)
	}
	cx /= area
	cy /= area
	cov := mat.NewSymDense(2, []float64{
		sxx/area - cx*cx, sxy/area - cx*cy,
		sxy/area - cx*cy, syy/area - cy*cy,
	})
	return v2.Vec{X: cx + origin.X, Y: cy + origin.Y}, cov, nil
}

// ---------------------------------------------------------------------------
// Mesh measures
// ---------------------------------------------------------------------------

// meshVolume is the divergence theorem volume of a closed mesh.
func meshVolume(m *geom.Mesh) float64 {
	origin := vertexMean(m)
	var sum float64
	for _, f := range m.Faces {
		a := m.Vertices[f[0]].Sub(origin)
		b := m.Vertices[f[1]].Sub(origin)
		c := m.Vertices[f[2]].Sub(origin)
		sum += a.Dot(b.Cross(c))
	}
	return math.Abs(sum) / 6
}

func meshArea(m *geom.Mesh) float64 {
	var sum float64
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		sum += b.Sub(a).Cross(c.Sub(a)).Length()
	}
	return sum / 2
}

// meshMoments returns the volume centroid and the 3x3 covariance of a
// uniform solid bounded by a closed mesh, summing signed tetrahedra
// (origin, a, b, c).
func meshMoments(m *geom.Mesh) (v3.Vec, *mat.SymDense, error) {
	if len(m.Faces) < 4 {
		return v3.Vec{}, nil, fmt.Errorf("moments of %d-face mesh: %w", len(m.Faces), geom.ErrDegenerate)
	}
	origin := vertexMean(m)

	var vol float64
	var c v3.Vec
	var acc [3][3]float64
	for _, f := range m.Faces {
		a := m.Vertices[f[0]].Sub(origin)
		b := m.Vertices[f[1]].Sub(origin)
		d := m.Vertices[f[2]].Sub(origin)
		w := a.Dot(b.Cross(d)) / 6
		vol += w
		s := a.Add(b).Add(d)
		c = c.Add(s.MulScalar(w / 4))
		// Integral of x x^T over the tetrahedron is w/20 (sum pp^T + ss^T).
		for _, p := range [...]v3.Vec{a, b, d, s} {
			pv := [3]float64{p.X, p.Y, p.Z}
			for i := range 3 {
				for j := range 3 {
					acc[i][j] += w / 20 * pv[i] * pv[j]
				}
			}
		}
	}
	if vol == 0 {
		return v3.Vec{}, nil, fmt.Errorf("moments of zero-volume mesh: %w", geom.ErrDegenerate)
	}
	c = c.DivScalar(vol)
	cv := [3]float64{c.X, c.Y, c.Z}
	cov := mat.NewSymDense(3, nil)
	for i := range 3 {
		for j := i; j < 3; j++ {
			cov.SetSym(i, j, acc[i][j]/vol-cv[i]*cv[j])
		}
	}
	return c.Add(origin), cov, nil
}

func vertexMean(m *geom.Mesh) v3.Vec {
	var sum v3.Vec
	if len(m.Vertices) == 0 {
		return sum
	}
	for _, v := range m.Vertices {
		sum = sum.Add(v)
	}
	return sum.DivScalar(float64(len(m.Vertices)))
}

// eigenvalues returns the eigenvalues of a symmetric matrix in ascending
// order.
func eigenvalues(s *mat.SymDense) ([]float64, error) {
	var es mat.EigenSym
	if !es.Factorize(s, false) {
		return nil, fmt.Errorf("eigen decomposition failed: %w", geom.ErrDegenerate)
	}
	return es.Values(nil), nil
}
