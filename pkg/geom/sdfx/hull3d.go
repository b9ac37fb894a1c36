package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/arborhull/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
)

// ConvexHull3D computes the convex hull of the input mesh vertices with
// quickhull. Faces of the input are ignored. The result is a single closed
// mesh holding only hull vertices, with every face wound outward.
func (e *SdfxEngine) ConvexHull3D(input *geom.Mesh) ([]*geom.Mesh, error) {
	if input == nil || len(input.Vertices) < 4 {
		n := 0
		if input != nil {
			n = len(input.Vertices)
		}
		return nil, fmt.Errorf("convex hull of %d points: %w", n, geom.ErrDegenerate)
	}
	pts := input.Vertices

	bb := input.Bounds()
	eps := e.eps * math.Max(bb.Size().Length(), math.SmallestNonzeroFloat64)

	// quickhull returns an empty or flat hull for degenerate clouds, so the
	// rank is checked first to report why.
	seed, err := initialSimplex(pts, eps)
	if err != nil {
		return nil, err
	}

	cloud := make([]r3.Vector, len(pts))
	for i, p := range pts {
		cloud[i] = r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
	}
	ch := new(quickhull.QuickHull).ConvexHull(cloud, true, true, eps)
	if len(ch.Indices) < 12 || len(ch.Indices)%3 != 0 {
		return nil, fmt.Errorf("convex hull of %d points has %d indices: %w", len(pts), len(ch.Indices), geom.ErrDegenerate)
	}

	var interior v3.Vec
	for _, i := range seed {
		interior = interior.Add(pts[i])
	}
	interior = interior.DivScalar(4)

	faces := make([][3]int, 0, len(ch.Indices)/3)
	for k := 0; k < len(ch.Indices); k += 3 {
		f := [3]int{ch.Indices[k], ch.Indices[k+1], ch.Indices[k+2]}
		a, b, c := pts[f[0]], pts[f[1]], pts[f[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Dot(interior.Sub(a)) > 0 {
			f[1], f[2] = f[2], f[1]
		}
		faces = append(faces, f)
	}

	m := compact(pts, faces)
	if meshVolume(m) <= 0 {
		return nil, fmt.Errorf("convex hull of %d points has no volume: %w", len(pts), geom.ErrDegenerate)
	}
	return []*geom.Mesh{m}, nil
}

// initialSimplex picks four affinely independent points: the extreme point
// along x, the point farthest from it, the point farthest from that line and
// the point farthest from the resulting plane.
func initialSimplex(pts []v3.Vec, eps float64) ([4]int, error) {
	var s [4]int

	for i, p := range pts {
		if p.X < pts[s[0]].X {
			s[0] = i
		}
	}

	best := -1.0
	for i, p := range pts {
		if d := p.Sub(pts[s[0]]).Length(); d > best {
			best, s[1] = d, i
		}
	}
	if best <= eps {
		return s, fmt.Errorf("convex hull of coincident points: %w", geom.ErrDegenerate)
	}

	dir := pts[s[1]].Sub(pts[s[0]])
	best = -1
	for i, p := range pts {
		if d := dir.Cross(p.Sub(pts[s[0]])).Length() / dir.Length(); d > best {
			best, s[2] = d, i
		}
	}
	if best <= eps {
		return s, fmt.Errorf("convex hull of collinear points: %w", geom.ErrDegenerate)
	}

	n := dir.Cross(pts[s[2]].Sub(pts[s[0]])).Normalize()
	best = -1
	for i, p := range pts {
		if d := math.Abs(n.Dot(p.Sub(pts[s[0]]))); d > best {
			best, s[3] = d, i
		}
	}
	if best <= eps {
		return s, fmt.Errorf("convex hull of coplanar points: %w", geom.ErrDegenerate)
	}
	return s, nil
}

// compact copies the referenced vertices into a fresh mesh and reindexes
// the faces.
func compact(pts []v3.Vec, faces [][3]int) *geom.Mesh {
	out := &geom.Mesh{}
	remap := make(map[int]int)
	for _, f := range faces {
		var idx [3]int
		for k, v := range f {
			j, ok := remap[v]
			if !ok {
				p := pts[v]
				j = out.AddVertex(p.X, p.Y, p.Z)
				remap[v] = j
			}
			idx[k] = j
		}
		out.AddFace(idx[0], idx[1], idx[2])
	}
	return out
}
