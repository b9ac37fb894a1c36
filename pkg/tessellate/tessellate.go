// Package tessellate turns computed hulls into triangle meshes: flat
// render meshes for viewers, and STL files. Planar hulls are fanned into
// triangles at z = 0.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/arborhull/pkg/geom"
	"github.com/chazu/arborhull/pkg/hull"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrNotComputed is returned for hulls whose geometry is not available.
var ErrNotComputed = errors.New("hull not computed")

// Item is one hull to tessellate with its label and display colour.
type Item struct {
	Label string
	Hull  hull.Hull
	Color colorful.Color
}

// Triangles returns the faces of a computed hull.
func Triangles(h hull.Hull) ([]*sdf.Triangle3, error) {
	switch h := h.(type) {
	case *hull.ConvexHull3D:
		m := h.Mesh()
		if m == nil {
			return nil, ErrNotComputed
		}
		return m.Triangles(), nil
	case *hull.ConvexHull2D:
		p := h.Polygon()
		if p == nil {
			return nil, ErrNotComputed
		}
		return fan(p), nil
	}
	panic(fmt.Sprintf("tessellate: unsupported hull type %T", h))
}

// fan triangulates a convex CCW polygon from its first vertex.
func fan(p *geom.Polygon) []*sdf.Triangle3 {
	if len(p.Vertices) < 3 {
		return nil
	}
	v0 := v3.Vec{X: p.Vertices[0].X, Y: p.Vertices[0].Y}
	tris := make([]*sdf.Triangle3, 0, len(p.Vertices)-2)
	for i := 1; i+1 < len(p.Vertices); i++ {
		a := v3.Vec{X: p.Vertices[i].X, Y: p.Vertices[i].Y}
		b := v3.Vec{X: p.Vertices[i+1].X, Y: p.Vertices[i+1].Y}
		tris = append(tris, &sdf.Triangle3{v0, a, b})
	}
	return tris
}

// Tessellate produces a render mesh for one hull. The hull must be
// computed.
func Tessellate(it Item) (*geom.RenderMesh, error) {
	triangles, err := Triangles(it.Hull)
	if err != nil {
		return nil, fmt.Errorf("tessellate %q: %w", it.Label, err)
	}

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &geom.RenderMesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		Label:    it.Label,
		Color:    it.Color.Hex(),
	}, nil
}

// TessellateAll produces one render mesh per item, in order.
func TessellateAll(items []Item) ([]*geom.RenderMesh, error) {
	meshes := make([]*geom.RenderMesh, 0, len(items))
	for _, it := range items {
		m, err := Tessellate(it)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// SaveSTL writes the faces of every hull to a single STL file.
func SaveSTL(path string, hulls ...hull.Hull) error {
	var all []*sdf.Triangle3
	for i, h := range hulls {
		tris, err := Triangles(h)
		if err != nil {
			return fmt.Errorf("save stl: hull %d: %w", i, err)
		}
		all = append(all, tris...)
	}
	if len(all) == 0 {
		return errors.New("save stl: no triangles")
	}
	if err := render.SaveSTL(path, all); err != nil {
		return fmt.Errorf("save stl: %w", err)
	}
	return nil
}
