package geom

import (
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Shape is a closed hull produced by an Engine. The set of shapes is fixed:
// *Polygon in the plane and *Mesh in space.
type Shape interface {
	// Bounds returns the axis-aligned bounding box. Polygons report z = 0.
	Bounds() sdf.Box3
	shape()
}

// Polygon is a convex polygon with counter-clockwise vertices and no
// repeated closing vertex.
type Polygon struct {
	Vertices []v2.Vec
}

func (*Polygon) shape() {}

// VertexCount returns the number of polygon vertices.
func (p *Polygon) VertexCount() int { return len(p.Vertices) }

// IsEmpty returns true if the polygon has no vertices.
func (p *Polygon) IsEmpty() bool { return len(p.Vertices) == 0 }

// Bounds returns the polygon bounding box lifted into the z = 0 plane.
func (p *Polygon) Bounds() sdf.Box3 {
	if p.IsEmpty() {
		return sdf.Box3{}
	}
	lo, hi := p.Vertices[0], p.Vertices[0]
	for _, v := range p.Vertices[1:] {
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return sdf.Box3{
		Min: v3.Vec{X: lo.X, Y: lo.Y},
		Max: v3.Vec{X: hi.X, Y: hi.Y},
	}
}

// Mesh is an indexed triangle mesh. Faces index into Vertices and are wound
// counter-clockwise when seen from outside.
type Mesh struct {
	Vertices []v3.Vec
	Faces    [][3]int
}

func (*Mesh) shape() {}

// AddVertex appends a vertex and returns its index. Duplicates are kept.
func (m *Mesh) AddVertex(x, y, z float64) int {
	m.Vertices = append(m.Vertices, v3.Vec{X: x, Y: y, Z: z})
	return len(m.Vertices) - 1
}

// AddFace appends a triangle over existing vertex indices.
func (m *Mesh) AddFace(a, b, c int) {
	m.Faces = append(m.Faces, [3]int{a, b, c})
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Faces) }

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool { return len(m.Vertices) == 0 }

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *Mesh) Bounds() sdf.Box3 {
	if m.IsEmpty() {
		return sdf.Box3{}
	}
	b := sdf.Box3{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min = b.Min.Min(v)
		b.Max = b.Max.Max(v)
	}
	return b
}

// Triangles expands the indexed faces into sdfx triangles.
func (m *Mesh) Triangles() []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, len(m.Faces))
	for i, f := range m.Faces {
		out[i] = &sdf.Triangle3{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
	}
	return out
}

// IsClosed reports whether every edge is shared by exactly two faces with
// opposite orientation.
func (m *Mesh) IsClosed() bool {
	if len(m.Faces) < 4 {
		return false
	}
	edges := make(map[[2]int]int, len(m.Faces)*3)
	for _, f := range m.Faces {
		for i := range 3 {
			edges[[2]int{f[i], f[(i+1)%3]}]++
		}
	}
	for e, n := range edges {
		if n != 1 || edges[[2]int{e[1], e[0]}] != 1 {
			return false
		}
	}
	return true
}
