package hull

import (
	"context"
	"fmt"

	"github.com/chazu/arborhull/pkg/geom"
	"github.com/chazu/arborhull/pkg/pointset"
)

// ConvexHull3D is the convex polyhedron of its points.
type ConvexHull3D struct {
	base
	mesh *geom.Mesh
}

// New3D creates an uncomputed spatial hull. The points are copied.
func New3D(points pointset.Points, opts ...Option) *ConvexHull3D {
	return &ConvexHull3D{base: newBase(points, opts)}
}

// Compute builds the hull mesh. Every point is inserted as a vertex, with
// duplicates kept; the engine returns a single mesh holding only hull
// vertices.
func (h *ConvexHull3D) Compute(ctx context.Context) error {
	h.mesh = nil
	h.clearCache()

	input := &geom.Mesh{}
	for _, p := range h.points {
		input.AddVertex(p.X, p.Y, p.Z)
	}
	meshes, err := geom.Call(ctx, h.timeout, func() ([]*geom.Mesh, error) {
		return h.engine.ConvexHull3D(input)
	})
	if err != nil {
		return fmt.Errorf("compute 3D hull of %d points: %w", len(h.points), err)
	}
	if len(meshes) == 0 || meshes[0] == nil {
		return fmt.Errorf("compute 3D hull of %d points: engine returned no mesh: %w", len(h.points), geom.ErrDegenerate)
	}
	h.mesh = meshes[0]
	return nil
}

func (h *ConvexHull3D) Computed() bool { return h.mesh != nil }

// Mesh returns the hull mesh, or nil before Compute.
func (h *ConvexHull3D) Mesh() *geom.Mesh { return h.mesh }

func (h *ConvexHull3D) Shape() geom.Shape {
	if h.mesh == nil {
		return nil
	}
	return h.mesh
}

// Size returns the hull volume.
func (h *ConvexHull3D) Size(ctx context.Context) (float64, error) {
	return h.cached(ctx, h, &h.size, "size", h.engine.Size)
}

// BoundarySize returns the hull surface area.
func (h *ConvexHull3D) BoundarySize(ctx context.Context) (float64, error) {
	return h.cached(ctx, h, &h.boundarySize, "boundary size", h.engine.BoundarySize)
}

func (h *ConvexHull3D) IntersectionBox(others ...Hull) pointset.BoundingBox {
	box := h.BoundingBox()
	for _, o := range others {
		box = box.Intersection(o.BoundingBox())
	}
	return box
}

func (h *ConvexHull3D) Intersection(ctx context.Context, others ...Hull) (Hull, error) {
	box := h.IntersectionBox(others...)
	var kept pointset.Points
	for _, p := range union(h, others) {
		if box.Contains(p) {
			kept = append(kept, p)
		}
	}
	out := New3D(kept, h.options()...)
	if err := out.Compute(ctx); err != nil {
		return nil, fmt.Errorf("intersection: %w", err)
	}
	return out, nil
}
