package hull

import (
	"context"
	"fmt"

	"github.com/chazu/arborhull/pkg/geom"
	"github.com/chazu/arborhull/pkg/pointset"
)

// ConvexHull2D is the convex polygon of the xy projection of its points.
type ConvexHull2D struct {
	base
	polygon *geom.Polygon
}

// New2D creates an uncomputed planar hull. The points are copied.
func New2D(points pointset.Points, opts ...Option) *ConvexHull2D {
	return &ConvexHull2D{base: newBase(points, opts)}
}

// Compute builds the hull polygon. On failure the previous geometry is
// discarded.
func (h *ConvexHull2D) Compute(ctx context.Context) error {
	h.polygon = nil
	h.clearCache()

	pts := h.points.Vecs2()
	poly, err := geom.Call(ctx, h.timeout, func() (*geom.Polygon, error) {
		return h.engine.ConvexHull2D(pts)
	})
	if err != nil {
		return fmt.Errorf("compute 2D hull of %d points: %w", len(pts), err)
	}
	h.polygon = poly
	return nil
}

func (h *ConvexHull2D) Computed() bool { return h.polygon != nil }

// Polygon returns the hull polygon, or nil before Compute.
func (h *ConvexHull2D) Polygon() *geom.Polygon { return h.polygon }

func (h *ConvexHull2D) Shape() geom.Shape {
	if h.polygon == nil {
		return nil
	}
	return h.polygon
}

// Size returns the hull area.
func (h *ConvexHull2D) Size(ctx context.Context) (float64, error) {
	return h.cached(ctx, h, &h.size, "size", h.engine.Size)
}

// BoundarySize returns the hull perimeter.
func (h *ConvexHull2D) BoundarySize(ctx context.Context) (float64, error) {
	return h.cached(ctx, h, &h.boundarySize, "boundary size", h.engine.BoundarySize)
}

// IntersectionBox overlaps the xy footprints only; z is ignored.
func (h *ConvexHull2D) IntersectionBox(others ...Hull) pointset.BoundingBox {
	box := h.BoundingBox().Flatten()
	for _, o := range others {
		box = box.Intersection(o.BoundingBox().Flatten())
	}
	return box
}

func (h *ConvexHull2D) Intersection(ctx context.Context, others ...Hull) (Hull, error) {
	box := h.IntersectionBox(others...)
	var kept pointset.Points
	for _, p := range union(h, others) {
		if box.Contains2D(p) {
			kept = append(kept, p)
		}
	}
	out := New2D(kept, h.options()...)
	if err := out.Compute(ctx); err != nil {
		return nil, fmt.Errorf("intersection: %w", err)
	}
	return out, nil
}
