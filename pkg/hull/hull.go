// Package hull holds convex hulls of point sets in the plane and in
// space. A hull retains its input points, computes its geometry lazily
// through a geom.Engine, and caches its scalar measures until it is
// recomputed.
package hull

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/chazu/arborhull/pkg/geom"
	"github.com/chazu/arborhull/pkg/geom/sdfx"
	"github.com/chazu/arborhull/pkg/pointset"
)

// Hull is a convex hull of a point set. The set of implementations is
// fixed: *ConvexHull2D and *ConvexHull3D.
type Hull interface {
	// Compute (re)builds the hull geometry and clears cached measures.
	Compute(ctx context.Context) error
	// Computed reports whether the geometry is available.
	Computed() bool

	// Size is the enclosed area (2D) or volume (3D). It computes the hull
	// on first use.
	Size(ctx context.Context) (float64, error)
	// BoundarySize is the perimeter (2D) or surface area (3D).
	BoundarySize(ctx context.Context) (float64, error)

	// Shape returns the live geometry, or nil before Compute.
	Shape() geom.Shape
	// Points returns a copy of the retained input points.
	Points() pointset.Points
	// BoundingBox encloses the retained points.
	BoundingBox() pointset.BoundingBox
	// Engine is the geometry engine the hull delegates to.
	Engine() geom.Engine

	// IntersectionBox is the overlap of this hull's box with the others'.
	IntersectionBox(others ...Hull) pointset.BoundingBox
	// Intersection returns a new, computed hull of the same variant over
	// the retained points of this hull and others that fall inside
	// IntersectionBox. This approximates the true overlap of the hulls.
	Intersection(ctx context.Context, others ...Hull) (Hull, error)

	sealed()
}

// Compile-time interface checks.
var (
	_ Hull = (*ConvexHull2D)(nil)
	_ Hull = (*ConvexHull3D)(nil)
)

// Option configures a hull.
type Option func(*base)

// WithEngine selects the geometry engine. The default is the native sdfx
// engine.
func WithEngine(e geom.Engine) Option {
	return func(b *base) { b.engine = e }
}

// WithTimeout bounds every engine call. Non-positive means
// geom.DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(b *base) { b.timeout = d }
}

// base carries what both variants share: retained points, the engine and
// the cached scalars.
type base struct {
	engine  geom.Engine
	timeout time.Duration
	points  pointset.Points

	size, boundarySize *float64
}

func newBase(points pointset.Points, opts []Option) base {
	b := base{points: points.Clone()}
	for _, o := range opts {
		o(&b)
	}
	if b.engine == nil {
		b.engine = sdfx.New()
	}
	return b
}

func (b *base) options() []Option {
	return []Option{WithEngine(b.engine), WithTimeout(b.timeout)}
}

func (b *base) Points() pointset.Points            { return b.points.Clone() }
func (b *base) BoundingBox() pointset.BoundingBox { return b.points.BoundingBox() }
func (b *base) Engine() geom.Engine                { return b.engine }
func (b *base) sealed()                            {}

func (b *base) clearCache() {
	b.size, b.boundarySize = nil, nil
}

// cached returns *slot, filling it from measure on the hull's shape first.
// The hull is computed if needed.
func (b *base) cached(ctx context.Context, h Hull, slot **float64, what string, measure func(geom.Shape) (float64, error)) (float64, error) {
	if *slot != nil {
		return **slot, nil
	}
	if !h.Computed() {
		if err := h.Compute(ctx); err != nil {
			return math.NaN(), err
		}
	}
	shape := h.Shape()
	v, err := geom.Call(ctx, b.timeout, func() (float64, error) {
		return measure(shape)
	})
	if err != nil {
		return math.NaN(), fmt.Errorf("hull %s: %w", what, err)
	}
	*slot = &v
	return v, nil
}

// union gathers the retained points of h and others.
func union(h Hull, others []Hull) pointset.Points {
	out := h.Points()
	for _, o := range others {
		out = append(out, o.Points()...)
	}
	return out
}
