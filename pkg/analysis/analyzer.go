// Package analysis derives shape descriptors from the convex hull of a
// reconstruction: how large, round, elongated, box-like and compact its
// spatial envelope is.
//
// An Analyzer is lazy. Nothing is computed until a metric is requested,
// and the full metric map is built once and then reused.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/chazu/arborhull/pkg/geom"
	"github.com/chazu/arborhull/pkg/geom/sdfx"
	"github.com/chazu/arborhull/pkg/hull"
	"github.com/chazu/arborhull/pkg/pointset"
	"github.com/chazu/arborhull/pkg/tree"
)

// DefaultMinNodes is the node count a point source must exceed before
// a hull is attempted.
const DefaultMinNodes = 3

// Analyzer computes convex hull metrics for one point source. It is not
// safe for concurrent use.
type Analyzer struct {
	label  string
	unit   string
	points pointset.Points
	is3D   bool
	guard  bool

	engine    geom.Engine
	timeout   time.Duration
	minNodes  int
	pointKind tree.PointKind
	dump      []string
	logger    *slog.Logger

	hull    hull.Hull
	metrics *MetricMap
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithEngine selects the geometry engine.
func WithEngine(e geom.Engine) Option {
	return func(a *Analyzer) { a.engine = e }
}

// WithTimeout bounds every engine call.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.timeout = d }
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithMinNodes sets the node count the guard requires to be exceeded.
func WithMinNodes(n int) Option {
	return func(a *Analyzer) { a.minNodes = n }
}

// WithPointKind selects which tree nodes feed the hull.
func WithPointKind(k tree.PointKind) Option {
	return func(a *Analyzer) { a.pointKind = k }
}

// WithUnit overrides the spatial unit reported by Unit.
func WithUnit(u string) Option {
	return func(a *Analyzer) { a.unit = u }
}

// WithDumpMetrics restricts the columns Dump writes. Unknown names are
// ignored.
func WithDumpMetrics(names ...string) Option {
	return func(a *Analyzer) { a.dump = names }
}

func (a *Analyzer) apply(opts []Option) {
	a.minNodes = DefaultMinNodes
	for _, o := range opts {
		o(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
}

// New creates an analyzer over t. The hull is planar unless some node
// leaves the plane of the first node.
func New(t *tree.Tree, opts ...Option) *Analyzer {
	a := &Analyzer{label: t.DisplayLabel(), unit: t.Unit, guard: true}
	a.apply(opts)
	if a.unit == "" {
		a.unit = tree.DefaultUnit
	}
	if a.engine == nil {
		a.engine = sdfx.New()
	}
	a.points = t.HullPoints(a.pointKind)
	a.is3D = t.Is3D()
	return a
}

// NewFromHull creates an analyzer over an existing hull. The degeneracy
// guard is skipped and the hull's engine is used unless WithEngine is
// given.
func NewFromHull(h hull.Hull, label string, opts ...Option) *Analyzer {
	a := &Analyzer{label: label, unit: tree.DefaultUnit, hull: h, points: h.Points()}
	a.apply(opts)
	if a.engine == nil {
		a.engine = h.Engine()
	}
	switch h.(type) {
	case *hull.ConvexHull3D:
		a.is3D = true
	case *hull.ConvexHull2D:
		a.is3D = false
	default:
		panic(unsupportedHull(h))
	}
	return a
}

// Label is the row label used by Dump.
func (a *Analyzer) Label() string { return a.label }

// Is3D reports whether the analyzer builds a spatial hull.
func (a *Analyzer) Is3D() bool { return a.is3D }

// IsComputable scans the source points, keeping a count, a running
// bounding box and the affine span, and reports true as soon as the count
// exceeds the minimum, the box has a non-zero xy footprint and the points
// span a plane (2D) or a solid (3D).
func (a *Analyzer) IsComputable() bool {
	if !a.guard {
		return true
	}
	need := 2
	if a.is3D {
		need = 3
	}
	var box pointset.BoundingBox
	var span pointset.Span
	for i, p := range a.points {
		box = box.Include(p)
		if !a.is3D {
			p.Z = 0
		}
		span.Add(p)
		if i+1 > a.minNodes && box.Width()*box.Height() > 0 && span.Dim() >= need {
			return true
		}
	}
	return false
}

// Hull returns the computed hull, building it on first use.
func (a *Analyzer) Hull(ctx context.Context) (hull.Hull, error) {
	if a.hull == nil {
		hopts := []hull.Option{hull.WithEngine(a.engine), hull.WithTimeout(a.timeout)}
		if a.is3D {
			a.hull = hull.New3D(a.points, hopts...)
		} else {
			a.hull = hull.New2D(a.points, hopts...)
		}
	}
	if !a.hull.Computed() {
		a.logger.Debug("computing convex hull", "label", a.label, "points", len(a.points), "3d", a.is3D)
		if err := a.hull.Compute(ctx); err != nil {
			return nil, err
		}
	}
	return a.hull, nil
}

// Analysis returns every supported metric. The first call runs the
// pipeline; later calls return the same map without touching the engine.
//
// Input rejected by IsComputable, and hulls the engine cannot build, yield
// an all-NaN map. A metric the engine cannot measure is NaN on its own.
// Only cancellation of ctx is returned as an error, and then nothing is
// cached.
func (a *Analyzer) Analysis(ctx context.Context) (*MetricMap, error) {
	if a.metrics != nil {
		return a.metrics, nil
	}
	if !a.IsComputable() {
		a.logger.Info("convex hull analysis skipped: too few or collinear points",
			"label", a.label, "points", len(a.points))
		a.metrics = nanMetrics()
		return a.metrics, nil
	}

	h, err := a.Hull(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		a.logger.Warn("convex hull could not be computed", "label", a.label, "err", err)
		a.metrics = nanMetrics()
		return a.metrics, nil
	}

	mm := newMetricMap()
	for _, name := range SupportedMetrics() {
		v, err := a.measure(ctx, h, name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			level := slog.LevelWarn
			if name == Boxivity {
				level = slog.LevelInfo
			}
			a.logger.Log(ctx, level, "metric unavailable", "label", a.label, "metric", name, "err", err)
			v = math.NaN()
		}
		mm.m.Add(name, v)
	}
	a.metrics = mm
	return mm, nil
}

// Get returns a single metric from the analysis.
func (a *Analyzer) Get(ctx context.Context, metric string) (float64, error) {
	if !IsSupported(metric) {
		return math.NaN(), fmt.Errorf("unknown metric %q", metric)
	}
	mm, err := a.Analysis(ctx)
	if err != nil {
		return math.NaN(), err
	}
	return mm.Value(metric), nil
}

// Size measures the hull directly, bypassing the cached analysis.
func (a *Analyzer) Size(ctx context.Context) (float64, error) {
	return a.direct(ctx, Size)
}

// BoundarySize measures the hull directly.
func (a *Analyzer) BoundarySize(ctx context.Context) (float64, error) {
	return a.direct(ctx, BoundarySize)
}

// Boxivity measures the hull directly.
func (a *Analyzer) Boxivity(ctx context.Context) (float64, error) {
	return a.direct(ctx, Boxivity)
}

// Elongation measures the hull directly.
func (a *Analyzer) Elongation(ctx context.Context) (float64, error) {
	return a.direct(ctx, Elongation)
}

// Roundness measures the hull directly.
func (a *Analyzer) Roundness(ctx context.Context) (float64, error) {
	return a.direct(ctx, Roundness)
}

// Compactness measures the hull directly. It is NaN for planar hulls.
func (a *Analyzer) Compactness(ctx context.Context) (float64, error) {
	return a.direct(ctx, Compactness)
}

// Eccentricity measures the hull directly. It is NaN for spatial hulls.
func (a *Analyzer) Eccentricity(ctx context.Context) (float64, error) {
	return a.direct(ctx, Eccentricity)
}

func (a *Analyzer) direct(ctx context.Context, metric string) (float64, error) {
	h, err := a.Hull(ctx)
	if err != nil {
		return math.NaN(), err
	}
	return a.measure(ctx, h, metric)
}

// Centroid is the area (2D, z = 0) or volume (3D) centroid of the hull.
func (a *Analyzer) Centroid(ctx context.Context) (pointset.Point, error) {
	h, err := a.Hull(ctx)
	if err != nil {
		return pointset.Point{}, err
	}
	shape := shapeOf(h)
	c, err := geom.Call(ctx, a.timeout, func() (pointset.Point, error) {
		v, err := a.engine.Centroid(shape)
		return pointset.FromVec(v), err
	})
	if err != nil {
		return pointset.Point{}, fmt.Errorf("centroid: %w", err)
	}
	if !a.is3D {
		c.Z = 0
	}
	return c, nil
}

// Unit returns the unit of metric for this analyzer's hull.
func (a *Analyzer) Unit(metric string) string {
	return Unit(metric, a.unit, a.is3D)
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

func (a *Analyzer) measure(ctx context.Context, h hull.Hull, metric string) (float64, error) {
	switch metric {
	case Size:
		return h.Size(ctx)
	case BoundarySize:
		return h.BoundarySize(ctx)
	case Boxivity:
		shape := shapeOf(h)
		return a.call(ctx, func() (float64, error) { return a.engine.Boxivity(shape) })
	case Elongation:
		shape := shapeOf(h)
		return a.call(ctx, func() (float64, error) { return a.engine.MainElongation(shape) })
	case Roundness:
		return a.roundness(ctx, h)
	case Compactness:
		return a.compactness(ctx, h)
	case Eccentricity:
		return a.eccentricity(ctx, h)
	}
	return math.NaN(), fmt.Errorf("unknown metric %q", metric)
}

func (a *Analyzer) roundness(ctx context.Context, h hull.Hull) (float64, error) {
	switch h := h.(type) {
	case *hull.ConvexHull3D:
		return a.call(ctx, func() (float64, error) { return a.engine.Sphericity(h.Mesh()) })
	case *hull.ConvexHull2D:
		return a.call(ctx, func() (float64, error) { return a.engine.Circularity(h.Polygon()) })
	}
	panic(unsupportedHull(h))
}

func (a *Analyzer) compactness(ctx context.Context, h hull.Hull) (float64, error) {
	switch h := h.(type) {
	case *hull.ConvexHull3D:
		return a.call(ctx, func() (float64, error) { return a.engine.Compactness(h.Mesh()) })
	case *hull.ConvexHull2D:
		return math.NaN(), nil
	}
	panic(unsupportedHull(h))
}

func (a *Analyzer) eccentricity(ctx context.Context, h hull.Hull) (float64, error) {
	switch h := h.(type) {
	case *hull.ConvexHull3D:
		return math.NaN(), nil
	case *hull.ConvexHull2D:
		return a.call(ctx, func() (float64, error) { return a.engine.Eccentricity(h.Polygon()) })
	}
	panic(unsupportedHull(h))
}

func (a *Analyzer) call(ctx context.Context, fn func() (float64, error)) (float64, error) {
	v, err := geom.Call(ctx, a.timeout, fn)
	if err != nil {
		return math.NaN(), err
	}
	return v, nil
}

// shapeOf returns the live geometry of a computed hull.
func shapeOf(h hull.Hull) geom.Shape {
	switch h := h.(type) {
	case *hull.ConvexHull3D:
		return h.Mesh()
	case *hull.ConvexHull2D:
		return h.Polygon()
	}
	panic(unsupportedHull(h))
}

func unsupportedHull(h hull.Hull) string {
	return fmt.Sprintf("analysis: unsupported hull type %T", h)
}
