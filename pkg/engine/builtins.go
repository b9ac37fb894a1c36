package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/chazu/arborhull/pkg/analysis"
	"github.com/chazu/arborhull/pkg/hull"
	"github.com/chazu/arborhull/pkg/pointset"
	"github.com/chazu/arborhull/pkg/tree"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPoint wraps a pointset.Point.
type sexpPoint struct {
	p pointset.Point
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(point %g %g %g)", p.p.X, p.p.Y, p.p.Z)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpPath is a path waiting to be attached by `tree`. parent names an
// earlier path of the same tree; at indexes its nodes, -1 for the last.
type sexpPath struct {
	path   *tree.Path
	parent string
	at     int
}

func (p *sexpPath) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(path %q :nodes %d)", p.path.Name, len(p.path.Nodes))
}
func (p *sexpPath) Type() *zygo.RegisteredType { return nil }

// sexpTree wraps a tree built by `tree` or `split`.
type sexpTree struct {
	t *tree.Tree
}

func (t *sexpTree) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(tree %q :paths %d :nodes %d)", t.t.DisplayLabel(), len(t.t.Paths), t.t.NodeCount())
}
func (t *sexpTree) Type() *zygo.RegisteredType { return nil }

// sexpHull wraps a computed hull and its label.
type sexpHull struct {
	h     hull.Hull
	label string
}

func (h *sexpHull) SexpString(ps *zygo.PrintState) string {
	kind := "2d"
	if _, ok := h.h.(*hull.ConvexHull3D); ok {
		kind = "3d"
	}
	return fmt.Sprintf("(hull %q :%s)", h.label, kind)
}
func (h *sexpHull) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtins holds the per-evaluation state shared by every builtin.
type builtins struct {
	ctx    context.Context
	engine *Engine
	result *Result

	// analyzers caches one analyzer per tree or hull so `metric` after
	// `analyze` does not recompute anything.
	analyzers map[any]*analysis.Analyzer
	anon      int
}

// register installs all script builtins into a zygomys environment.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals and
// kebab-case names such as hull-size reach the underscore registrations.
func (b *builtins) register(env *zygo.Zlisp) {
	env.AddFunction("point", b.point)
	env.AddFunction("path", b.path)
	env.AddFunction("tree", b.tree)
	env.AddFunction("split", b.split)
	env.AddFunction("hull", b.hull)
	env.AddFunction("hull_size", b.hullSize)
	env.AddFunction("hull_boundary", b.hullBoundary)
	env.AddFunction("hull_box", b.hullBox)
	env.AddFunction("intersect", b.intersect)
	env.AddFunction("analyze", b.analyze)
	env.AddFunction("metric", b.metric)
}

func array(env *zygo.Zlisp, items []zygo.Sexp) *zygo.SexpArray {
	return &zygo.SexpArray{Val: items, Env: env}
}

// -----------------------------------------------------------------------
// (point 1 2 3), (point 1 2)
// -----------------------------------------------------------------------
func (b *builtins) point(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 && len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("point requires 2 or 3 arguments, got %d", len(args))
	}
	var xyz [3]float64
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: %c: %w", "xyz"[i], err)
		}
		xyz[i] = f
	}
	return &sexpPoint{p: pointset.Point{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
}

// -----------------------------------------------------------------------
// (path :name "dend" :type 3 :radius 0.5 :parent "soma" :at 0
//       (point ...) (point ...))
// -----------------------------------------------------------------------
func (b *builtins) path(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	p := &sexpPath{path: &tree.Path{Parent: -1, ParentNode: -1}, at: -1}
	typ := tree.TypeDendrite
	radius := 1.0

	if v, ok := pa.kw["name"]; ok {
		s, err := toString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("path: name: %w", err)
		}
		p.path.Name = s
	}
	if v, ok := pa.kw["type"]; ok {
		if n, err := toInt(v); err == nil {
			typ = tree.SWCType(n)
		} else {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("path: type: %w", err)
			}
			if typ, err = tree.ParseSWCType(s); err != nil {
				return zygo.SexpNull, fmt.Errorf("path: type: %w", err)
			}
		}
	}
	if v, ok := pa.kw["radius"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("path: radius: %w", err)
		}
		radius = f
	}
	if v, ok := pa.kw["parent"]; ok {
		s, err := toString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("path: parent: %w", err)
		}
		p.parent = s
	}
	if v, ok := pa.kw["at"]; ok {
		n, err := toInt(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("path: at: %w", err)
		}
		p.at = n
	}

	for i, a := range pa.positional {
		pt, err := toPoint(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("path: node %d: %w", i, err)
		}
		p.path.Nodes = append(p.path.Nodes, tree.Node{Point: pt, Radius: radius, Type: typ})
	}
	if len(p.path.Nodes) == 0 {
		return zygo.SexpNull, fmt.Errorf("path requires at least one point")
	}
	return p, nil
}

// -----------------------------------------------------------------------
// (tree "cell-1" :unit "um" (path ...) (path ...))
// -----------------------------------------------------------------------
func (b *builtins) tree(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) < 1 {
		return zygo.SexpNull, fmt.Errorf("tree requires a label argument")
	}
	label, err := toString(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("tree: label: %w", err)
	}

	t := tree.New(label)
	if v, ok := pa.kw["unit"]; ok {
		u, err := toString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tree: unit: %w", err)
		}
		t.Unit = u
	}

	byName := make(map[string]*tree.Path)
	for i, a := range pa.positional[1:] {
		sp, ok := a.(*sexpPath)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("tree: child %d: expected path, got %T (%s)", i, a, a.SexpString(nil))
		}
		p := *sp.path
		p.ID = i
		if sp.parent != "" {
			parent, ok := byName[sp.parent]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("tree: path %d: no earlier path named %q", i, sp.parent)
			}
			p.Parent = parent.ID
			p.ParentNode = sp.at
			if p.ParentNode < 0 {
				p.ParentNode = len(parent.Nodes) - 1
			}
		}
		t.AddPath(&p)
		if p.Name != "" {
			byName[p.Name] = &p
		}
	}

	if findings := tree.Validate(t); tree.HasErrors(findings) {
		var msgs []string
		for _, f := range findings {
			if f.Severity == tree.SeverityError {
				msgs = append(msgs, f.Error())
			}
		}
		return zygo.SexpNull, fmt.Errorf("tree %q is invalid: %s", label, strings.Join(msgs, "; "))
	}

	b.result.Trees = append(b.result.Trees, t)
	return &sexpTree{t: t}, nil
}

// -----------------------------------------------------------------------
// (split t) -> [axon dendrites], or [t] for a single compartment
// -----------------------------------------------------------------------
func (b *builtins) split(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("split requires exactly 1 argument, got %d", len(args))
	}
	t, err := toTree(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("split: %w", err)
	}
	axon, dendrites, ok := t.SplitCompartments()
	if !ok {
		return array(env, []zygo.Sexp{args[0]}), nil
	}
	b.result.Trees = append(b.result.Trees, axon, dendrites)
	return array(env, []zygo.Sexp{&sexpTree{t: axon}, &sexpTree{t: dendrites}}), nil
}

// -----------------------------------------------------------------------
// (hull t :points "tips" :dim 3 :label "x"), (hull (point ...) ...)
// -----------------------------------------------------------------------
func (b *builtins) hull(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) == 0 {
		return zygo.SexpNull, fmt.Errorf("hull requires a tree or points")
	}

	var (
		pts   pointset.Points
		is3D  bool
		label string
	)
	if t, err := toTree(pa.positional[0]); err == nil {
		kind := tree.AllPoints
		if v, ok := pa.kw["points"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("hull: points: %w", err)
			}
			if kind, err = tree.ParsePointKind(s); err != nil {
				return zygo.SexpNull, fmt.Errorf("hull: points: %w", err)
			}
		}
		pts = t.HullPoints(kind)
		is3D = t.Is3D()
		label = t.DisplayLabel()
	} else {
		for i, a := range pa.positional {
			pt, err := toPoint(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("hull: argument %d: %w", i, err)
			}
			pts = append(pts, pt)
			is3D = is3D || pt.Z != pts[0].Z
		}
		b.anon++
		label = fmt.Sprintf("hull %d", b.anon)
	}

	if v, ok := pa.kw["dim"]; ok {
		d, err := toInt(v)
		if err != nil || (d != 2 && d != 3) {
			return zygo.SexpNull, fmt.Errorf("hull: dim must be 2 or 3")
		}
		is3D = d == 3
	}
	if v, ok := pa.kw["label"]; ok {
		s, err := toString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hull: label: %w", err)
		}
		label = s
	}

	opts := []hull.Option{hull.WithEngine(b.engine.geometry)}
	var h hull.Hull
	if is3D {
		h = hull.New3D(pts, opts...)
	} else {
		h = hull.New2D(pts, opts...)
	}
	if err := h.Compute(b.ctx); err != nil {
		return zygo.SexpNull, fmt.Errorf("hull %q: %w", label, err)
	}
	return b.keep(h, label), nil
}

func (b *builtins) keep(h hull.Hull, label string) *sexpHull {
	b.result.Hulls = append(b.result.Hulls, NamedHull{Label: label, Hull: h})
	return &sexpHull{h: h, label: label}
}

// -----------------------------------------------------------------------
// (hull-size h), (hull-boundary h)
// -----------------------------------------------------------------------
func (b *builtins) hullSize(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	return b.measure("hull-size", args, hull.Hull.Size)
}

func (b *builtins) hullBoundary(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	return b.measure("hull-boundary", args, hull.Hull.BoundarySize)
}

func (b *builtins) measure(name string, args []zygo.Sexp, fn func(hull.Hull, context.Context) (float64, error)) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("%s requires exactly 1 argument, got %d", name, len(args))
	}
	h, err := toHullValue(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
	}
	v, err := fn(h, b.ctx)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
	}
	return &zygo.SexpFloat{Val: v}, nil
}

// -----------------------------------------------------------------------
// (hull-box h) -> [minx miny minz maxx maxy maxz]
// -----------------------------------------------------------------------
func (b *builtins) hullBox(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("hull-box requires exactly 1 argument, got %d", len(args))
	}
	h, err := toHullValue(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("hull-box: %w", err)
	}
	box := h.BoundingBox()
	if box.IsEmpty() {
		return zygo.SexpNull, nil
	}
	lo, hi := box.Min(), box.Max()
	vals := []float64{lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z}
	items := make([]zygo.Sexp, len(vals))
	for i, v := range vals {
		items[i] = &zygo.SexpFloat{Val: v}
	}
	return array(env, items), nil
}

// -----------------------------------------------------------------------
// (intersect h1 h2 ... :label "overlap")
// -----------------------------------------------------------------------
func (b *builtins) intersect(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) < 2 {
		return zygo.SexpNull, fmt.Errorf("intersect requires at least 2 hulls")
	}
	hulls := make([]*sexpHull, len(pa.positional))
	labels := make([]string, len(pa.positional))
	for i, a := range pa.positional {
		h, err := toHull(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: argument %d: %w", i, err)
		}
		hulls[i], labels[i] = h, h.label
	}

	label := strings.Join(labels, " & ")
	if v, ok := pa.kw["label"]; ok {
		s, err := toString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: label: %w", err)
		}
		label = s
	}

	others := make([]hull.Hull, 0, len(hulls)-1)
	for _, h := range hulls[1:] {
		others = append(others, h.h)
	}
	inter, err := hulls[0].h.Intersection(b.ctx, others...)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("intersect %q: %w", label, err)
	}
	return b.keep(inter, label), nil
}

// -----------------------------------------------------------------------
// (analyze t) or (analyze h) -> [["Boundary size" 12.5] ...]
// -----------------------------------------------------------------------
func (b *builtins) analyze(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("analyze requires exactly 1 argument, got %d", len(args))
	}
	a, err := b.analyzer(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("analyze: %w", err)
	}
	mm, err := a.Analysis(b.ctx)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("analyze %q: %w", a.Label(), err)
	}
	if err := a.Dump(b.ctx, b.result.Table); err != nil {
		return zygo.SexpNull, fmt.Errorf("analyze: %w", err)
	}

	pairs := make([]zygo.Sexp, 0, mm.Len())
	for metric, v := range mm.All() {
		pairs = append(pairs, array(env, []zygo.Sexp{&zygo.SexpStr{S: metric}, &zygo.SexpFloat{Val: v}}))
	}
	return array(env, pairs), nil
}

// -----------------------------------------------------------------------
// (metric t "Size")
// -----------------------------------------------------------------------
func (b *builtins) metric(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 {
		return zygo.SexpNull, fmt.Errorf("metric requires a tree or hull and a metric name")
	}
	a, err := b.analyzer(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("metric: %w", err)
	}
	m, err := toKeywordString(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("metric: name: %w", err)
	}
	v, err := a.Get(b.ctx, m)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("metric: %w", err)
	}
	return &zygo.SexpFloat{Val: v}, nil
}

// analyzer returns the cached analyzer for a tree or hull argument.
func (b *builtins) analyzer(s zygo.Sexp) (*analysis.Analyzer, error) {
	opts := append([]analysis.Option{
		analysis.WithEngine(b.engine.geometry),
		analysis.WithLogger(b.engine.logger),
	}, b.engine.analysis...)

	switch v := s.(type) {
	case *sexpTree:
		if a, ok := b.analyzers[v.t]; ok {
			return a, nil
		}
		a := analysis.New(v.t, opts...)
		b.analyzers[v.t] = a
		return a, nil
	case *sexpHull:
		if a, ok := b.analyzers[v.h]; ok {
			return a, nil
		}
		a := analysis.NewFromHull(v.h, v.label, opts...)
		b.analyzers[v.h] = a
		return a, nil
	}
	return nil, fmt.Errorf("expected tree or hull, got %T (%s)", s, s.SexpString(nil))
}
