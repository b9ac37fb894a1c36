package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/chazu/arborhull/pkg/analysis"
	"github.com/chazu/arborhull/pkg/config"
	"github.com/chazu/arborhull/pkg/engine"
	"github.com/chazu/arborhull/pkg/hull"
	"github.com/chazu/arborhull/pkg/render"
	"github.com/chazu/arborhull/pkg/table"
	"github.com/chazu/arborhull/pkg/tessellate"
	"github.com/chazu/arborhull/pkg/tree"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// App drives batch analysis. It owns the script engine and the analyzer
// options derived from configuration.
type App struct {
	engine   *engine.Engine
	options  *config.Options
	analysis []analysis.Option
	logger   *slog.Logger
}

// MeshData is the JSON-serializable mesh format written for viewers.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Label    string    `json:"label"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable script error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of running a script.
type EvalResult struct {
	Meshes []MeshData      `json:"meshes"`
	Errors []EvalErrorData `json:"errors"`
	Value  string          `json:"value"`

	// Table is not serialised; main writes it as CSV.
	Table *table.Table `json:"-"`
}

// Entry is one analysed reconstruction or compartment.
type Entry struct {
	Tree      *tree.Tree
	Analyzer  *analysis.Analyzer
	Color     colorful.Color // points, and 3D hulls
	HullColor colorful.Color // 2D hull outlines
}

// Batch is the outcome of analysing a set of trees.
type Batch struct {
	Table   *table.Table
	Entries []Entry
	Unit    string
}

// NewApp creates an App from options. A nil options value means defaults.
func NewApp(opts *config.Options, logger *slog.Logger) (*App, error) {
	if opts == nil {
		opts = config.Empty()
	}
	if logger == nil {
		logger = slog.Default()
	}
	aopts, err := analysis.OptionsFromConfig(opts)
	if err != nil {
		return nil, err
	}
	aopts = append(aopts, analysis.WithLogger(logger))
	return &App{
		engine: engine.NewEngine(
			engine.WithAnalysisOptions(aopts...),
			engine.WithLogger(logger),
		),
		options:  opts,
		analysis: aopts,
		logger:   logger,
	}, nil
}

// Evaluate runs a script and returns its meshes and errors.
func (a *App) Evaluate(ctx context.Context, source string) EvalResult {
	result := EvalResult{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}

	// Step 1: Evaluate the script.
	res, evalErrs, err := a.engine.EvaluateContext(ctx, source)
	if err != nil {
		a.logger.Error("evaluate", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	result.Table = res.Table
	result.Value = res.Value

	// Step 3: Tessellate every hull the script built, one colour each.
	colors := render.Palette(len(res.Hulls))
	items := make([]tessellate.Item, 0, len(res.Hulls))
	for i, nh := range res.Hulls {
		items = append(items, tessellate.Item{Label: nh.Label, Hull: nh.Hull, Color: colors[i]})
	}
	meshes, err := tessellate.TessellateAll(items)
	if err != nil {
		a.logger.Error("tessellate", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	// Step 4: Convert to the serialisable format.
	for _, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Label:    m.Label,
			Color:    m.Color,
		})
	}
	return result
}

// Analyze runs the convex hull analysis on every tree and collects one
// table row per tree, or per compartment when splitting is enabled.
func (a *App) Analyze(ctx context.Context, trees []*tree.Tree) (*Batch, error) {
	b := &Batch{Table: table.New(), Unit: a.options.GetUnit()}
	palette := render.Palette(len(trees))

	for i, t := range trees {
		if a.options.GetSplitCompartments() {
			if axon, dendrites, ok := t.SplitCompartments(); ok {
				is3D := t.Is3D()
				b.Entries = append(b.Entries,
					a.entry(axon, compartmentColors(tree.TypeAxon, is3D)),
					a.entry(dendrites, compartmentColors(tree.TypeDendrite, is3D)),
				)
				continue
			}
			a.logger.Debug("single compartment, analysing whole tree", "label", t.DisplayLabel())
		}
		c := palette[i]
		b.Entries = append(b.Entries, a.entry(t, [2]colorful.Color{c, render.Darken(c, 0.3)}))
	}

	for _, e := range b.Entries {
		if err := e.Analyzer.Dump(ctx, b.Table); err != nil {
			return nil, fmt.Errorf("analyze %s: %w", e.Analyzer.Label(), err)
		}
	}
	return b, nil
}

func (a *App) entry(t *tree.Tree, colors [2]colorful.Color) Entry {
	return Entry{
		Tree:      t,
		Analyzer:  analysis.New(t, a.analysis...),
		Color:     colors[0],
		HullColor: colors[1],
	}
}

// compartmentColors returns the point and hull colours for a compartment.
func compartmentColors(typ tree.SWCType, is3D bool) [2]colorful.Color {
	switch {
	case typ == tree.TypeAxon && is3D:
		return [2]colorful.Color{render.AxonColor, render.AxonColor}
	case typ == tree.TypeAxon:
		return [2]colorful.Color{render.AxonTree2DColor, render.AxonHull2DColor}
	case is3D:
		return [2]colorful.Color{render.DendriteColor, render.DendriteColor}
	default:
		return [2]colorful.Color{render.DendriteTree2DColor, render.DendriteHull2DColor}
	}
}

// Report prints every entry's metrics.
func (b *Batch) Report(ctx context.Context, w io.Writer) error {
	for _, e := range b.Entries {
		if err := e.Analyzer.Report(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// hulls returns the computed hulls of the entries that passed the
// computability guard, keeping only the requested dimensionality.
func (b *Batch) hulls(ctx context.Context, want3D bool) ([]Entry, []hull.Hull) {
	var entries []Entry
	var hulls []hull.Hull
	for _, e := range b.Entries {
		if e.Analyzer.Is3D() != want3D || !e.Analyzer.IsComputable() {
			continue
		}
		h, err := e.Analyzer.Hull(ctx)
		if err != nil || !h.Computed() {
			continue
		}
		entries = append(entries, e)
		hulls = append(hulls, h)
	}
	return entries, hulls
}

// SaveSTL writes the 3D hulls to a single STL file. Planar trees are
// skipped.
func (b *Batch) SaveSTL(ctx context.Context, path string) error {
	_, hulls := b.hulls(ctx, true)
	if len(hulls) == 0 {
		return fmt.Errorf("save stl: no 3D hulls")
	}
	return tessellate.SaveSTL(path, hulls...)
}

// SavePNG plots the points and hull outline of every 2D entry.
func (b *Batch) SavePNG(ctx context.Context, path string) error {
	entries, hulls := b.hulls(ctx, false)
	if len(entries) == 0 {
		return fmt.Errorf("save png: no 2D hulls")
	}
	layers := make([]render.Layer, len(entries))
	for i, e := range entries {
		layers[i] = render.Layer{
			Label:     e.Analyzer.Label(),
			Points:    e.Tree.Nodes(),
			Hull:      hulls[i].(*hull.ConvexHull2D).Polygon(),
			Color:     e.Color,
			HullColor: e.HullColor,
		}
	}
	return render.SavePNG(path, "Convex hull", b.Unit, layers...)
}

// Meshes tessellates every computed hull for viewers.
func (b *Batch) Meshes(ctx context.Context) ([]MeshData, error) {
	var items []tessellate.Item
	for _, want3D := range []bool{false, true} {
		entries, hulls := b.hulls(ctx, want3D)
		for i, e := range entries {
			c := e.Color
			if !want3D {
				c = e.HullColor
			}
			items = append(items, tessellate.Item{Label: e.Analyzer.Label(), Hull: hulls[i], Color: c})
		}
	}
	meshes, err := tessellate.TessellateAll(items)
	if err != nil {
		return nil, err
	}
	out := make([]MeshData, len(meshes))
	for i, m := range meshes {
		out[i] = MeshData{Vertices: m.Vertices, Normals: m.Normals, Indices: m.Indices, Label: m.Label, Color: m.Color}
	}
	return out, nil
}
