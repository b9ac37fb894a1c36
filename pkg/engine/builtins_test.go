package engine

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/chazu/arborhull/pkg/analysis"
	"github.com/chazu/arborhull/pkg/hull"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(path :name "dend")`,
			expect: `(path "__kw_name" "dend")`,
		},
		{
			name:   "multiple keywords",
			input:  `(hull cell :points "tips" :dim 3)`,
			expect: `(hull cell "__kw_points" "tips" "__kw_dim" 3)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(hull-size h)`,
			expect: `(hull_size h)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative coordinate preserved",
			input:  `(point -5 30 0)`,
			expect: `(point -5 30 0)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:hull-points`,
			expect: `"__kw_hull-points"`,
		},
		{
			name:   "escaped quote keeps keyword inside string",
			input:  `(tree "a \" :dim" :dim 3)`,
			expect: `(tree "a \" :dim" "__kw_dim" 3)`,
		},
		{
			name:   "unterminated string copied to the end",
			input:  `(tree "open :label`,
			expect: `(tree "open :label`,
		},
		{
			name:   "backtick string untouched",
			input:  "(hull `:dim hull-size`)",
			expect: "(hull `:dim hull-size`)",
		},
		{
			name:   "comment then code on next line",
			input:  "; header\n(hull-box h :dim 2)",
			expect: "// header\n(hull_box h \"__kw_dim\" 2)",
		},
		{
			name:   "lone colon",
			input:  `(f : 1)`,
			expect: `(f : 1)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// mustEval evaluates source and fails on any error.
func mustEval(t *testing.T, source string) *Result {
	t.Helper()
	res, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	return res
}

// mustFail evaluates source and expects an eval error containing substr.
func mustFail(t *testing.T, source, substr string) {
	t.Helper()
	res, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected eval error, got fatal: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	if !strings.Contains(evalErrs[0].Message, substr) {
		t.Errorf("error %q should contain %q", evalErrs[0].Message, substr)
	}
}

const squareTree = `
(def cell (tree "square"
  (path :name "dend" :type 3
    (point 0 0) (point 1 0) (point 1 1) (point 0 1))))
`

const cubeTree = `
(def cube (tree "cube"
  (path :name "dend"
    (point 0 0 0) (point 1 0 0) (point 1 1 0) (point 0 1 0)
    (point 0 0 1) (point 1 0 1) (point 1 1 1) (point 0 1 1))))
`

// ---------------------------------------------------------------------------
// Trees
// ---------------------------------------------------------------------------

func TestTreeBuiltin(t *testing.T) {
	res := mustEval(t, `
(tree "cell" :unit "mm"
  (path :name "soma" :type "soma" (point 0 0 0))
  (path :name "axon" :type 2 :parent "soma" (point 0 -10 0) (point 0 -20 0))
  (path :name "dend" :type 3 :parent "soma" :at 0 (point 0 10 0) (point 5 20 0)))
`)
	if len(res.Trees) != 1 {
		t.Fatalf("expected 1 tree, got %d", len(res.Trees))
	}
	tr := res.Trees[0]
	if tr.Label != "cell" || tr.Unit != "mm" {
		t.Errorf("label/unit = %q/%q", tr.Label, tr.Unit)
	}
	if len(tr.Paths) != 3 || tr.NodeCount() != 5 {
		t.Fatalf("expected 3 paths and 5 nodes, got %d and %d", len(tr.Paths), tr.NodeCount())
	}
	axon := tr.Paths[1]
	if axon.Parent != 0 || axon.ParentNode != 0 {
		t.Errorf("axon attached at %d/%d, want 0/0", axon.Parent, axon.ParentNode)
	}
	if axon.Type().String() != "axon" {
		t.Errorf("axon type = %s", axon.Type())
	}
}

func TestTreeErrors(t *testing.T) {
	mustFail(t, `(tree "x" (path :parent "nope" (point 0 0)))`, "no earlier path")
	mustFail(t, `(tree "x" (point 0 0))`, "expected path")
	mustFail(t, `(tree "x")`, "invalid")
	mustFail(t, `(path :name "empty")`, "at least one point")
	mustFail(t, `(path :type "glia" (point 0 0))`, "type")
	mustFail(t, `(point 1)`, "2 or 3 arguments")
}

func TestSplitBuiltin(t *testing.T) {
	res := mustEval(t, `
(def cell (tree "cell"
  (path :name "soma" :type 1 (point 0 0))
  (path :name "axon" :type 2 :parent "soma" (point 0 -10) (point 0 -20))
  (path :name "dend" :type 3 :parent "soma" (point 0 10) (point 5 20))))
(split cell)
`)
	if len(res.Trees) != 3 {
		t.Fatalf("expected original plus 2 compartments, got %d trees", len(res.Trees))
	}
	if res.Trees[1].Label != "cell Axon" || res.Trees[2].Label != "cell Dendrites" {
		t.Errorf("compartment labels = %q, %q", res.Trees[1].Label, res.Trees[2].Label)
	}

	single := mustEval(t, squareTree+`(split cell)`)
	if len(single.Trees) != 1 {
		t.Errorf("single-compartment tree should not split, got %d trees", len(single.Trees))
	}
}

// ---------------------------------------------------------------------------
// Hulls
// ---------------------------------------------------------------------------

func TestHullFromTree(t *testing.T) {
	res := mustEval(t, cubeTree+`(hull cube)`)
	if len(res.Hulls) != 1 {
		t.Fatalf("expected 1 hull, got %d", len(res.Hulls))
	}
	h := res.Hulls[0]
	if h.Label != "cube" {
		t.Errorf("label = %q, want %q", h.Label, "cube")
	}
	if _, ok := h.Hull.(*hull.ConvexHull3D); !ok {
		t.Fatalf("expected 3D hull, got %T", h.Hull)
	}
	if !h.Hull.Computed() {
		t.Fatal("script hulls are computed")
	}
	size, err := h.Hull.Size(context.Background())
	if err != nil || math.Abs(size-1) > 1e-9 {
		t.Errorf("size = %v, %v; want 1", size, err)
	}
}

func TestHullDimOverride(t *testing.T) {
	res := mustEval(t, cubeTree+`(hull cube :dim 2 :label "footprint")`)
	h := res.Hulls[0]
	if h.Label != "footprint" {
		t.Errorf("label = %q", h.Label)
	}
	if _, ok := h.Hull.(*hull.ConvexHull2D); !ok {
		t.Fatalf("expected 2D hull, got %T", h.Hull)
	}
}

func TestHullPointsKind(t *testing.T) {
	res := mustEval(t, `
(def cell (tree "fork"
  (path :name "trunk" (point 0 0) (point 0 10))
  (path :name "left" :parent "trunk" (point -5 20) (point -10 30))
  (path :name "right" :parent "trunk" (point 5 20) (point 10 30))
  (path :name "back" :parent "trunk" :at 0 (point 10 -5))))
(hull cell :points "tips")
`)
	pts := res.Hulls[0].Hull.Points()
	if len(pts) != 3 {
		t.Errorf("expected 3 tips, got %d", len(pts))
	}
}

func TestHullMeasures(t *testing.T) {
	res := mustEval(t, squareTree+`
(def h (hull cell))
(def s (hull-size h))
(def p (hull-boundary h))
(hull-box h)
`)
	if len(res.Hulls) != 1 {
		t.Fatalf("expected 1 hull, got %d", len(res.Hulls))
	}
	if res.Value == "" || !strings.Contains(res.Value, "1") {
		t.Errorf("hull-box should print the corners, got %q", res.Value)
	}
}

func TestIntersect(t *testing.T) {
	res := mustEval(t, `
(def a (hull :label "a" (point 0 0 0) (point 2 0 0) (point 2 2 0) (point 0 2 0)
                        (point 0 0 2) (point 2 0 2) (point 2 2 2) (point 0 2 2)))
(def b (hull :label "b" (point 1 1 1) (point 3 1 1) (point 3 3 1) (point 1 3 1)
                        (point 1 1 3) (point 3 1 3) (point 3 3 3) (point 1 3 3)
                        (point 2 1 1) (point 1 2 1) (point 2 2 1) (point 1 1 2)
                        (point 2 1 2) (point 1 2 2) (point 2 2 2)))
(intersect a b)
`)
	if len(res.Hulls) != 3 {
		t.Fatalf("expected 3 hulls, got %d", len(res.Hulls))
	}
	inter := res.Hulls[2]
	if inter.Label != "a & b" {
		t.Errorf("label = %q, want %q", inter.Label, "a & b")
	}
	box := inter.Hull.BoundingBox()
	if box.Min().X != 1 || box.Max().X != 2 {
		t.Errorf("intersection box x range = [%v, %v], want [1, 2]", box.Min().X, box.Max().X)
	}
}

func TestHullErrors(t *testing.T) {
	mustFail(t, `(hull)`, "tree or points")
	mustFail(t, `(hull (point 0 0) (point 1 1) (point 2 2))`, "degenerate")
	mustFail(t, squareTree+`(hull cell :dim 4)`, "dim must be 2 or 3")
	mustFail(t, squareTree+`(hull cell :points "somata")`, "points")
	mustFail(t, `(hull-size 3)`, "expected hull")
	mustFail(t, squareTree+`(intersect (hull cell))`, "at least 2")
}

// ---------------------------------------------------------------------------
// Analysis
// ---------------------------------------------------------------------------

func TestAnalyze(t *testing.T) {
	res := mustEval(t, squareTree+`(analyze cell)`)
	if res.Table.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", res.Table.Len())
	}
	v, ok := res.Table.Value("square", "Convex hull: Size")
	if !ok || math.Abs(v-1) > 1e-9 {
		t.Errorf("size = %v (%v), want 1", v, ok)
	}
	if got := len(res.Table.Columns()); got != len(analysis.SupportedMetrics()) {
		t.Errorf("expected %d columns, got %d", len(analysis.SupportedMetrics()), got)
	}
	if !strings.Contains(res.Value, "Boundary size") {
		t.Errorf("analyze should return metric pairs, got %q", res.Value)
	}
}

func TestAnalyzeTwiceKeepsOneRow(t *testing.T) {
	res := mustEval(t, squareTree+`(analyze cell) (analyze cell) (metric cell "Roundness")`)
	if res.Table.Len() != 1 {
		t.Errorf("expected 1 row, got %d", res.Table.Len())
	}
}

func TestAnalyzeHull(t *testing.T) {
	res := mustEval(t, cubeTree+`(analyze (hull cube :label "envelope"))`)
	v, ok := res.Table.Value("envelope", "Convex hull: Boundary size")
	if !ok || math.Abs(v-6) > 1e-9 {
		t.Errorf("surface = %v (%v), want 6", v, ok)
	}
}

func TestAnalyzeSparseTree(t *testing.T) {
	res := mustEval(t, `(analyze (tree "pair" (path (point 0 0) (point 3 4))))`)
	v, ok := res.Table.Value("pair", "Convex hull: Size")
	if !ok || !math.IsNaN(v) {
		t.Errorf("sparse tree should give NaN, got %v (%v)", v, ok)
	}
}

func TestMetricErrors(t *testing.T) {
	mustFail(t, squareTree+`(metric cell "Volume")`, "unknown metric")
	mustFail(t, `(metric 1 "Size")`, "expected tree or hull")
	mustFail(t, `(analyze)`, "exactly 1 argument")
}

func TestAnalysisOptions(t *testing.T) {
	eng := NewEngine(WithAnalysisOptions(analysis.WithDumpMetrics(analysis.Size)))
	res, evalErrs, err := eng.Evaluate(squareTree + `(analyze cell)`)
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("evaluate: %v %v", err, evalErrs)
	}
	cols := res.Table.Columns()
	if len(cols) != 1 || cols[0] != "Convex hull: Size" {
		t.Errorf("columns = %v, want only size", cols)
	}
}
