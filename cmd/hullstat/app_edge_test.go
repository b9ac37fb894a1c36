package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/chazu/arborhull/pkg/analysis"
)

// ---------------------------------------------------------------------------
// 1. Syntax error after valid code: eval error, 0 meshes.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := newTestApp(t, nil)

	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	source := "(+ 1 2)\n(hull (point 0 0)"
	result := app.Evaluate(context.Background(), source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(result.Meshes))
	}

	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

// ---------------------------------------------------------------------------
// 2. Degenerate input: collinear or repeated points -> eval error.
// ---------------------------------------------------------------------------

func TestE2EDegenerateHulls(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		name   string
		source string
	}{
		{"collinear", `(hull (point 0 0) (point 1 1) (point 2 2) (point 3 3))`},
		{"repeated", `(hull (point 1 1) (point 1 1) (point 1 1))`},
		{"coplanar 3D", `(hull (point 0 0 1) (point 1 0 0) (point 0 1 0) (point 1 1 -1) :dim 3)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := app.Evaluate(context.Background(), tt.source)
			if len(result.Errors) == 0 {
				t.Fatal("expected an error for a degenerate hull")
			}
			if len(result.Meshes) != 0 {
				t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
			}
		})
	}
}

// ---------------------------------------------------------------------------
// 3. Sparse trees analyse to NaN without failing the script.
// ---------------------------------------------------------------------------

func TestE2ESparseTreeAnalysis(t *testing.T) {
	app := newTestApp(t, nil)

	source := `
(def twig (tree "twig" (path :name "d" (point 0 0) (point 5 0))))
(analyze twig)
`
	result := app.Evaluate(context.Background(), source)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Table.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", result.Table.Len())
	}
	row := result.Table.Rows()[0]
	for _, m := range analysis.SupportedMetrics() {
		if v, ok := row.Value(column(m)); !ok || !math.IsNaN(v) {
			t.Errorf("sparse tree %s = %v (present %v), want NaN", m, v, ok)
		}
	}
}

// ---------------------------------------------------------------------------
// 4. Large coordinates: valid mesh without overflow.
// ---------------------------------------------------------------------------

func TestE2ELargeCoordinates(t *testing.T) {
	app := newTestApp(t, nil)

	source := `(hull (point 0 0 0) (point 1000000 0 0) (point 0 1000000 0) (point 0 0 1000000) (point 1000000 1000000 1000000))`
	result := app.Evaluate(context.Background(), source)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	for i, v := range result.Meshes[0].Vertices {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("vertex component %d is %v", i, v)
		}
	}
}

// ---------------------------------------------------------------------------
// 5. Comments only: 0 meshes, 0 errors.
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	app := newTestApp(t, nil)

	source := `
;; This is a comment
;; Another comment
  ; And another	with tabs
`
	result := app.Evaluate(context.Background(), source)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for comments-only source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for comments-only source, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 6. Nested expressions: defs with arithmetic feed point coordinates.
// ---------------------------------------------------------------------------

func TestE2ENestedArithmeticDef(t *testing.T) {
	app := newTestApp(t, nil)

	source := `
(def base-size 40)
(def margin 5)
(def inner-size (- base-size (* 2 margin)))

(hull :label "inner"
  (point 0 0) (point inner-size 0) (point inner-size inner-size) (point 0 inner-size))
`
	result := app.Evaluate(context.Background(), source)
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	m := result.Meshes[0]
	if m.Label != "inner" {
		t.Errorf("expected label 'inner', got %q", m.Label)
	}
	var maxX float32
	for i := 0; i < len(m.Vertices); i += 3 {
		maxX = max(maxX, m.Vertices[i])
	}
	if maxX != 30 {
		t.Errorf("max x = %v, want 30", maxX)
	}
}

// ---------------------------------------------------------------------------
// 7. Many hulls: every mesh gets its own colour.
// ---------------------------------------------------------------------------

func TestE2EDistinctColors(t *testing.T) {
	app := newTestApp(t, nil)

	var b strings.Builder
	for i := range 9 {
		x := float64(i * 10)
		fmt.Fprintf(&b, "(hull :label \"h%d\" (point %g 0) (point %g 0) (point %g 5))\n", i, x, x+4, x+2)
	}
	result := app.Evaluate(context.Background(), b.String())
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 9 {
		t.Fatalf("expected 9 meshes, got %d", len(result.Meshes))
	}

	seen := make(map[string]string)
	for _, m := range result.Meshes {
		if m.Color == "" {
			t.Errorf("mesh %q has no colour", m.Label)
			continue
		}
		if other, dup := seen[m.Color]; dup {
			t.Errorf("meshes %q and %q share colour %s", other, m.Label, m.Color)
		}
		seen[m.Color] = m.Label
	}
}
