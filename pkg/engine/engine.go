// Package engine evaluates bulk-analysis scripts. It wraps zygomys in a
// sandboxed environment with builtins for building trees, computing hulls
// and collecting metrics into a table.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/arborhull/pkg/analysis"
	"github.com/chazu/arborhull/pkg/geom"
	"github.com/chazu/arborhull/pkg/geom/sdfx"
	"github.com/chazu/arborhull/pkg/hull"
	"github.com/chazu/arborhull/pkg/table"
	"github.com/chazu/arborhull/pkg/tree"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// NamedHull is a hull produced by a script, with the label it was given.
type NamedHull struct {
	Label string
	Hull  hull.Hull
}

// Result is the output of a successful evaluation.
type Result struct {
	// Table holds one row per analysed tree or hull.
	Table *table.Table
	// Hulls lists every hull built by `hull` or `intersect`, in order.
	Hulls []NamedHull
	// Trees lists every tree built by `tree` or `split`, in order.
	Trees []*tree.Tree
	// Value is the printed form of the last expression.
	Value string
}

func newResult() *Result {
	return &Result{Table: table.New()}
}

// Engine wraps the zygomys interpreter for script evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	timeout  time.Duration
	geometry geom.Engine
	analysis []analysis.Option
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithEvalTimeout bounds a whole evaluation. The default is EvalTimeout.
func WithEvalTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithGeometry selects the geometry engine used by hull builtins.
func WithGeometry(g geom.Engine) Option {
	return func(e *Engine) { e.geometry = g }
}

// WithAnalysisOptions sets the options every `analyze` call starts from.
func WithAnalysisOptions(opts ...analysis.Option) Option {
	return func(e *Engine) { e.analysis = opts }
}

// WithLogger sets the logger handed to analyzers.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout}
	for _, o := range opts {
		o(e)
	}
	if e.geometry == nil {
		e.geometry = sdfx.New()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Evaluate runs source with a background context.
func (e *Engine) Evaluate(source string) (*Result, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext takes script source and produces a Result.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
// ctx is passed to every hull computation the script triggers.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, panic, cancellation): returns nil + nil + error
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*Result, []EvalError, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("evaluation cancelled: %w", err)
	}

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(ctx, source)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ctx, ch, e.timeout, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(ctx context.Context, source string) (*Result, []EvalError, error) {
	res := newResult()

	// Empty source is a valid program that produces an empty result.
	if strings.TrimSpace(source) == "" {
		return res, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := &builtins{ctx: ctx, engine: e, result: res, analyzers: make(map[any]*analysis.Analyzer)}
	b.register(env)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	last, err := env.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, parseZygomysError(err), nil
	}
	if last != nil {
		res.Value = last.SexpString(nil)
	}
	return res, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
