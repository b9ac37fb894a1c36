package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chazu/arborhull/pkg/config"
	"github.com/chazu/arborhull/pkg/table"
	"github.com/chazu/arborhull/pkg/tree"
)

// ColumnPrefix is prepended to metric names in table columns.
const ColumnPrefix = "Convex hull: "

// Dump writes the analysis to tbl. A row labelled with the analyzer's
// label is inserted unless one exists; the metrics are then set on the
// last row, so repeated dumps of one analyzer never add rows.
func (a *Analyzer) Dump(ctx context.Context, tbl *table.Table) error {
	mm, err := a.Analysis(ctx)
	if err != nil {
		return fmt.Errorf("dump %q: %w", a.label, err)
	}
	if tbl.RowIndex(a.label) < 0 {
		tbl.InsertRow(a.label)
	}
	for name, v := range mm.All() {
		if !a.dumps(name) {
			continue
		}
		tbl.AppendToLastRow(ColumnPrefix+name, v)
	}
	return nil
}

func (a *Analyzer) dumps(name string) bool {
	if len(a.dump) == 0 {
		return true
	}
	for _, d := range a.dump {
		if d == name {
			return true
		}
	}
	return false
}

// Report writes a human-readable summary of the analysis to w.
func (a *Analyzer) Report(ctx context.Context, w io.Writer) error {
	mm, err := a.Analysis(ctx)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Convex hull analysis for %s:\n", a.label); err != nil {
		return err
	}
	for name, v := range mm.All() {
		unit := a.Unit(name)
		if unit != "" {
			unit = " " + unit
		}
		if _, err := fmt.Fprintf(w, "\t%s:\t%g%s\n", name, v, unit); err != nil {
			return err
		}
	}
	return nil
}

// Log emits one structured record carrying every metric.
func (a *Analyzer) Log(ctx context.Context) error {
	mm, err := a.Analysis(ctx)
	if err != nil {
		return err
	}
	attrs := make([]any, 0, mm.Len()+2)
	attrs = append(attrs, slog.String("label", a.label), slog.Bool("3d", a.is3D))
	for name, v := range mm.All() {
		attrs = append(attrs, slog.Float64(name, v))
	}
	a.logger.InfoContext(ctx, "convex hull analysis", attrs...)
	return nil
}

func (a *Analyzer) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyzer(%s", a.label)
	if a.is3D {
		sb.WriteString(", 3D")
	} else {
		sb.WriteString(", 2D")
	}
	if a.metrics != nil {
		fmt.Fprintf(&sb, ", %s", a.metrics)
	}
	sb.WriteString(")")
	return sb.String()
}

// OptionsFromConfig translates loaded configuration into analyzer options.
func OptionsFromConfig(o *config.Options) ([]Option, error) {
	kind, err := tree.ParsePointKind(o.GetHullPoints())
	if err != nil {
		return nil, fmt.Errorf("hull points: %w", err)
	}
	for _, m := range o.Metrics {
		if !IsSupported(m) {
			return nil, fmt.Errorf("unknown metric %q (supported: %s)", m, strings.Join(SupportedMetrics(), ", "))
		}
	}
	opts := []Option{
		WithTimeout(o.GetEngineTimeout()),
		WithMinNodes(o.GetMinNodes()),
		WithPointKind(kind),
	}
	if o.Unit != nil {
		opts = append(opts, WithUnit(o.GetUnit()))
	}
	if len(o.Metrics) > 0 {
		opts = append(opts, WithDumpMetrics(o.Metrics...))
	}
	return opts, nil
}
