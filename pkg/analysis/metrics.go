package analysis

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"

	"cogentcore.org/core/base/ordmap"
)

// Metric names, also used as table column suffixes.
const (
	BoundarySize = "Boundary size"
	Boxivity     = "Boxivity"
	Elongation   = "Elongation"
	Roundness    = "Roundness"
	Size         = "Size"
	Compactness  = "Compactness"
	Eccentricity = "Eccentricity"
)

// SupportedMetrics lists every metric in the order analyses report them.
func SupportedMetrics() []string {
	return []string{BoundarySize, Boxivity, Elongation, Roundness, Size, Compactness, Eccentricity}
}

// IsSupported reports whether name is a known metric.
func IsSupported(name string) bool {
	return slices.Contains(SupportedMetrics(), name)
}

// MetricMap is a read-only, ordered view of an analysis result. It always
// holds every supported metric; inapplicable ones are NaN.
type MetricMap struct {
	m *ordmap.Map[string, float64]
}

func newMetricMap() *MetricMap {
	return &MetricMap{m: ordmap.New[string, float64]()}
}

// nanMetrics is the result for input that cannot be analysed.
func nanMetrics() *MetricMap {
	mm := newMetricMap()
	for _, name := range SupportedMetrics() {
		mm.m.Add(name, math.NaN())
	}
	return mm
}

// Get returns the value of name and whether it is present.
func (mm *MetricMap) Get(name string) (float64, bool) {
	return mm.m.ValueByKeyTry(name)
}

// Value returns the value of name, or NaN if absent.
func (mm *MetricMap) Value(name string) float64 {
	if v, ok := mm.Get(name); ok {
		return v
	}
	return math.NaN()
}

// Keys returns the metric names in order.
func (mm *MetricMap) Keys() []string { return mm.m.Keys() }

// Len returns the number of metrics.
func (mm *MetricMap) Len() int { return mm.m.Len() }

// All iterates over name, value pairs in order.
func (mm *MetricMap) All() iter.Seq2[string, float64] {
	return func(yield func(string, float64) bool) {
		for i := range mm.m.Len() {
			if !yield(mm.m.KeyByIndex(i), mm.m.ValueByIndex(i)) {
				return
			}
		}
	}
}

func (mm *MetricMap) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for name, v := range mm.All() {
		if sb.Len() > 1 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %g", name, v)
	}
	sb.WriteString("}")
	return sb.String()
}

// Unit returns the unit of metric for a hull measured in unit. Shape
// descriptors are dimensionless and return "".
func Unit(metric, unit string, is3D bool) string {
	switch metric {
	case Size:
		if is3D {
			return unit + "³"
		}
		return unit + "²"
	case BoundarySize:
		if is3D {
			return unit + "²"
		}
		return unit
	}
	return ""
}
