package geom

import "errors"

var (
	// ErrDegenerate is returned when the input spans fewer dimensions than
	// the requested hull, e.g. collinear points for a polygon.
	ErrDegenerate = errors.New("degenerate geometry")

	// ErrUnsupported is returned when a measure is undefined for a shape.
	ErrUnsupported = errors.New("unsupported shape")

	// ErrTimeout is returned when an engine call exceeds its time limit.
	ErrTimeout = errors.New("geometry engine timed out")
)
