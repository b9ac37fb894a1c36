package pointset

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// spanTolerance is relative to the lengths of the vectors compared.
const spanTolerance = 1e-12

// Span tracks the affine dimension of a growing point set: 0 for a single
// point, 1 for a line, 2 for a plane and 3 for a solid. The zero value is
// an empty span.
type Span struct {
	n      int
	dim    int
	origin v3.Vec
	dir    v3.Vec
	normal v3.Vec
}

// Add extends the span with p and returns the new dimension.
func (s *Span) Add(p Point) int {
	v := p.Vec()
	s.n++
	if s.n == 1 {
		s.origin = v
		return 0
	}
	d := v.Sub(s.origin)
	switch s.dim {
	case 0:
		if d.Length() > 0 {
			s.dir, s.dim = d, 1
		}
	case 1:
		n := s.dir.Cross(d)
		if n.Length() > spanTolerance*s.dir.Length()*d.Length() {
			s.normal, s.dim = n, 2
		}
	case 2:
		if math.Abs(s.normal.Dot(d)) > spanTolerance*s.normal.Length()*d.Length() {
			s.dim = 3
		}
	}
	return s.dim
}

// Dim is the affine dimension seen so far.
func (s *Span) Dim() int { return s.dim }

// Len is the number of points added.
func (s *Span) Len() int { return s.n }
