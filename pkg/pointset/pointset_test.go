package pointset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxInclude(t *testing.T) {
	var b BoundingBox
	assert.True(t, b.IsEmpty())
	assert.Equal(t, [3]float64{}, b.Dimensions())

	b = NewBoundingBox(Point{1, 2, 3}, Point{-1, 5, 0}, Point{0, 0, 4})
	assert.False(t, b.IsEmpty())
	assert.Equal(t, Point{-1, 0, 0}, b.Min())
	assert.Equal(t, Point{1, 5, 4}, b.Max())
	assert.Equal(t, [3]float64{2, 5, 4}, b.Dimensions())
	assert.Equal(t, Point{0, 2.5, 2}, b.Centroid())
	assert.InDelta(t, math.Sqrt(4+25+16), b.Diagonal(), 1e-12)
}

func TestBoundingBoxContains(t *testing.T) {
	b := FromCorners(Point{1, 1, 1}, Point{0, 0, 0})
	assert.True(t, b.Contains(Point{0.5, 0.5, 0.5}))
	assert.True(t, b.Contains(Point{1, 1, 1}), "boundary is inside")
	assert.False(t, b.Contains(Point{0.5, 0.5, 2}))
	assert.True(t, b.Contains2D(Point{0.5, 0.5, 2}), "z is ignored in 2D")
	assert.False(t, b.Contains2D(Point{2, 0.5, 0}))

	assert.True(t, b.ContainsBox(FromCorners(Point{0.2, 0.2, 0.2}, Point{0.8, 0.8, 0.8})))
	assert.False(t, b.ContainsBox(FromCorners(Point{0.2, 0.2, 0.2}, Point{1.8, 0.8, 0.8})))
	assert.False(t, BoundingBox{}.Contains(Point{}))
}

func TestBoundingBoxIntersection(t *testing.T) {
	a := FromCorners(Point{0, 0, 0}, Point{2, 2, 2})
	b := FromCorners(Point{1, 1, 1}, Point{3, 3, 3})

	got := a.Intersection(b)
	assert.Equal(t, Point{1, 1, 1}, got.Min())
	assert.Equal(t, Point{2, 2, 2}, got.Max())

	far := FromCorners(Point{5, 5, 5}, Point{6, 6, 6})
	assert.True(t, a.Intersection(far).IsEmpty())
	assert.True(t, a.Intersection(BoundingBox{}).IsEmpty())

	// Boxes at different depths still overlap once flattened.
	high := FromCorners(Point{1, 1, 10}, Point{3, 3, 11})
	assert.True(t, a.Intersection(high).IsEmpty())
	flat := a.Flatten().Intersection(high.Flatten())
	assert.False(t, flat.IsEmpty())
	assert.Equal(t, 1.0, flat.Width())
	assert.True(t, flat.Contains2D(Point{1.5, 1.5, -100}))
}

func TestBoundingBoxCombine(t *testing.T) {
	a := FromCorners(Point{0, 0, 0}, Point{1, 1, 1})
	b := FromCorners(Point{2, -1, 0}, Point{3, 0, 5})
	c := a.Combine(b)
	assert.Equal(t, Point{0, -1, 0}, c.Min())
	assert.Equal(t, Point{3, 1, 5}, c.Max())
	assert.Equal(t, a, a.Combine(BoundingBox{}))
	assert.Equal(t, a, BoundingBox{}.Combine(a))
}

type labelled struct {
	name string
	pos  Point
}

func (l labelled) Position() Point { return l.pos }

func TestCollect(t *testing.T) {
	items := []labelled{{"a", Point{1, 2, 3}}, {"b", Point{4, 5, 6}}}
	pts := Collect(items)
	assert.Equal(t, Points{{1, 2, 3}, {4, 5, 6}}, pts)
	assert.Len(t, pts.Vecs(), 2)
	assert.Equal(t, 5.0, pts.Vecs2()[1].Y)

	clone := pts.Clone()
	clone[0].X = 99
	assert.Equal(t, 1.0, pts[0].X)

	assert.True(t, Point{1, 2, 3}.IsFinite())
	assert.False(t, Point{math.Inf(1), 0, 0}.IsFinite())
	assert.Equal(t, 5.0, Point{0, 0, 0}.DistanceTo(Point{3, 4, 0}))
}

func TestSpan(t *testing.T) {
	tests := []struct {
		name string
		pts  Points
		want int
	}{
		{"empty", nil, 0},
		{"repeated", Points{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}, 0},
		{"diagonal line", Points{{0, 0, 0}, {1, 1, 0}, {2, 2, 0}, {3, 3, 0}}, 1},
		{"space diagonal", Points{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}, {4, 4, 4}}, 1},
		{"tilted plane", Points{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}, {1, 1, -1}}, 2},
		{"tetrahedron", Points{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, 3},
		{"line then off axis", Points{{0, 0, 0}, {0, 0, 0}, {2, 2, 0}, {5, 5, 0}, {5, 6, 0}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Span
			for _, p := range tt.pts {
				s.Add(p)
			}
			assert.Equal(t, tt.want, s.Dim())
			assert.Equal(t, len(tt.pts), s.Len())
		})
	}
}
