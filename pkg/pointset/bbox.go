package pointset

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// BoundingBox is an axis-aligned box. The zero value is empty and absorbs
// the first included point.
type BoundingBox struct {
	box   sdf.Box3
	valid bool
}

// NewBoundingBox returns the smallest box enclosing points.
func NewBoundingBox(points ...Point) BoundingBox {
	var b BoundingBox
	for _, p := range points {
		b = b.Include(p)
	}
	return b
}

// FromCorners builds a box from two opposite corners in any order.
func FromCorners(a, b Point) BoundingBox {
	return BoundingBox{
		box:   sdf.Box3{Min: a.Vec().Min(b.Vec()), Max: a.Vec().Max(b.Vec())},
		valid: true,
	}
}

// Include returns b grown to contain p.
func (b BoundingBox) Include(p Point) BoundingBox {
	v := p.Vec()
	if !b.valid {
		return BoundingBox{box: sdf.Box3{Min: v, Max: v}, valid: true}
	}
	b.box = sdf.Box3{Min: b.box.Min.Min(v), Max: b.box.Max.Max(v)}
	return b
}

// Combine returns the smallest box enclosing both b and o.
func (b BoundingBox) Combine(o BoundingBox) BoundingBox {
	switch {
	case !o.valid:
		return b
	case !b.valid:
		return o
	}
	return BoundingBox{box: b.box.Extend(o.box), valid: true}
}

// Intersection returns the overlap of b and o, or an empty box when they
// are disjoint.
func (b BoundingBox) Intersection(o BoundingBox) BoundingBox {
	if !b.valid || !o.valid {
		return BoundingBox{}
	}
	lo := b.box.Min.Max(o.box.Min)
	hi := b.box.Max.Min(o.box.Max)
	if lo.X > hi.X || lo.Y > hi.Y || lo.Z > hi.Z {
		return BoundingBox{}
	}
	return BoundingBox{box: sdf.Box3{Min: lo, Max: hi}, valid: true}
}

// Flatten drops the z extent so that only the xy footprint constrains
// containment and intersection.
func (b BoundingBox) Flatten() BoundingBox {
	if !b.valid {
		return b
	}
	b.box.Min.Z = math.Inf(-1)
	b.box.Max.Z = math.Inf(1)
	return b
}

// IsEmpty reports whether b encloses nothing.
func (b BoundingBox) IsEmpty() bool { return !b.valid }

// Contains reports whether p lies inside b, boundary included.
func (b BoundingBox) Contains(p Point) bool {
	return b.valid && b.box.Contains(p.Vec())
}

// Contains2D reports whether the xy projection of p lies inside the xy
// footprint of b.
func (b BoundingBox) Contains2D(p Point) bool {
	return b.valid &&
		p.X >= b.box.Min.X && p.X <= b.box.Max.X &&
		p.Y >= b.box.Min.Y && p.Y <= b.box.Max.Y
}

// ContainsBox reports whether o lies entirely inside b.
func (b BoundingBox) ContainsBox(o BoundingBox) bool {
	return b.valid && o.valid && b.box.Contains(o.box.Min) && b.box.Contains(o.box.Max)
}

func (b BoundingBox) Min() Point { return FromVec(b.box.Min) }
func (b BoundingBox) Max() Point { return FromVec(b.box.Max) }

// Width is the x extent.
func (b BoundingBox) Width() float64 { return b.size().X }

// Height is the y extent.
func (b BoundingBox) Height() float64 { return b.size().Y }

// Depth is the z extent.
func (b BoundingBox) Depth() float64 { return b.size().Z }

// Dimensions returns width, height and depth.
func (b BoundingBox) Dimensions() [3]float64 {
	s := b.size()
	return [3]float64{s.X, s.Y, s.Z}
}

// Centroid is the box centre.
func (b BoundingBox) Centroid() Point {
	if !b.valid {
		return Point{}
	}
	return FromVec(b.box.Center())
}

// Diagonal is the length of the main diagonal.
func (b BoundingBox) Diagonal() float64 {
	return b.size().Length()
}

// Box3 exposes the underlying sdfx box.
func (b BoundingBox) Box3() sdf.Box3 { return b.box }

func (b BoundingBox) size() v3.Vec {
	if !b.valid {
		return v3.Vec{}
	}
	return b.box.Size()
}
