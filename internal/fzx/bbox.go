package fzx

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BBox is an axis-aligned bounding box.
//
// The zero-extent "empty" box returned by EmptyBBox is inverted
// (Min = +Inf, Max = -Inf) so that folding points into it starts from
// nothing.
type BBox struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Vertex is any record carrying a position, such as a mesh vertex.
type Vertex interface {
	VertexPosition() mgl64.Vec3
}

func EmptyBBox() BBox {
	inf := math.Inf(1)
	return BBox{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// NewBBox builds a box from two extremes.
func NewBBox(lo, hi mgl64.Vec3) BBox {
	return BBox{Min: lo, Max: hi}
}

// BBoxFromPoints folds points into the smallest enclosing box.
func BBoxFromPoints(points ...mgl64.Vec3) BBox {
	b := EmptyBBox()
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}

// BBoxFromVertices folds vertex positions the same way BBoxFromPoints does.
func BBoxFromVertices[V Vertex](vertices []V) BBox {
	b := EmptyBBox()
	for _, v := range vertices {
		b = b.Extend(v.VertexPosition())
	}
	return b
}

// IsEmpty reports whether the box encloses no point.
func (b BBox) IsEmpty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

func (b BBox) Extend(p mgl64.Vec3) BBox {
	return BBox{
		Min: mgl64.Vec3{math.Min(b.Min.X(), p.X()), math.Min(b.Min.Y(), p.Y()), math.Min(b.Min.Z(), p.Z())},
		Max: mgl64.Vec3{math.Max(b.Max.X(), p.X()), math.Max(b.Max.Y(), p.Y()), math.Max(b.Max.Z(), p.Z())},
	}
}

func (b BBox) Union(o BBox) BBox {
	if o.IsEmpty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Translate shifts the box by v. An empty box stays empty.
func (b BBox) Translate(v mgl64.Vec3) BBox {
	if b.IsEmpty() {
		return b
	}
	return BBox{Min: b.Min.Add(v), Max: b.Max.Add(v)}
}

func (b BBox) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b BBox) Size() mgl64.Vec3 {
	if b.IsEmpty() {
		return mgl64.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Corners returns the eight corners, bit i of the index selecting Max on
// axis i.
func (b BBox) Corners() [8]mgl64.Vec3 {
	var corners [8]mgl64.Vec3
	for i := range corners {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				corners[i][axis] = b.Max[axis]
			} else {
				corners[i][axis] = b.Min[axis]
			}
		}
	}
	return corners
}

// AxisAlignedAfterTransform transforms all eight corners by m and folds
// them into a new axis-aligned box.
func (b BBox) AxisAlignedAfterTransform(m mgl64.Mat4) BBox {
	if b.IsEmpty() {
		return EmptyBBox()
	}
	out := EmptyBBox()
	for _, c := range b.Corners() {
		out = out.Extend(m.Mul4x1(c.Vec4(1)).Vec3())
	}
	return out
}

// Collides reports whether the boxes overlap on all three axes. Touching
// faces count as overlap.
func (b BBox) Collides(o BBox) bool {
	return b.Max.X() >= o.Min.X() && b.Min.X() <= o.Max.X() &&
		b.Max.Y() >= o.Min.Y() && b.Min.Y() <= o.Max.Y() &&
		b.Max.Z() >= o.Min.Z() && b.Min.Z() <= o.Max.Z()
}

// ApproxEqual compares both corners component-wise within the absolute
// tolerance eps. Two empty boxes are equal.
func (b BBox) ApproxEqual(o BBox, eps float64) bool {
	if b.IsEmpty() && o.IsEmpty() {
		return true
	}
	for i := range 3 {
		if !(math.Abs(b.Min[i]-o.Min[i]) <= eps) || !(math.Abs(b.Max[i]-o.Max[i]) <= eps) {
			return false
		}
	}
	return true
}
