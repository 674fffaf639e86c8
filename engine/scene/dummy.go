package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// bboxSentinel is the magnitude used by an invalidated bounding box.
const bboxSentinel = 1e16

// BBox is an axis-aligned bounding box given by two extreme corners.
type BBox struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// InvalidBBox returns a box in the invalid state, ready to be grown with Extend.
func InvalidBBox() BBox {
	var b BBox
	b.Invalidate()
	return b
}

// Invalidate moves Min to positive and Max to negative infinity so that the first Extend sets
// both corners.
func (b *BBox) Invalidate() {
	b.Min = mgl32.Vec3{bboxSentinel, bboxSentinel, bboxSentinel}
	b.Max = mgl32.Vec3{-bboxSentinel, -bboxSentinel, -bboxSentinel}
}

// IsValid reports whether the box holds at least one point.
func (b BBox) IsValid() bool {
	return b.Min.X() <= b.Max.X()
}

// Extend grows the box to contain p.
func (b *BBox) Extend(p mgl32.Vec3) {
	for i := range 3 {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// Expand returns the 8 corners of the box. Bit 0 of the index selects max x, bit 1 max y and
// bit 2 max z.
func (b BBox) Expand() [8]mgl32.Vec3 {
	var corners [8]mgl32.Vec3
	for i := range corners {
		c := b.Min
		if i&1 != 0 {
			c[0] = b.Max[0]
		}
		if i&2 != 0 {
			c[1] = b.Max[1]
		}
		if i&4 != 0 {
			c[2] = b.Max[2]
		}
		corners[i] = c
	}
	return corners
}

// BoundingSphere returns the sphere through the corners of the box, or the zero sphere for an
// invalid box.
func (b BBox) BoundingSphere() BSphere {
	if !b.IsValid() {
		return BSphere{}
	}
	center := b.Min.Add(b.Max).Mul(0.5)
	return BSphere{Pos: center, Radius: b.Max.Sub(center).Len()}
}

// BSphere is a bounding sphere.
type BSphere struct {
	Pos    mgl32.Vec3
	Radius float32
}

// Dummy is a helper node carrying a bounding box, used to mark volumes and pivot points.
type Dummy struct {
	Frame
	bbox BBox
}

var _ Node = &Dummy{}

// NewDummy returns a detached dummy node with an invalid bounding box.
func NewDummy() *Dummy {
	d := &Dummy{bbox: InvalidBBox()}
	d.init(KindDummy, d)
	return d
}

func (d *Dummy) BBox() BBox        { return d.bbox }
func (d *Dummy) SetBBox(bbox BBox) { d.bbox = bbox }

func (d *Dummy) Duplicate(src Node) {
	if s, ok := src.(*Dummy); ok {
		d.bbox = s.bbox
	}
	d.Frame.Duplicate(src)
}
