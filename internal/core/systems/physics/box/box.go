// Package box implements the geometric surface of hitboxes: oriented circles
// and rectangles placed in a parent/child transform hierarchy, their pivots,
// bounds and pairwise collision geometry.
//
// A Box is a closed tagged union. Shape selects which payload (Circle or
// Rect) is meaningful, and every collision routine switches on the pair of
// shapes instead of dispatching through an interface.
package box

import (
	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

// Shape discriminates the Box payload.
type Shape uint8

const (
	ShapeCircular Shape = iota
	ShapeRectangular
)

func (s Shape) String() string {
	switch s {
	case ShapeCircular:
		return "circular"
	case ShapeRectangular:
		return "rectangular"
	default:
		return "unknown"
	}
}

// PivotType tells how Pivot.Pos is interpreted.
type PivotType uint8

const (
	// PivotAbsolute is expressed in local (unscaled) units from the box center.
	PivotAbsolute PivotType = iota
	// PivotNormalized is a fraction of the box size; (0,0) is the center and
	// (0.5,0.5) the top-right corner.
	PivotNormalized
)

// Pivot is the point about which RelativeAngle rotation is applied.
type Pivot struct {
	Type PivotType
	Pos  geom.Point
}

// CenterPivot rotates a box about its own center.
var CenterPivot = Pivot{Type: PivotNormalized}

// Circle is the circular payload.
type Circle struct {
	Radius float64
}

// Rect is the rectangular payload. Width and Height are in local units; the
// vertex offsets and side axes are derived and cached by Recompute.
type Rect struct {
	Width  float64
	Height float64

	topLeftVertexOffset  geom.Point
	topRightVertexOffset geom.Point
	axisX                geom.Point
	axisY                geom.Point
}

// TopLeftVertexOffset is the world-space offset of the top-left vertex from the center.
func (r *Rect) TopLeftVertexOffset() geom.Point { return r.topLeftVertexOffset }

// TopRightVertexOffset is the world-space offset of the top-right vertex from the center.
func (r *Rect) TopRightVertexOffset() geom.Point { return r.topRightVertexOffset }

// AxisX is the unit vector along the rectangle's local +x side.
func (r *Rect) AxisX() geom.Point { return r.axisX }

// AxisY is the unit vector along the rectangle's local +y side.
func (r *Rect) AxisY() geom.Point { return r.axisY }

// Box is an oriented shape with a pose in the transform hierarchy.
//
// Position and Angle are resolved world values written by UpdateBox (or by
// an integrator for boxes that are simulated independently). Any direct
// change to Angle, Scale or the rectangle size must be followed by
// Recompute before the box is used in a collision query.
type Box struct {
	Shape Shape

	Position geom.Point
	Offset   geom.Point

	RelativeAngle float64
	Angle         float64
	Scale         float64

	Pivot Pivot

	FlipX                bool
	TotalFlipXMultiplier float64

	Circle Circle
	Rect   Rect
}

// NewCircular creates a circular box with default scale, center pivot and no flip.
func NewCircular(offset geom.Point, relativeAngle, radius float64) *Box {
	b := &Box{
		Shape:                ShapeCircular,
		Offset:               offset,
		RelativeAngle:        relativeAngle,
		Angle:                relativeAngle,
		Scale:                1,
		Pivot:                CenterPivot,
		TotalFlipXMultiplier: 1,
		Circle:               Circle{Radius: radius},
	}
	return b
}

// NewRectangular creates a rectangular box with default scale, center pivot and no flip.
func NewRectangular(offset geom.Point, relativeAngle, width, height float64) *Box {
	b := &Box{
		Shape:                ShapeRectangular,
		Offset:               offset,
		RelativeAngle:        relativeAngle,
		Angle:                relativeAngle,
		Scale:                1,
		Pivot:                CenterPivot,
		TotalFlipXMultiplier: 1,
		Rect:                 Rect{Width: width, Height: height},
	}
	b.Recompute()
	return b
}

// IsCircular reports whether the box is a circle.
func (b *Box) IsCircular() bool { return b.Shape == ShapeCircular }

// Size is the unscaled extent used to resolve normalized pivots.
func (b *Box) Size() (width, height float64) {
	if b.Shape == ShapeCircular {
		return b.Circle.Radius * 2, b.Circle.Radius * 2
	}
	return b.Rect.Width, b.Rect.Height
}

// ScaledRadius is the circle radius after scaling. Zero for rectangles.
func (b *Box) ScaledRadius() float64 {
	if b.Shape != ShapeCircular {
		return 0
	}
	return b.Circle.Radius * b.Scale
}

// HalfExtents returns the scaled half width and half height of a rectangle.
func (b *Box) HalfExtents() (halfWidth, halfHeight float64) {
	return b.Rect.Width * b.Scale * 0.5, b.Rect.Height * b.Scale * 0.5
}

// SetRectSize changes the rectangle size and refreshes the derived fields.
func (b *Box) SetRectSize(width, height float64) {
	b.Rect.Width = width
	b.Rect.Height = height
	b.Recompute()
}

// SetScale changes the scale and refreshes the derived fields.
func (b *Box) SetScale(scale float64) {
	b.Scale = scale
	b.Recompute()
}

// SetAngle overrides the resolved angle and refreshes the derived fields.
func (b *Box) SetAngle(angle float64) {
	b.Angle = angle
	b.Recompute()
}

// Recompute refreshes the cached rectangle vertex offsets and side axes from
// Angle and Scale. It is a no-op for circles.
func (b *Box) Recompute() {
	if b.Shape != ShapeRectangular {
		return
	}

	halfWidth, halfHeight := b.HalfExtents()

	b.Rect.topLeftVertexOffset = geom.Point{X: -halfWidth, Y: halfHeight}.Rotate(b.Angle)
	b.Rect.topRightVertexOffset = geom.Point{X: halfWidth, Y: halfHeight}.Rotate(b.Angle)
	b.Rect.axisX = geom.FromAngle(b.Angle, 1)
	b.Rect.axisY = b.Rect.axisX.Perp()
}

// Vertices returns the four world-space corners in top-left, top-right,
// bottom-right, bottom-left order.
func (b *Box) Vertices() [4]geom.Point {
	tl := b.Rect.topLeftVertexOffset
	tr := b.Rect.topRightVertexOffset
	return [4]geom.Point{
		b.Position.Add(tl),
		b.Position.Add(tr),
		b.Position.Sub(tl),
		b.Position.Sub(tr),
	}
}

// Clone returns an independent copy.
func (b *Box) Clone() *Box {
	c := *b
	return &c
}

func flipSign(flip bool) float64 {
	if flip {
		return -1
	}
	return 1
}
