package box

import "math"

// Bounds is a world-space axis-aligned bounding box.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Intersects reports whether two bounds overlap or touch.
func (a Bounds) Intersects(b Bounds) bool {
	return a.MinX <= b.MaxX && b.MinX <= a.MaxX && a.MinY <= b.MaxY && b.MinY <= a.MaxY
}

func (b *Box) extentX() float64 {
	if b.Shape == ShapeCircular {
		return b.ScaledRadius()
	}
	return math.Max(math.Abs(b.Rect.topLeftVertexOffset.X), math.Abs(b.Rect.topRightVertexOffset.X))
}

func (b *Box) extentY() float64 {
	if b.Shape == ShapeCircular {
		return b.ScaledRadius()
	}
	return math.Max(math.Abs(b.Rect.topLeftVertexOffset.Y), math.Abs(b.Rect.topRightVertexOffset.Y))
}

func (b *Box) BoundsMinX() float64 { return b.Position.X - b.extentX() }
func (b *Box) BoundsMaxX() float64 { return b.Position.X + b.extentX() }
func (b *Box) BoundsMinY() float64 { return b.Position.Y - b.extentY() }
func (b *Box) BoundsMaxY() float64 { return b.Position.Y + b.extentY() }

// Bounds returns the world-space AABB of the box.
func (b *Box) Bounds() Bounds {
	ex, ey := b.extentX(), b.extentY()
	return Bounds{
		MinX: b.Position.X - ex,
		MinY: b.Position.Y - ey,
		MaxX: b.Position.X + ex,
		MaxY: b.Position.Y + ey,
	}
}
