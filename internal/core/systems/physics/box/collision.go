package box

import (
	"math"

	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

// SATResult is the outcome of a rectangle-rectangle separating axis test.
// When IsColliding is true, Axis is the unit axis of minimum overlap and
// Overlap the penetration depth along it. Axis is canonically oriented
// (positive x, or positive y when x is zero) so the result does not depend on
// argument order.
type SATResult struct {
	IsColliding bool
	Overlap     float64
	Axis        geom.Point
}

// Overlap is the length shared by the projections [min1,max1] and [min2,max2].
// Negative values mean the projections are separated.
func Overlap(min1, max1, min2, max2 float64) float64 {
	return math.Min(max1, max2) - math.Max(min1, min2)
}

// IsColliding tests two boxes for intersection. Each box's extents are shrunk
// by epsilon, so a positive epsilon tolerates near misses as non-colliding.
// Touching boxes count as colliding.
func IsColliding(a, b *Box, epsilon float64) bool {
	switch {
	case a.Shape == ShapeCircular && b.Shape == ShapeCircular:
		return CirclesAreColliding(a, b, epsilon)
	case a.Shape == ShapeCircular && b.Shape == ShapeRectangular:
		return CircleAndRectangleAreColliding(a, b, epsilon)
	case a.Shape == ShapeRectangular && b.Shape == ShapeCircular:
		return CircleAndRectangleAreColliding(b, a, epsilon)
	default:
		return RectanglesAreColliding(a, b, epsilon).IsColliding
	}
}

// CirclesAreColliding compares the center distance with the sum of radii.
func CirclesAreColliding(a, b *Box, epsilon float64) bool {
	reach := shrink(a.ScaledRadius(), epsilon) + shrink(b.ScaledRadius(), epsilon)
	return a.Position.DistanceSquared(b.Position) <= reach*reach
}

// CircleAndRectangleAreColliding de-rotates the circle center into the
// rectangle's frame and measures its distance to the nearest point of the
// rectangle.
func CircleAndRectangleAreColliding(circle, rect *Box, epsilon float64) bool {
	local := toRectFrame(circle.Position, rect)
	halfWidth, halfHeight := rect.HalfExtents()
	halfWidth = shrink(halfWidth, epsilon)
	halfHeight = shrink(halfHeight, epsilon)

	nearest := geom.Point{
		X: clamp(local.X, -halfWidth, halfWidth),
		Y: clamp(local.Y, -halfHeight, halfHeight),
	}
	radius := shrink(circle.ScaledRadius(), epsilon)
	return local.DistanceSquared(nearest) <= radius*radius
}

// RectanglesAreColliding runs the separating axis test over both boxes' side
// axes and reports the axis with the smallest overlap.
func RectanglesAreColliding(a, b *Box, epsilon float64) SATResult {
	axes := [4]geom.Point{
		canonicalAxis(a.Rect.axisX),
		canonicalAxis(a.Rect.axisY),
		canonicalAxis(b.Rect.axisX),
		canonicalAxis(b.Rect.axisY),
	}

	best := SATResult{Overlap: math.Inf(1)}
	for _, axis := range axes {
		min1, max1 := projectRect(a, axis, epsilon)
		min2, max2 := projectRect(b, axis, epsilon)

		overlap := Overlap(min1, max1, min2, max2)
		if overlap < 0 {
			return SATResult{}
		}
		if overlap < best.Overlap || (overlap == best.Overlap && axisLess(axis, best.Axis)) {
			best.Overlap = overlap
			best.Axis = axis
		}
	}

	best.IsColliding = true
	return best
}

// projectRect projects the rectangle onto a unit axis using the cached vertex
// offsets. The vertices are ±topLeft and ±topRight around the center.
func projectRect(b *Box, axis geom.Point, epsilon float64) (float64, float64) {
	center := b.Position.Dot(axis)
	radius := math.Max(
		math.Abs(b.Rect.topLeftVertexOffset.Dot(axis)),
		math.Abs(b.Rect.topRightVertexOffset.Dot(axis)),
	)
	if epsilon != 0 {
		radius -= epsilon * (math.Abs(b.Rect.axisX.Dot(axis)) + math.Abs(b.Rect.axisY.Dot(axis)))
		radius = math.Max(radius, 0)
	}
	return center - radius, center + radius
}

func toRectFrame(p geom.Point, rect *Box) geom.Point {
	d := p.Sub(rect.Position)
	return geom.Point{X: d.Dot(rect.Rect.axisX), Y: d.Dot(rect.Rect.axisY)}
}

func canonicalAxis(axis geom.Point) geom.Point {
	if axis.X < 0 || (axis.X == 0 && axis.Y < 0) {
		return axis.Neg()
	}
	return axis
}

func axisLess(a, b geom.Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func shrink(extent, epsilon float64) float64 {
	return math.Max(extent-epsilon, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
