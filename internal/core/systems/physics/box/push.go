package box

import (
	"math"

	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

// PushInfo describes how far and in which world direction the pushed box has
// to move to stop overlapping the pushing box. Direction always points from
// the pushing box toward the pushed box.
type PushInfo struct {
	Direction float64
	AmountIn  float64
}

// Vector is the minimum translation to apply to the pushed box.
func (p PushInfo) Vector() geom.Point { return geom.FromAngle(p.Direction, p.AmountIn) }

// Reversed is the push for the other box of the pair: same depth, opposite
// direction.
func (p PushInfo) Reversed() PushInfo {
	return PushInfo{Direction: geom.WrapAngle(p.Direction + math.Pi), AmountIn: p.AmountIn}
}

// CollisionPushInfo computes the push-out of pushed away from pushing. The
// pair must already be known to overlap; rectangle pairs that do not overlap
// panic with ErrNotOverlapping. When the centers coincide along the push axis
// both argument orders return the same direction; use Reversed on one result
// to separate such a pair.
func CollisionPushInfo(pushed, pushing *Box) PushInfo {
	switch {
	case pushed.Shape == ShapeCircular && pushing.Shape == ShapeCircular:
		return circlePushInfo(pushed, pushing)
	case pushed.Shape == ShapeCircular && pushing.Shape == ShapeRectangular:
		return circleOutOfRectangle(pushed, pushing)
	case pushed.Shape == ShapeRectangular && pushing.Shape == ShapeCircular:
		info := circleOutOfRectangle(pushing, pushed)
		info.Direction = geom.WrapAngle(info.Direction + math.Pi)
		return info
	default:
		return rectanglePushInfo(pushed, pushing)
	}
}

func circlePushInfo(pushed, pushing *Box) PushInfo {
	dist := pushing.Position.Distance(pushed.Position)
	return PushInfo{
		Direction: pushing.Position.AngleTo(pushed.Position),
		AmountIn:  pushed.ScaledRadius() + pushing.ScaledRadius() - dist,
	}
}

// circleOutOfRectangle pushes the circle out of the rectangle. Three regions
// are handled in the rectangle's frame: the circle center lies within the
// rectangle's x span (push along y), within its y span (push along x), or
// beyond a corner (push along the corner-to-center line).
func circleOutOfRectangle(circle, rect *Box) PushInfo {
	local := toRectFrame(circle.Position, rect)
	halfWidth, halfHeight := rect.HalfExtents()
	radius := circle.ScaledRadius()

	withinX := math.Abs(local.X) <= halfWidth
	withinY := math.Abs(local.Y) <= halfHeight

	var dir geom.Point
	var amountIn float64
	switch {
	case withinX && withinY:
		// Center inside the rectangle: leave through the nearest face.
		inX := halfWidth + radius - math.Abs(local.X)
		inY := halfHeight + radius - math.Abs(local.Y)
		if inX < inY {
			dir, amountIn = geom.Point{X: sign(local.X)}, inX
		} else {
			dir, amountIn = geom.Point{Y: sign(local.Y)}, inY
		}
	case withinX:
		dir = geom.Point{Y: sign(local.Y)}
		amountIn = halfHeight + radius - math.Abs(local.Y)
	case withinY:
		dir = geom.Point{X: sign(local.X)}
		amountIn = halfWidth + radius - math.Abs(local.X)
	default:
		corner := geom.Point{X: sign(local.X) * halfWidth, Y: sign(local.Y) * halfHeight}
		toCenter := local.Sub(corner)
		dist := toCenter.Length()
		// Right triangle: the corner-to-center leg is dist, so the remaining
		// depth along it is radius - dist.
		amountIn = radius - dist
		if dist == 0 {
			dir = corner.Normalize()
		} else {
			dir = toCenter.Scale(1 / dist)
		}
	}

	world := rect.Rect.axisX.Scale(dir.X).Add(rect.Rect.axisY.Scale(dir.Y))
	return PushInfo{Direction: world.Angle(), AmountIn: amountIn}
}

func rectanglePushInfo(pushed, pushing *Box) PushInfo {
	result := RectanglesAreColliding(pushed, pushing, 0)
	if !result.IsColliding {
		panic(errors.Wrapf(ErrNotOverlapping, "pushed at %v, pushing at %v", pushed.Position, pushing.Position))
	}

	axis := result.Axis
	delta := pushed.Position.Sub(pushing.Position)
	if axis.Dot(delta) < 0 {
		axis = axis.Neg()
	}
	return PushInfo{Direction: axis.Angle(), AmountIn: result.Overlap}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
