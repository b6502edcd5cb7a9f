package box

import (
	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

// RelativePivotPos resolves the pivot of b to a local offset from its center,
// rotated by angle and mirrored when the accumulated flip is negative.
// Normalized pivots are converted to local units by the box size; both pivot
// types are then scaled by b.Scale.
func RelativePivotPos(b *Box, angle float64) geom.Point {
	pos := b.Pivot.Pos
	if b.Pivot.Type == PivotNormalized {
		width, height := b.Size()
		pos = geom.Point{X: pos.X * width, Y: pos.Y * height}
	}

	pos = pos.Scale(b.Scale).Rotate(angle)
	if b.TotalFlipXMultiplier == -1 {
		pos.X = -pos.X
	}
	return pos
}

// UpdateBox recomputes the world Position and Angle of child from the
// already-resolved parent.
//
// Callers must walk the hierarchy parents-first every tick before any
// collision query or tether force reads positions.
func UpdateBox(child, parent *Box) {
	child.TotalFlipXMultiplier = flipSign(child.FlipX) * parent.TotalFlipXMultiplier

	offset := child.Offset.Scale(child.Scale)
	if child.TotalFlipXMultiplier == -1 {
		offset.X = -offset.X
	}

	// Displacement caused purely by rotating about the pivot instead of the center.
	pivotShift := RelativePivotPos(child, child.RelativeAngle).Sub(RelativePivotPos(child, 0))
	offset = offset.Sub(pivotShift)

	child.Position = parent.Position.Add(offset.Rotate(parent.Angle))
	child.Angle = child.RelativeAngle*child.TotalFlipXMultiplier + parent.Angle

	child.Recompute()
}

// UpdateRootBox resolves the angle and flip of a box that has no parent pose.
// Its Position is owned by whoever simulates it and is left untouched.
func UpdateRootBox(b *Box, inheritedFlip float64) {
	if inheritedFlip == 0 {
		inheritedFlip = 1
	}
	b.TotalFlipXMultiplier = flipSign(b.FlipX) * inheritedFlip
	b.Angle = b.RelativeAngle * b.TotalFlipXMultiplier
	b.Recompute()
}

// UpdateDetachedBox resolves a child that is simulated on its own: its
// Position belongs to the integrator, while flip and angle still follow the
// parent.
func UpdateDetachedBox(child, parent *Box) {
	child.TotalFlipXMultiplier = flipSign(child.FlipX) * parent.TotalFlipXMultiplier
	child.Angle = child.RelativeAngle*child.TotalFlipXMultiplier + parent.Angle
	child.Recompute()
}
