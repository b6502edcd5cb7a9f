package box

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

const tolerance = 1e-9

func identityParent() *Box {
	return NewCircular(geom.Zero, 0, 1)
}

func assertPoint(t *testing.T, expected, actual geom.Point) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, tolerance, "x")
	assert.InDelta(t, expected.Y, actual.Y, tolerance, "y")
}

func TestRelativePivotPos_CenterPivotIsFlipInvariant(t *testing.T) {
	for _, flip := range []float64{1, -1} {
		for _, b := range []*Box{
			NewRectangular(geom.New(3, 4), 0.7, 12, 6),
			NewCircular(geom.New(-2, 1), -1.3, 5),
		} {
			b.TotalFlipXMultiplier = flip
			b.Pivot = Pivot{Type: PivotNormalized, Pos: geom.Zero}

			for _, angle := range []float64{0, 0.5, math.Pi, -2.1} {
				assertPoint(t, geom.Zero, RelativePivotPos(b, angle))
			}
		}
	}
}

func TestRelativePivotPos(t *testing.T) {
	tests := []struct {
		name     string
		pivot    Pivot
		scale    float64
		flip     float64
		angle    float64
		expected geom.Point
	}{
		{
			name:     "absolute_unrotated",
			pivot:    Pivot{Type: PivotAbsolute, Pos: geom.New(-5, 0)},
			scale:    1,
			flip:     1,
			expected: geom.New(-5, 0),
		},
		{
			name:     "normalized_converted_to_size",
			pivot:    Pivot{Type: PivotNormalized, Pos: geom.New(0.5, 0.5)},
			scale:    1,
			flip:     1,
			expected: geom.New(5, 2),
		},
		{
			name:     "normalized_scaled",
			pivot:    Pivot{Type: PivotNormalized, Pos: geom.New(0.5, 0)},
			scale:    2,
			flip:     1,
			expected: geom.New(10, 0),
		},
		{
			name:     "absolute_rotated_quarter_turn",
			pivot:    Pivot{Type: PivotAbsolute, Pos: geom.New(-5, 0)},
			scale:    1,
			flip:     1,
			angle:    math.Pi / 2,
			expected: geom.New(0, -5),
		},
		{
			name:     "flip_mirrors_x_after_rotation",
			pivot:    Pivot{Type: PivotAbsolute, Pos: geom.New(-5, 0)},
			scale:    1,
			flip:     -1,
			angle:    math.Pi / 2,
			expected: geom.New(0, -5),
		},
		{
			name:     "flip_mirrors_unrotated",
			pivot:    Pivot{Type: PivotAbsolute, Pos: geom.New(-5, 1)},
			scale:    1,
			flip:     -1,
			expected: geom.New(5, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewRectangular(geom.Zero, 0, 10, 4)
			b.Pivot = tt.pivot
			b.Scale = tt.scale
			b.TotalFlipXMultiplier = tt.flip

			assertPoint(t, tt.expected, RelativePivotPos(b, tt.angle))
		})
	}
}

func TestUpdateBox_IdentityParentRotatesAboutPivot(t *testing.T) {
	t.Run("absolute_pivot", func(t *testing.T) {
		child := NewRectangular(geom.New(10, 0), math.Pi/2, 10, 4)
		child.Pivot = Pivot{Type: PivotAbsolute, Pos: geom.New(-5, 0)}

		UpdateBox(child, identityParent())

		// Pivot sits at (5,0); the center (10,0) swings a quarter turn around it.
		assertPoint(t, geom.New(5, 5), child.Position)
		assert.InDelta(t, math.Pi/2, child.Angle, tolerance)
	})

	t.Run("normalized_pivot", func(t *testing.T) {
		child := NewRectangular(geom.Zero, math.Pi, 10, 4)
		child.Pivot = Pivot{Type: PivotNormalized, Pos: geom.New(0.5, 0.5)}

		UpdateBox(child, identityParent())

		// Rotating half a turn about the top-right corner (5,2).
		assertPoint(t, geom.New(10, 4), child.Position)
		assert.InDelta(t, math.Pi, child.Angle, tolerance)
	})

	t.Run("center_pivot_keeps_offset", func(t *testing.T) {
		child := NewCircular(geom.New(3, -7), 1.2, 2)

		UpdateBox(child, identityParent())

		assertPoint(t, geom.New(3, -7), child.Position)
		assert.InDelta(t, 1.2, child.Angle, tolerance)
	})
}

func TestUpdateBox_ParentPose(t *testing.T) {
	parent := NewCircular(geom.Zero, 0, 1)
	parent.Position = geom.New(100, 0)
	parent.Angle = math.Pi / 2

	child := NewCircular(geom.New(10, 0), 0.25, 1)
	UpdateBox(child, parent)

	assertPoint(t, geom.New(100, 10), child.Position)
	assert.InDelta(t, math.Pi/2+0.25, child.Angle, tolerance)
}

func TestUpdateBox_ScaleAppliesToOffset(t *testing.T) {
	child := NewCircular(geom.New(4, 1), 0, 1)
	child.Scale = 3

	UpdateBox(child, identityParent())

	assertPoint(t, geom.New(12, 3), child.Position)
}

func TestUpdateBox_Flip(t *testing.T) {
	t.Run("own_flip_mirrors_offset_and_angle", func(t *testing.T) {
		child := NewRectangular(geom.New(10, 2), 0.3, 4, 4)
		child.FlipX = true

		UpdateBox(child, identityParent())

		assert.Equal(t, -1.0, child.TotalFlipXMultiplier)
		assertPoint(t, geom.New(-10, 2), child.Position)
		assert.InDelta(t, -0.3, child.Angle, tolerance)
	})

	t.Run("flip_is_inherited", func(t *testing.T) {
		parent := identityParent()
		parent.TotalFlipXMultiplier = -1

		child := NewCircular(geom.New(6, 0), 0, 1)
		UpdateBox(child, parent)

		assert.Equal(t, -1.0, child.TotalFlipXMultiplier)
		assertPoint(t, geom.New(-6, 0), child.Position)
	})

	t.Run("double_flip_cancels", func(t *testing.T) {
		parent := identityParent()
		parent.TotalFlipXMultiplier = -1

		child := NewCircular(geom.New(6, 0), 0, 1)
		child.FlipX = true
		UpdateBox(child, parent)

		assert.Equal(t, 1.0, child.TotalFlipXMultiplier)
		assertPoint(t, geom.New(6, 0), child.Position)
	})

	t.Run("flipped_pivot_rotation_is_mirrored", func(t *testing.T) {
		unflipped := NewRectangular(geom.New(10, 0), math.Pi/2, 10, 4)
		unflipped.Pivot = Pivot{Type: PivotAbsolute, Pos: geom.New(-5, 0)}
		flipped := unflipped.Clone()
		flipped.FlipX = true

		UpdateBox(unflipped, identityParent())
		UpdateBox(flipped, identityParent())

		assert.InDelta(t, -unflipped.Position.X, flipped.Position.X, tolerance)
		assert.InDelta(t, unflipped.Position.Y, flipped.Position.Y, tolerance)
		assert.InDelta(t, -unflipped.Angle, flipped.Angle, tolerance)
	})
}

func TestUpdateBox_RecomputesRectangle(t *testing.T) {
	child := NewRectangular(geom.Zero, math.Pi/2, 10, 4)
	UpdateBox(child, identityParent())

	assertPoint(t, geom.New(0, 1), child.Rect.AxisX())
	assertPoint(t, geom.New(-1, 0), child.Rect.AxisY())
	assertPoint(t, geom.New(-2, -5), child.Rect.TopLeftVertexOffset())
	assertPoint(t, geom.New(-2, 5), child.Rect.TopRightVertexOffset())
}

func TestUpdateRootBox(t *testing.T) {
	b := NewRectangular(geom.New(50, 50), 0.4, 2, 2)
	b.Position = geom.New(7, 8)
	b.FlipX = true

	UpdateRootBox(b, 1)

	assert.Equal(t, -1.0, b.TotalFlipXMultiplier)
	assert.InDelta(t, -0.4, b.Angle, tolerance)
	assertPoint(t, geom.New(7, 8), b.Position)
}

func TestBounds(t *testing.T) {
	t.Run("circle", func(t *testing.T) {
		b := NewCircular(geom.Zero, 0, 5)
		b.Position = geom.New(10, -10)
		b.SetScale(2)

		assert.Equal(t, Bounds{MinX: 0, MinY: -20, MaxX: 20, MaxY: 0}, b.Bounds())
		assert.Equal(t, 0.0, b.BoundsMinX())
		assert.Equal(t, 20.0, b.BoundsMaxX())
	})

	t.Run("rotated_rectangle", func(t *testing.T) {
		b := NewRectangular(geom.Zero, 0, 10, 4)
		b.SetAngle(math.Pi / 2)

		assert.InDelta(t, -2, b.BoundsMinX(), tolerance)
		assert.InDelta(t, 2, b.BoundsMaxX(), tolerance)
		assert.InDelta(t, -5, b.BoundsMinY(), tolerance)
		assert.InDelta(t, 5, b.BoundsMaxY(), tolerance)
	})

	t.Run("diagonal_rectangle", func(t *testing.T) {
		b := NewRectangular(geom.Zero, 0, 10, 10)
		b.SetAngle(math.Pi / 4)

		half := 5 * math.Sqrt2
		assert.InDelta(t, half, b.BoundsMaxX(), tolerance)
		assert.InDelta(t, -half, b.BoundsMinY(), tolerance)
	})

	t.Run("intersects", func(t *testing.T) {
		a := Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
		require.True(t, a.Intersects(Bounds{MinX: 10, MinY: 10, MaxX: 20, MaxY: 20}))
		require.False(t, a.Intersects(Bounds{MinX: 11, MinY: 0, MaxX: 20, MaxY: 10}))
	})
}

func TestUpdateDetachedBox(t *testing.T) {
	parent := identityParent()
	parent.Angle = 1
	parent.TotalFlipXMultiplier = -1

	child := NewCircular(geom.New(10, 0), 0.5, 1)
	child.Position = geom.New(42, 42)
	UpdateDetachedBox(child, parent)

	assertPoint(t, geom.New(42, 42), child.Position)
	assert.Equal(t, -1.0, child.TotalFlipXMultiplier)
	assert.InDelta(t, 0.5, child.Angle, tolerance)
}
