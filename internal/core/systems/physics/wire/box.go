// Package wire encodes boxes, hitboxes and world snapshots for network
// replication.
//
// Every field occupies four little-endian bytes. Real quantities are float32,
// booleans are the floats 1 and 0, and identifiers, collision bits and flags
// are their exact 32-bit integer patterns. Field order is fixed and shared
// with remote viewers.
package wire

import (
	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/core/systems/physics/box"
	"github.com/zeusync/physics/internal/core/systems/physics/geom"
	"github.com/zeusync/physics/pkg/encoding"
)

const (
	boxHeaderFields = 12
	// Smallest encoded box: header plus a radius.
	minBoxSize = (boxHeaderFields + 1) * 4
)

// EncodeBox appends
//
//	[isCircular][position.x,y][relativeAngle][angle][offset.x,y]
//	[pivot.type][pivot.pos.x,y][scale][flipXMultiplier]
//
// followed by the radius, or width and height. flipXMultiplier is true when
// the accumulated multiplier is -1.
func EncodeBox(w *encoding.Writer, b *box.Box) {
	w.Bool(b.IsCircular())
	writePoint(w, b.Position)
	w.Float32(b.RelativeAngle)
	w.Float32(b.Angle)
	writePoint(w, b.Offset)
	w.Float32(float64(b.Pivot.Type))
	writePoint(w, b.Pivot.Pos)
	w.Float32(b.Scale)
	w.Bool(b.TotalFlipXMultiplier == -1)

	if b.IsCircular() {
		w.Float32(b.Circle.Radius)
	} else {
		w.Float32(b.Rect.Width)
		w.Float32(b.Rect.Height)
	}
}

// DecodeBox reads a box written by EncodeBox. The resolved pose is restored
// as sent; rectangles get their derived vertices recomputed.
func DecodeBox(r *encoding.Reader) (*box.Box, error) {
	circular := r.Bool()
	position := readPoint(r)
	relativeAngle := r.Float32()
	angle := r.Float32()
	offset := readPoint(r)
	pivotType := r.Float32()
	pivotPos := readPoint(r)
	scale := r.Float32()
	flipped := r.Bool()

	var b *box.Box
	if circular {
		b = box.NewCircular(offset, relativeAngle, r.Float32())
	} else {
		width := r.Float32()
		b = box.NewRectangular(offset, relativeAngle, width, r.Float32())
	}
	if err := r.Err(); err != nil {
		return nil, errors.Wrap(err, "decode box")
	}

	switch box.PivotType(pivotType) {
	case box.PivotAbsolute, box.PivotNormalized:
	default:
		return nil, errors.Wrapf(ErrInvalidField, "pivot type %v", pivotType)
	}

	b.Position = position
	b.Angle = angle
	b.Pivot = box.Pivot{Type: box.PivotType(pivotType), Pos: pivotPos}
	b.Scale = scale
	b.FlipX = flipped
	b.TotalFlipXMultiplier = 1
	if flipped {
		b.TotalFlipXMultiplier = -1
	}
	b.Recompute()

	return b, nil
}

func writePoint(w *encoding.Writer, p geom.Point) {
	w.Float32(p.X)
	w.Float32(p.Y)
}

func readPoint(r *encoding.Reader) geom.Point {
	x := r.Float32()
	return geom.Point{X: x, Y: r.Float32()}
}
