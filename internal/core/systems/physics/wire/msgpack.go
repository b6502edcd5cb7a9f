package wire

import (
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/core/systems/physics/box"
	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

// SnapshotDTO is the structured alternative to the binary frame, for viewers
// that prefer msgpack. Values keep full float64 precision.
type SnapshotDTO struct {
	Tick     uint64      `msgpack:"tick"`
	Hitboxes []HitboxDTO `msgpack:"hitboxes"`
}

type BoxDTO struct {
	Circular      bool       `msgpack:"circular"`
	Position      [2]float64 `msgpack:"pos"`
	RelativeAngle float64    `msgpack:"rel_angle"`
	Angle         float64    `msgpack:"angle"`
	Offset        [2]float64 `msgpack:"offset"`
	PivotType     uint8      `msgpack:"pivot_type"`
	Pivot         [2]float64 `msgpack:"pivot"`
	Scale         float64    `msgpack:"scale"`
	Flipped       bool       `msgpack:"flipped"`
	Radius        float64    `msgpack:"radius,omitempty"`
	Width         float64    `msgpack:"width,omitempty"`
	Height        float64    `msgpack:"height,omitempty"`
}

type TetherDTO struct {
	Other          BoxDTO  `msgpack:"other"`
	IdealDistance  float64 `msgpack:"ideal"`
	SpringConstant float64 `msgpack:"k"`
	Damping        float64 `msgpack:"damping"`
}

type HitboxDTO struct {
	Entity                uint32      `msgpack:"entity"`
	LocalID               int32       `msgpack:"local_id"`
	RootEntity            uint32      `msgpack:"root_entity"`
	Box                   BoxDTO      `msgpack:"box"`
	PreviousPosition      [2]float64  `msgpack:"prev_pos"`
	Acceleration          [2]float64  `msgpack:"acc"`
	Tethers               []TetherDTO `msgpack:"tethers,omitempty"`
	PreviousRelativeAngle float64     `msgpack:"prev_rel_angle"`
	AngularAcceleration   float64     `msgpack:"ang_acc"`
	Mass                  float64     `msgpack:"mass"`
	CollisionType         uint8       `msgpack:"collision_type"`
	CollisionBit          uint32      `msgpack:"bit"`
	CollisionMask         uint32      `msgpack:"mask"`
	Flags                 []uint16    `msgpack:"flags,omitempty"`
	Parent                [2]int64    `msgpack:"parent"`
	Children              [][2]int64  `msgpack:"children,omitempty"`
	IsPartOfParent        bool        `msgpack:"part_of_parent"`
	IsStatic              bool        `msgpack:"static"`
}

// MarshalMsgpack encodes a snapshot as msgpack.
func MarshalMsgpack(s *Snapshot) ([]byte, error) {
	dto := SnapshotDTO{Tick: s.Tick, Hitboxes: make([]HitboxDTO, len(s.Hitboxes))}
	for i := range s.Hitboxes {
		dto.Hitboxes[i] = toHitboxDTO(&s.Hitboxes[i])
	}

	data, err := msgpack.Marshal(&dto)
	if err != nil {
		return nil, errors.Wrap(err, "marshal snapshot")
	}
	return data, nil
}

// UnmarshalMsgpack decodes a snapshot written by MarshalMsgpack.
func UnmarshalMsgpack(data []byte) (*Snapshot, error) {
	var dto SnapshotDTO
	if err := msgpack.Unmarshal(data, &dto); err != nil {
		return nil, errors.Wrap(err, "unmarshal snapshot")
	}

	s := &Snapshot{Tick: dto.Tick, Hitboxes: make([]HitboxState, len(dto.Hitboxes))}
	for i := range dto.Hitboxes {
		state, err := fromHitboxDTO(&dto.Hitboxes[i])
		if err != nil {
			return nil, errors.Wrapf(err, "snapshot hitbox %d", i)
		}
		s.Hitboxes[i] = state
	}
	return s, nil
}

func toBoxDTO(b *box.Box) BoxDTO {
	dto := BoxDTO{
		Circular:      b.IsCircular(),
		Position:      pair(b.Position),
		RelativeAngle: b.RelativeAngle,
		Angle:         b.Angle,
		Offset:        pair(b.Offset),
		PivotType:     uint8(b.Pivot.Type),
		Pivot:         pair(b.Pivot.Pos),
		Scale:         b.Scale,
		Flipped:       b.TotalFlipXMultiplier == -1,
	}
	if b.IsCircular() {
		dto.Radius = b.Circle.Radius
	} else {
		dto.Width, dto.Height = b.Rect.Width, b.Rect.Height
	}
	return dto
}

func fromBoxDTO(dto *BoxDTO) (*box.Box, error) {
	pivotType := box.PivotType(dto.PivotType)
	if pivotType != box.PivotAbsolute && pivotType != box.PivotNormalized {
		return nil, errors.Wrapf(ErrInvalidField, "pivot type %d", dto.PivotType)
	}

	var b *box.Box
	if dto.Circular {
		b = box.NewCircular(point(dto.Offset), dto.RelativeAngle, dto.Radius)
	} else {
		b = box.NewRectangular(point(dto.Offset), dto.RelativeAngle, dto.Width, dto.Height)
	}
	b.Position = point(dto.Position)
	b.Angle = dto.Angle
	b.Pivot = box.Pivot{Type: pivotType, Pos: point(dto.Pivot)}
	b.Scale = dto.Scale
	b.FlipX = dto.Flipped
	if dto.Flipped {
		b.TotalFlipXMultiplier = -1
	}
	b.Recompute()
	return b, nil
}

func toHitboxDTO(s *HitboxState) HitboxDTO {
	dto := HitboxDTO{
		Entity:                uint32(s.Entity),
		LocalID:               s.LocalID,
		RootEntity:            uint32(s.RootEntity),
		Box:                   toBoxDTO(s.Box),
		PreviousPosition:      pair(s.PreviousPosition),
		Acceleration:          pair(s.Acceleration),
		PreviousRelativeAngle: s.PreviousRelativeAngle,
		AngularAcceleration:   s.AngularAcceleration,
		Mass:                  s.Mass,
		CollisionType:         uint8(s.CollisionType),
		CollisionBit:          s.CollisionBit,
		CollisionMask:         s.CollisionMask,
		Parent:                handlePair(s.Parent),
		IsPartOfParent:        s.IsPartOfParent,
		IsStatic:              s.IsStatic,
	}
	for _, t := range s.Tethers {
		dto.Tethers = append(dto.Tethers, TetherDTO{
			Other:          toBoxDTO(t.Other),
			IdealDistance:  t.IdealDistance,
			SpringConstant: t.SpringConstant,
			Damping:        t.Damping,
		})
	}
	for _, f := range s.Flags {
		dto.Flags = append(dto.Flags, uint16(f))
	}
	for _, ch := range s.Children {
		dto.Children = append(dto.Children, handlePair(ch))
	}
	return dto
}

func fromHitboxDTO(dto *HitboxDTO) (HitboxState, error) {
	b, err := fromBoxDTO(&dto.Box)
	if err != nil {
		return HitboxState{}, err
	}
	if dto.CollisionType > uint8(physics.CollisionHard) {
		return HitboxState{}, errors.Wrapf(ErrInvalidField, "collision type %d", dto.CollisionType)
	}

	s := HitboxState{
		LocalID:               dto.LocalID,
		Box:                   b,
		PreviousPosition:      point(dto.PreviousPosition),
		Acceleration:          point(dto.Acceleration),
		PreviousRelativeAngle: dto.PreviousRelativeAngle,
		AngularAcceleration:   dto.AngularAcceleration,
		Mass:                  dto.Mass,
		CollisionType:         physics.CollisionType(dto.CollisionType),
		CollisionBit:          dto.CollisionBit,
		CollisionMask:         dto.CollisionMask,
		Entity:                physics.EntityID(dto.Entity),
		RootEntity:            physics.EntityID(dto.RootEntity),
		Parent:                fromHandlePair(dto.Parent),
		IsPartOfParent:        dto.IsPartOfParent,
		IsStatic:              dto.IsStatic,
	}
	for i := range dto.Tethers {
		other, err := fromBoxDTO(&dto.Tethers[i].Other)
		if err != nil {
			return HitboxState{}, errors.Wrapf(err, "tether %d", i)
		}
		s.Tethers = append(s.Tethers, TetherState{
			Other:          other,
			IdealDistance:  dto.Tethers[i].IdealDistance,
			SpringConstant: dto.Tethers[i].SpringConstant,
			Damping:        dto.Tethers[i].Damping,
		})
	}
	for _, f := range dto.Flags {
		s.Flags = append(s.Flags, physics.Flag(f))
	}
	for _, ch := range dto.Children {
		s.Children = append(s.Children, fromHandlePair(ch))
	}
	return s, nil
}

func pair(p geom.Point) [2]float64 { return [2]float64{p.X, p.Y} }

func point(p [2]float64) geom.Point { return geom.Point{X: p[0], Y: p[1]} }

func handlePair(h physics.Handle) [2]int64 {
	if !h.IsValid() {
		h = physics.NoHandle
	}
	return [2]int64{int64(h.Entity), int64(h.LocalID)}
}

func fromHandlePair(p [2]int64) physics.Handle {
	return physics.Handle{Entity: physics.EntityID(p[0]), LocalID: int32(p[1])}
}
