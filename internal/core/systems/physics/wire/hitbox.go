package wire

import (
	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/core/systems/physics/box"
	"github.com/zeusync/physics/internal/core/systems/physics/geom"
	"github.com/zeusync/physics/pkg/encoding"
)

// TetherState is a tether as seen from one of its ends: the box at the other
// end and the spring parameters.
type TetherState struct {
	Other          *box.Box
	IdealDistance  float64
	SpringConstant float64
	Damping        float64
}

// HitboxState is the replicated view of a hitbox. Links are handles; the
// viewer re-identifies hitboxes by (entity, local id).
type HitboxState struct {
	LocalID               int32
	Box                   *box.Box
	PreviousPosition      geom.Point
	Acceleration          geom.Point
	Tethers               []TetherState
	PreviousRelativeAngle float64
	AngularAcceleration   float64
	Mass                  float64
	CollisionType         physics.CollisionType
	CollisionBit          uint32
	CollisionMask         uint32
	Flags                 physics.FlagSet
	Entity                physics.EntityID
	RootEntity            physics.EntityID
	Parent                physics.Handle
	Children              []physics.Handle
	IsPartOfParent        bool
	IsStatic              bool
}

// Handle is the hitbox's own handle.
func (s *HitboxState) Handle() physics.Handle {
	return physics.Handle{Entity: s.Entity, LocalID: s.LocalID}
}

// Capture copies hb into a HitboxState. Tether counterparts are looked up in
// lookup; a dangling tether end panics with physics.ErrUnknownHitbox.
func Capture(lookup physics.HitboxLookup, hb *physics.Hitbox) HitboxState {
	state := HitboxState{
		LocalID:               hb.LocalID(),
		Box:                   hb.Box.Clone(),
		PreviousPosition:      hb.PreviousPosition,
		Acceleration:          hb.Acceleration,
		PreviousRelativeAngle: hb.PreviousRelativeAngle,
		AngularAcceleration:   hb.AngularAcceleration,
		Mass:                  hb.Mass,
		CollisionType:         hb.CollisionType,
		CollisionBit:          hb.CollisionBit,
		CollisionMask:         hb.CollisionMask,
		Flags:                 append(physics.FlagSet(nil), hb.Flags...),
		Entity:                hb.Entity(),
		RootEntity:            hb.RootEntity,
		Parent:                hb.Parent,
		Children:              append([]physics.Handle(nil), hb.Children...),
		IsPartOfParent:        hb.IsPartOfParent,
		IsStatic:              hb.IsStatic,
	}

	if len(hb.Tethers) > 0 {
		state.Tethers = make([]TetherState, 0, len(hb.Tethers))
	}
	for _, t := range hb.Tethers {
		other, ok := lookup.Get(t.OtherHitbox(hb.Handle))
		if !ok {
			panic(errors.Wrapf(physics.ErrUnknownHitbox, "tether end of %s", hb.Handle))
		}
		state.Tethers = append(state.Tethers, TetherState{
			Other:          other.Box.Clone(),
			IdealDistance:  t.IdealDistance,
			SpringConstant: t.SpringConstant,
			Damping:        t.Damping,
		})
	}

	return state
}

// EncodeHitbox appends the hitbox layout:
//
//	[localID][box][previousPosition.x,y][acceleration.x,y]
//	[tetherCount][per tether: otherBox, idealDistance, springConstant, damping]
//	[previousRelativeAngle][angularAcceleration][mass][collisionType]
//	[collisionBit][collisionMask][flagCount][flags...][entity][rootEntity]
//	[parentEntity, parentLocalID or 0,-1][childCount][children entity, localID]
//	[isPartOfParent][isStatic]
func EncodeHitbox(w *encoding.Writer, lookup physics.HitboxLookup, hb *physics.Hitbox) {
	state := Capture(lookup, hb)
	EncodeHitboxState(w, &state)
}

func EncodeHitboxState(w *encoding.Writer, s *HitboxState) {
	w.Int32(s.LocalID)
	EncodeBox(w, s.Box)
	writePoint(w, s.PreviousPosition)
	writePoint(w, s.Acceleration)

	w.Uint32(uint32(len(s.Tethers)))
	for _, t := range s.Tethers {
		EncodeBox(w, t.Other)
		w.Float32(t.IdealDistance)
		w.Float32(t.SpringConstant)
		w.Float32(t.Damping)
	}

	w.Float32(s.PreviousRelativeAngle)
	w.Float32(s.AngularAcceleration)
	w.Float32(s.Mass)
	w.Uint32(uint32(s.CollisionType))
	w.Uint32(s.CollisionBit)
	w.Uint32(s.CollisionMask)

	w.Uint32(uint32(len(s.Flags)))
	for _, f := range s.Flags {
		w.Uint32(uint32(f))
	}

	w.Uint32(uint32(s.Entity))
	w.Uint32(uint32(s.RootEntity))
	writeHandle(w, s.Parent)

	w.Uint32(uint32(len(s.Children)))
	for _, ch := range s.Children {
		writeHandle(w, ch)
	}

	w.Bool(s.IsPartOfParent)
	w.Bool(s.IsStatic)
}

// DecodeHitbox reads a hitbox written by EncodeHitbox.
func DecodeHitbox(r *encoding.Reader) (*HitboxState, error) {
	s := &HitboxState{LocalID: r.Int32()}

	b, err := DecodeBox(r)
	if err != nil {
		return nil, errors.Wrapf(err, "hitbox %d", s.LocalID)
	}
	s.Box = b
	s.PreviousPosition = readPoint(r)
	s.Acceleration = readPoint(r)

	if n := r.Count(minBoxSize + 12); n > 0 {
		s.Tethers = make([]TetherState, 0, n)
		for i := 0; i < n; i++ {
			other, err := DecodeBox(r)
			if err != nil {
				return nil, errors.Wrapf(err, "hitbox %d tether %d", s.LocalID, i)
			}
			s.Tethers = append(s.Tethers, TetherState{
				Other:          other,
				IdealDistance:  r.Float32(),
				SpringConstant: r.Float32(),
				Damping:        r.Float32(),
			})
		}
	}

	s.PreviousRelativeAngle = r.Float32()
	s.AngularAcceleration = r.Float32()
	s.Mass = r.Float32()
	collisionType := r.Uint32()
	s.CollisionBit = r.Uint32()
	s.CollisionMask = r.Uint32()

	if n := r.Count(4); n > 0 {
		s.Flags = make(physics.FlagSet, 0, n)
		for i := 0; i < n; i++ {
			s.Flags = append(s.Flags, physics.Flag(r.Uint32()))
		}
	}

	s.Entity = physics.EntityID(r.Uint32())
	s.RootEntity = physics.EntityID(r.Uint32())
	s.Parent = readHandle(r)

	if n := r.Count(8); n > 0 {
		s.Children = make([]physics.Handle, 0, n)
		for i := 0; i < n; i++ {
			s.Children = append(s.Children, readHandle(r))
		}
	}

	s.IsPartOfParent = r.Bool()
	s.IsStatic = r.Bool()

	if err := r.Err(); err != nil {
		return nil, errors.Wrapf(err, "hitbox %d", s.LocalID)
	}
	if collisionType > uint32(physics.CollisionHard) {
		return nil, errors.Wrapf(ErrInvalidField, "collision type %d", collisionType)
	}
	s.CollisionType = physics.CollisionType(collisionType)

	return s, nil
}

func writeHandle(w *encoding.Writer, h physics.Handle) {
	if !h.IsValid() {
		h = physics.NoHandle
	}
	w.Uint32(uint32(h.Entity))
	w.Int32(h.LocalID)
}

func readHandle(r *encoding.Reader) physics.Handle {
	entity := physics.EntityID(r.Uint32())
	return physics.Handle{Entity: entity, LocalID: r.Int32()}
}
