package physics

import (
	"sort"

	"github.com/zeusync/physics/internal/core/systems/physics/box"
	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

// CollisionType selects how overlapping hitboxes of different entities react.
type CollisionType uint8

const (
	// CollisionSoft lets entities interpenetrate; overlaps are only reported.
	CollisionSoft CollisionType = iota
	// CollisionHard pushes the pair apart.
	CollisionHard
)

func (c CollisionType) String() string {
	if c == CollisionHard {
		return "hard"
	}
	return "soft"
}

// Flag is an opaque semantic tag consumed by game logic.
type Flag uint16

// FlagSet is a small sorted set of flags.
type FlagSet []Flag

// NewFlagSet builds a set, dropping duplicates.
func NewFlagSet(flags ...Flag) FlagSet {
	var s FlagSet
	for _, f := range flags {
		s = s.Add(f)
	}
	return s
}

func (s FlagSet) search(f Flag) int {
	return sort.Search(len(s), func(i int) bool { return s[i] >= f })
}

// Has reports whether f is in the set.
func (s FlagSet) Has(f Flag) bool {
	i := s.search(f)
	return i < len(s) && s[i] == f
}

// Add returns the set with f inserted.
func (s FlagSet) Add(f Flag) FlagSet {
	i := s.search(f)
	if i < len(s) && s[i] == f {
		return s
	}
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = f
	return s
}

// Remove returns the set without f.
func (s FlagSet) Remove(f Flag) FlagSet {
	i := s.search(f)
	if i == len(s) || s[i] != f {
		return s
	}
	return append(s[:i], s[i+1:]...)
}

// Len returns the number of flags.
func (s FlagSet) Len() int { return len(s) }

// Hitbox is a Box plus the simulation state attached to an entity's
// transform hierarchy. Links to other hitboxes are handles into the Store.
type Hitbox struct {
	Handle     Handle
	RootEntity EntityID
	Box        *box.Box

	Mass                  float64
	PreviousPosition      geom.Point
	Acceleration          geom.Point
	PreviousRelativeAngle float64
	AngularAcceleration   float64

	CollisionType CollisionType
	CollisionBit  uint32
	CollisionMask uint32
	Flags         FlagSet

	Parent         Handle
	Children       []Handle
	IsPartOfParent bool
	IsStatic       bool
	// IsKinematic hands the position to an external solver (a chain); the
	// integrator leaves it alone.
	IsKinematic bool

	Tethers        []*Tether
	AngularTethers []*AngularTether

	resolved bool
}

// CreateHitbox wires a hitbox around b with zeroed motion state. When
// parentPose is given the box is resolved against it right away so the
// hitbox starts at its attached position instead of at its raw offset.
func CreateHitbox(parentPose, b *box.Box, mass float64, collisionType CollisionType, bit, mask uint32, flags ...Flag) *Hitbox {
	if parentPose != nil {
		box.UpdateBox(b, parentPose)
	} else {
		box.UpdateRootBox(b, 1)
	}

	return &Hitbox{
		Handle:                NoHandle,
		Box:                   b,
		Mass:                  mass,
		PreviousPosition:      b.Position,
		PreviousRelativeAngle: b.RelativeAngle,
		CollisionType:         collisionType,
		CollisionBit:          bit,
		CollisionMask:         mask,
		Flags:                 NewFlagSet(flags...),
		Parent:                NoHandle,
	}
}

// Entity is the owning entity.
func (h *Hitbox) Entity() EntityID { return h.Handle.Entity }

// LocalID is the entity-local id used for network re-identification.
func (h *Hitbox) LocalID() int32 { return h.Handle.LocalID }

// Position is the resolved world position of the box.
func (h *Hitbox) Position() geom.Point { return h.Box.Position }

// Velocity is the Verlet velocity over the last step.
func (h *Hitbox) Velocity(dt float64) geom.Point {
	if dt <= 0 {
		return geom.Zero
	}
	return h.Box.Position.Sub(h.PreviousPosition).Scale(1 / dt)
}

// AngularVelocity is the Verlet angular velocity of the relative angle.
func (h *Hitbox) AngularVelocity(dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	return geom.WrapAngle(h.Box.RelativeAngle-h.PreviousRelativeAngle) / dt
}

// HasFlag reports whether the hitbox carries f.
func (h *Hitbox) HasFlag(f Flag) bool { return h.Flags.Has(f) }

// HasParent reports whether the hitbox is attached to another hitbox.
func (h *Hitbox) HasParent() bool { return h.Parent.IsValid() }

// IsSimulated reports whether the integrator moves this hitbox on its own:
// roots and detached children are simulated, rigid children follow the parent.
func (h *Hitbox) IsSimulated() bool {
	return !h.IsStatic && !h.IsKinematic && (!h.HasParent() || !h.IsPartOfParent)
}

// SetFlipX mirrors the hitbox. Takes effect on the next pose resolution.
func (h *Hitbox) SetFlipX(flip bool) { h.Box.FlipX = flip }

// Rotate turns the hitbox by delta radians relative to its parent, keeping
// its current angular velocity.
func (h *Hitbox) Rotate(delta float64) {
	h.Box.RelativeAngle += delta
	h.PreviousRelativeAngle += delta
}

// Teleport moves a simulated hitbox without giving it velocity.
func (h *Hitbox) Teleport(pos geom.Point) {
	delta := pos.Sub(h.Box.Position)
	h.Box.Position = pos
	h.PreviousPosition = h.PreviousPosition.Add(delta)
}

// ApplyForce accumulates force into the hitbox acceleration.
func (h *Hitbox) ApplyForce(force geom.Point) {
	h.Acceleration = h.Acceleration.Add(force.Scale(1 / h.Mass))
}

// CanCollide applies the bit/mask filter: each hitbox's bit must be present in
// the other's mask. Two static hitboxes never collide.
func CanCollide(a, b *Hitbox) bool {
	if a.IsStatic && b.IsStatic {
		return false
	}
	return a.CollisionBit&b.CollisionMask != 0 && b.CollisionBit&a.CollisionMask != 0
}
