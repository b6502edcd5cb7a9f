package physics

import (
	"github.com/pkg/errors"
)

// Tether is a linear spring-damper between two hitboxes. It is symmetric:
// both ends list it in their Tethers. A tether only affects the simulation
// once registered in a TetherRegistry; until then it is inert.
type Tether struct {
	Hitbox1 Handle
	Hitbox2 Handle

	IdealDistance  float64
	SpringConstant float64
	Damping        float64
}

// NewTether links an inert tether into both hitboxes. Both must already be
// owned by a Store so their handles are valid.
func NewTether(h1, h2 *Hitbox, idealDistance, springConstant, damping float64) *Tether {
	if !h1.Handle.IsValid() || !h2.Handle.IsValid() {
		panic(errors.Wrapf(ErrUnknownHitbox, "tether between %s and %s", h1.Handle, h2.Handle))
	}

	t := &Tether{
		Hitbox1:        h1.Handle,
		Hitbox2:        h2.Handle,
		IdealDistance:  idealDistance,
		SpringConstant: springConstant,
		Damping:        damping,
	}
	h1.Tethers = append(h1.Tethers, t)
	if h2 != h1 {
		h2.Tethers = append(h2.Tethers, t)
	}
	return t
}

// OtherHitbox returns the end opposite to self. Passing a handle that is
// neither end is a programming error and panics with ErrUnknownTetherEnd.
func (t *Tether) OtherHitbox(self Handle) Handle {
	switch self {
	case t.Hitbox1:
		return t.Hitbox2
	case t.Hitbox2:
		return t.Hitbox1
	default:
		panic(errors.Wrapf(ErrUnknownTetherEnd, "%s is not %s or %s", self, t.Hitbox1, t.Hitbox2))
	}
}

// Involves reports whether h is one of the ends.
func (t *Tether) Involves(h Handle) bool {
	return t.Hitbox1 == h || t.Hitbox2 == h
}

func (t *Tether) apply(store *Store, dt float64) {
	hb1, ok1 := store.Get(t.Hitbox1)
	hb2, ok2 := store.Get(t.Hitbox2)
	if !ok1 || !ok2 {
		panic(errors.Wrapf(ErrUnknownHitbox, "active tether %s-%s", t.Hitbox1, t.Hitbox2))
	}

	diff := hb2.Box.Position.Sub(hb1.Box.Position)
	distance := diff.Length()
	if distance == 0 {
		return
	}

	normalizedDiff := diff.Scale(1 / distance)
	displacement := distance - t.IdealDistance
	springForce := normalizedDiff.Scale(t.SpringConstant * displacement)

	relVel := hb1.Velocity(dt).Sub(hb2.Velocity(dt))
	dampingForce := relVel.Scale(-t.Damping)

	force := springForce.Add(dampingForce)
	if !hb1.IsStatic {
		hb1.Acceleration = hb1.Acceleration.Add(force.Scale(1 / hb1.Mass))
	}
	if !hb2.IsStatic {
		hb2.Acceleration = hb2.Acceleration.Sub(force.Scale(1 / hb2.Mass))
	}

	store.markDirty(t.Hitbox1.Entity)
	store.markDirty(t.Hitbox2.Entity)
}

func removeTether(list []*Tether, t *Tether) []*Tether {
	for i, cur := range list {
		if cur == t {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
