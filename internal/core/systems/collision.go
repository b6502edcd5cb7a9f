package systems

import (
	"context"

	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/core/events"
	"github.com/zeusync/physics/internal/core/system"
	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/core/systems/physics/box"
)

const CollisionSystemName = "collision"

// CollisionSystem tests candidate pairs, separates hard pairs and publishes
// one event per colliding pair. Soft pairs are reported only.
type CollisionSystem struct {
	Base
	pairs physics.PairSource
}

var _ system.System = (*CollisionSystem)(nil)

func NewCollisionSystem(pairs physics.PairSource) *CollisionSystem {
	if pairs == nil {
		pairs = physics.AllPairs{}
	}
	s := &CollisionSystem{pairs: pairs}
	s.init(CollisionSystemName, system.PhaseLateUpdate, system.PriorityNormal)
	return s
}

// PairSourceFor maps a broadphase name from the config to a PairSource.
func PairSourceFor(name string) physics.PairSource {
	if name == "sweep" {
		return physics.SweepPairs{}
	}
	return physics.AllPairs{}
}

func (s *CollisionSystem) Update(_ context.Context, w *system.World) error {
	store := w.Store()
	epsilon := w.Simulation().CollisionEpsilon
	w.ResetCollisions()
	s.processed = 0

	var published []events.Collision
	for _, pair := range s.pairs.Candidates(store) {
		a, b := pair[0], pair[1]
		s.processed++
		if !physics.CanCollide(a, b) || !box.IsColliding(a.Box, b.Box, epsilon) {
			continue
		}

		c := events.Collision{Tick: w.Tick(), A: a.Handle, B: b.Handle}
		if a.CollisionType == physics.CollisionHard && b.CollisionType == physics.CollisionHard {
			c.Resolved, c.PushA, c.PushB = separate(store, a, b)
		}
		w.AddCollision(c)
		published = append(published, c)
	}

	for _, c := range published {
		if err := w.Bus().Publish(events.NewCollision(CollisionSystemName, c)); err != nil {
			return errors.Wrap(err, "publish collision")
		}
	}
	return nil
}

// separate moves the two bodies apart along their push directions. A static
// body never moves; when both can move each covers half the depth.
func separate(store *physics.Store, a, b *physics.Hitbox) (bool, box.PushInfo, box.PushInfo) {
	moverA, moverB := mover(store, a), mover(store, b)
	if moverA == moverB {
		return false, box.PushInfo{}, box.PushInfo{}
	}

	pushA := box.CollisionPushInfo(a.Box, b.Box)
	pushB := pushA.Reversed()
	if pushA.AmountIn <= 0 {
		return false, box.PushInfo{}, box.PushInfo{}
	}

	share := 1.0
	if moverA != nil && moverB != nil {
		share = 0.5
	}
	if moverA != nil {
		pushA.AmountIn *= share
		moveBy(store, moverA, pushA)
	} else {
		pushA = box.PushInfo{}
	}
	if moverB != nil {
		pushB.AmountIn *= share
		moveBy(store, moverB, pushB)
	} else {
		pushB = box.PushInfo{}
	}
	return true, pushA, pushB
}

// mover is the hitbox whose position carries hb: hb itself, or the nearest
// ancestor for rigid children. Nil when that body is static.
func mover(store *physics.Store, hb *physics.Hitbox) *physics.Hitbox {
	cur := hb
	for cur.HasParent() && cur.IsPartOfParent {
		cur = store.MustGet(cur.Parent)
	}
	if cur.IsStatic {
		return nil
	}
	return cur
}

func moveBy(store *physics.Store, hb *physics.Hitbox, push box.PushInfo) {
	if push.AmountIn <= 0 {
		return
	}
	hb.Box.Position = hb.Box.Position.Add(push.Vector())
	store.ResolveRigidChildren(hb)
	store.MarkDirty(hb.Entity())
}
