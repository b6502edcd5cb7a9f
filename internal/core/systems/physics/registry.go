package physics

import (
	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/core/observability/log"
)

// TetherRegistry is the set of active tethers of a world. Only registered
// tethers receive force each tick. Iteration follows registration order so
// the force pass is deterministic.
type TetherRegistry struct {
	tethers []*Tether
	index   map[*Tether]int

	angular      []*AngularTether
	angularIndex map[*AngularTether]int

	logger log.Log
}

func NewTetherRegistry(logger log.Log) *TetherRegistry {
	if logger == nil {
		logger = log.Provide()
	}
	return &TetherRegistry{
		index:        make(map[*Tether]int),
		angularIndex: make(map[*AngularTether]int),
		logger:       logger.With(log.String("component", "tether_registry")),
	}
}

// Add activates t. Adding an active tether is a no-op and returns false.
func (r *TetherRegistry) Add(t *Tether) bool {
	if _, ok := r.index[t]; ok {
		return false
	}
	r.index[t] = len(r.tethers)
	r.tethers = append(r.tethers, t)
	return true
}

// AddAngular activates an angular tether. Idempotent.
func (r *TetherRegistry) AddAngular(t *AngularTether) bool {
	if _, ok := r.angularIndex[t]; ok {
		return false
	}
	r.angularIndex[t] = len(r.angular)
	r.angular = append(r.angular, t)
	return true
}

// IsActive reports whether t is registered.
func (r *TetherRegistry) IsActive(t *Tether) bool {
	_, ok := r.index[t]
	return ok
}

// IsAngularActive reports whether t is registered.
func (r *TetherRegistry) IsAngularActive(t *AngularTether) bool {
	_, ok := r.angularIndex[t]
	return ok
}

// AddEntityTethersToWorld activates every inert tether found on the entity's
// hitboxes. It is called when the entity is admitted to the world and is
// idempotent. Returns the number of newly activated tethers.
func (r *TetherRegistry) AddEntityTethersToWorld(store *Store, entity EntityID) int {
	added := 0
	for _, hb := range store.Hitboxes(entity) {
		for _, t := range hb.Tethers {
			if r.Add(t) {
				added++
			}
		}
		for _, t := range hb.AngularTethers {
			if r.AddAngular(t) {
				added++
			}
		}
	}

	if added > 0 {
		r.logger.Debug("entity tethers activated",
			log.Uint32("entity", uint32(entity)),
			log.Int("count", added),
		)
	}
	return added
}

// DestroyTether removes an active tether from the registry and from the local
// lists of both ends. Destroying a tether that is not registered is a
// programming error and panics with ErrTetherNotRegistered.
func (r *TetherRegistry) DestroyTether(store *Store, t *Tether) {
	i, ok := r.index[t]
	if !ok {
		panic(errors.Wrapf(ErrTetherNotRegistered, "tether %s-%s", t.Hitbox1, t.Hitbox2))
	}

	last := len(r.tethers) - 1
	copy(r.tethers[i:], r.tethers[i+1:])
	r.tethers[last] = nil
	r.tethers = r.tethers[:last]
	delete(r.index, t)
	for j := i; j < len(r.tethers); j++ {
		r.index[r.tethers[j]] = j
	}

	Unlink(store, t)
}

// DestroyAngularTether removes an active angular tether from the registry and
// from its owner. Panics with ErrTetherNotRegistered if it is not active.
func (r *TetherRegistry) DestroyAngularTether(store *Store, t *AngularTether) {
	i, ok := r.angularIndex[t]
	if !ok {
		panic(errors.Wrapf(ErrTetherNotRegistered, "angular tether %s-%s", t.Owner, t.Origin))
	}

	last := len(r.angular) - 1
	copy(r.angular[i:], r.angular[i+1:])
	r.angular[last] = nil
	r.angular = r.angular[:last]
	delete(r.angularIndex, t)
	for j := i; j < len(r.angular); j++ {
		r.angularIndex[r.angular[j]] = j
	}

	if owner, ok := store.Get(t.Owner); ok {
		owner.AngularTethers = removeAngularTether(owner.AngularTethers, t)
	}
}

// Unlink removes t from the local lists of both ends without touching the
// registry. It is how inert tethers are discarded.
func Unlink(store *Store, t *Tether) {
	if hb, ok := store.Get(t.Hitbox1); ok {
		hb.Tethers = removeTether(hb.Tethers, t)
	}
	if hb, ok := store.Get(t.Hitbox2); ok {
		hb.Tethers = removeTether(hb.Tethers, t)
	}
}

// DestroyEntityTethers tears down every tether that touches one of the
// entity's hitboxes: linear tethers at either end, angular tethers owned by
// or anchored on them. Inert tethers are unlinked. Returns how many tethers
// were removed.
func (r *TetherRegistry) DestroyEntityTethers(store *Store, entity EntityID) int {
	removed := 0
	hitboxes := store.Hitboxes(entity)

	for _, hb := range hitboxes {
		for len(hb.Tethers) > 0 {
			t := hb.Tethers[0]
			if r.IsActive(t) {
				r.DestroyTether(store, t)
			} else {
				Unlink(store, t)
			}
			removed++
		}
	}

	owned := make(map[Handle]struct{}, len(hitboxes))
	for _, hb := range hitboxes {
		owned[hb.Handle] = struct{}{}
	}
	for _, t := range append([]*AngularTether(nil), r.angular...) {
		_, ownerGone := owned[t.Owner]
		_, originGone := owned[t.Origin]
		if ownerGone || originGone {
			r.DestroyAngularTether(store, t)
			removed++
		}
	}
	store.Each(func(hb *Hitbox) {
		kept := hb.AngularTethers[:0]
		for _, t := range hb.AngularTethers {
			_, ownerGone := owned[t.Owner]
			_, originGone := owned[t.Origin]
			if ownerGone || originGone {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		hb.AngularTethers = kept
	})

	if removed > 0 {
		r.logger.Debug("entity tethers destroyed",
			log.Uint32("entity", uint32(entity)),
			log.Int("count", removed),
		)
	}
	return removed
}

// ApplyTethers accumulates the spring-damper force of every active tether
// into the accelerations of its ends, then the angular tethers. Must run
// after pose resolution and before integration. Both ends are marked dirty.
func (r *TetherRegistry) ApplyTethers(store *Store, dt float64) {
	for _, t := range r.tethers {
		t.apply(store, dt)
	}
	r.ApplyAngularTethers(store, dt)
}

// ApplyAngularTethers accumulates the correction of every active angular tether.
func (r *TetherRegistry) ApplyAngularTethers(store *Store, dt float64) {
	for _, t := range r.angular {
		t.apply(store, dt)
	}
}

// Len is the number of active linear tethers.
func (r *TetherRegistry) Len() int { return len(r.tethers) }

// AngularLen is the number of active angular tethers.
func (r *TetherRegistry) AngularLen() int { return len(r.angular) }

// Tethers returns the active linear tethers in registration order. The slice
// must not be modified.
func (r *TetherRegistry) Tethers() []*Tether { return r.tethers }

// AngularTethers returns the active angular tethers.
func (r *TetherRegistry) AngularTethers() []*AngularTether { return r.angular }
