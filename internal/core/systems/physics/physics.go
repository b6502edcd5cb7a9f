// Package physics holds the simulation-side state of hitboxes: the arena that
// owns them, their parent/child links, spring-damper tethers between them,
// pose resolution over the whole hierarchy and a Verlet integrator.
//
// Everything here is single-threaded and tick based. The only concurrent
// path is ResolvePoses with more than one worker, which splits the work by
// independent hitbox trees; tether forces are always applied serially.
package physics

import "fmt"

// EntityID identifies the entity that owns a group of hitboxes.
type EntityID uint32

// Handle addresses a hitbox by its owning entity and its entity-local id.
// Handles are stable for the lifetime of the hitbox and are what tethers and
// parent/child links store instead of pointers.
type Handle struct {
	Entity  EntityID
	LocalID int32
}

// NoHandle is the sentinel for "no hitbox", used for parentless hitboxes.
var NoHandle = Handle{Entity: 0, LocalID: -1}

// IsValid reports whether h refers to a hitbox.
func (h Handle) IsValid() bool { return h.LocalID >= 0 }

func (h Handle) String() string {
	if !h.IsValid() {
		return "none"
	}
	return fmt.Sprintf("%d/%d", h.Entity, h.LocalID)
}

func (h Handle) less(o Handle) bool {
	if h.Entity != o.Entity {
		return h.Entity < o.Entity
	}
	return h.LocalID < o.LocalID
}

// WeightlessMass is the near-zero mass given to purely structural hitboxes
// that must not influence the bodies they are attached to.
const WeightlessMass = 1e-6
