// Package events defines the physics events published on the bus.
package events

import (
	"github.com/zeusync/physics/internal/core/events/bus"
	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/core/systems/physics/box"
)

const (
	TypeCollision       = "physics.collision"
	TypeEntityAdmitted  = "physics.entity.admitted"
	TypeEntityDestroyed = "physics.entity.destroyed"
	TypeTetherDestroyed = "physics.tether.destroyed"
	TypeSystemFailed    = "physics.system.failed"
)

// Collision is one overlapping pair found during a tick. PushA moves A out of
// B and PushB moves B out of A; both are zero unless Resolved is set.
type Collision struct {
	Tick     uint64
	A, B     physics.Handle
	Resolved bool
	PushA    box.PushInfo
	PushB    box.PushInfo
}

// EntityAdmitted reports an entity whose hitboxes entered the world and how
// many of its tethers were registered with it.
type EntityAdmitted struct {
	Entity   physics.EntityID
	Hitboxes int
	Tethers  int
}

// EntityDestroyed reports a removed entity and the tethers torn down with it.
type EntityDestroyed struct {
	Entity   physics.EntityID
	Hitboxes int
	Tethers  int
}

// TetherDestroyed reports the endpoints of a tether removed from the world.
type TetherDestroyed struct {
	Hitbox1, Hitbox2 physics.Handle
}

// SystemFailed reports a system that returned an error or panicked.
type SystemFailed struct {
	Tick   uint64
	System string
	Err    error
}

func NewCollision(source string, c Collision) bus.Event {
	return bus.NewEvent(TypeCollision, source, c)
}

func NewEntityAdmitted(source string, e EntityAdmitted) bus.Event {
	return bus.NewEvent(TypeEntityAdmitted, source, e)
}

func NewEntityDestroyed(source string, e EntityDestroyed) bus.Event {
	return bus.NewEvent(TypeEntityDestroyed, source, e)
}

func NewTetherDestroyed(source string, e TetherDestroyed) bus.Event {
	return bus.NewEvent(TypeTetherDestroyed, source, e)
}

func NewSystemFailed(source string, e SystemFailed) bus.Event {
	return bus.NewEvent(TypeSystemFailed, source, e)
}
