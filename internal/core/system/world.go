package system

import (
	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/config"
	"github.com/zeusync/physics/internal/core/events"
	"github.com/zeusync/physics/internal/core/events/bus"
	"github.com/zeusync/physics/internal/core/observability/log"
	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/core/systems/physics/chain"
	"github.com/zeusync/physics/pkg/sequence"
)

const eventSource = "world"

// World is the simulation state shared by every system. It is owned by the
// tick loop and is not safe for concurrent use.
type World struct {
	store   *physics.Store
	tethers *physics.TetherRegistry
	chains  []*chain.TetheredHitboxChain
	bus     bus.EventBus
	logger  log.Log
	sim     config.SimulationConfig

	tick       uint64
	collisions []events.Collision
	err        error
}

func NewWorld(sim config.SimulationConfig, store *physics.Store, tethers *physics.TetherRegistry, eventBus bus.EventBus, logger log.Log) *World {
	if logger == nil {
		logger = log.Provide()
	}
	if eventBus == nil {
		eventBus = bus.New()
	}
	return &World{
		store:   store,
		tethers: tethers,
		bus:     eventBus,
		logger:  logger,
		sim:     sim,
	}
}

func (w *World) Store() *physics.Store            { return w.store }
func (w *World) Tethers() *physics.TetherRegistry { return w.tethers }
func (w *World) Bus() bus.EventBus                { return w.bus }
func (w *World) Logger() log.Log                  { return w.logger }
func (w *World) Simulation() config.SimulationConfig {
	return w.sim
}

// DT is the fixed step in seconds.
func (w *World) DT() float64 { return w.sim.DT() }

// Tick is the index of the tick currently being simulated.
func (w *World) Tick() uint64 { return w.tick }

func (w *World) advance() {
	w.tick++
}

// Err is the error that halted the world, if any.
func (w *World) Err() error { return w.err }

// Fail halts the world. Only the first error is kept.
func (w *World) Fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *World) AddChain(c *chain.TetheredHitboxChain) {
	w.chains = append(w.chains, c)
}

func (w *World) Chains() []*chain.TetheredHitboxChain { return w.chains }

// Collisions are the pairs found by the last collision pass.
func (w *World) Collisions() []events.Collision { return w.collisions }

func (w *World) ResetCollisions() { w.collisions = w.collisions[:0] }

func (w *World) AddCollision(c events.Collision) {
	w.collisions = append(w.collisions, c)
}

// AdmitEntity activates every tether stored on the entity's hitboxes and
// announces the entity on the bus.
func (w *World) AdmitEntity(entity physics.EntityID) (int, error) {
	if _, ok := w.store.Transform(entity); !ok {
		return 0, errors.Wrapf(physics.ErrEntityNotFound, "admit entity %d", entity)
	}

	added := w.tethers.AddEntityTethersToWorld(w.store, entity)
	err := w.bus.Publish(events.NewEntityAdmitted(eventSource, events.EntityAdmitted{
		Entity:   entity,
		Hitboxes: len(w.store.Hitboxes(entity)),
		Tethers:  added,
	}))
	return added, errors.Wrap(err, "publish entity admitted")
}

// DestroyEntity tears down every tether and chain touching the entity, then
// removes its hitboxes. Surviving chain nodes go back to the integrator.
func (w *World) DestroyEntity(entity physics.EntityID) error {
	if _, ok := w.store.Transform(entity); !ok {
		return errors.Wrapf(physics.ErrEntityNotFound, "destroy entity %d", entity)
	}

	tethers := w.tethers.DestroyEntityTethers(w.store, entity)
	w.dropChains(entity)

	removed, err := w.store.RemoveEntity(entity)
	if err != nil {
		return err
	}

	w.logger.Debug("entity destroyed",
		log.Uint32("entity", uint32(entity)),
		log.Int("hitboxes", len(removed)),
		log.Int("tethers", tethers),
	)
	err = w.bus.Publish(events.NewEntityDestroyed(eventSource, events.EntityDestroyed{
		Entity:   entity,
		Hitboxes: len(removed),
		Tethers:  tethers,
	}))
	return errors.Wrap(err, "publish entity destroyed")
}

// DestroyTether removes an active tether and announces it.
func (w *World) DestroyTether(t *physics.Tether) error {
	w.tethers.DestroyTether(w.store, t)
	err := w.bus.Publish(events.NewTetherDestroyed(eventSource, events.TetherDestroyed{
		Hitbox1: t.Hitbox1,
		Hitbox2: t.Hitbox2,
	}))
	return errors.Wrap(err, "publish tether destroyed")
}

func (w *World) dropChains(entity physics.EntityID) {
	dropped, kept := sequence.From(w.chains).Partition(func(c *chain.TetheredHitboxChain) bool {
		return chainTouches(c, entity)
	})
	if len(dropped) == 0 {
		return
	}
	w.chains = kept

	var drivenNodes []physics.Handle
	for _, c := range kept {
		for i, n := range c.Nodes {
			if i > 0 || !c.Anchored {
				drivenNodes = append(drivenNodes, n.Hitbox)
			}
		}
	}
	driven := sequence.ToSet(sequence.From(drivenNodes))
	for _, c := range dropped {
		for _, n := range c.Nodes {
			if _, ok := driven[n.Hitbox]; ok || n.Hitbox.Entity == entity {
				continue
			}
			if hb, ok := w.store.Get(n.Hitbox); ok {
				hb.IsKinematic = false
			}
		}
	}
}

func chainTouches(c *chain.TetheredHitboxChain, entity physics.EntityID) bool {
	return sequence.From(c.Nodes).Any(func(n chain.Node) bool { return n.Hitbox.Entity == entity })
}
