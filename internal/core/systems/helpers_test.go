package systems

import (
	"github.com/zeusync/physics/internal/config"
	"github.com/zeusync/physics/internal/core/events/bus"
	"github.com/zeusync/physics/internal/core/observability/log"
	"github.com/zeusync/physics/internal/core/system"
	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/core/systems/physics/box"
	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

const tolerance = 1e-9

func newWorld(mutate func(*config.SimulationConfig)) *system.World {
	sim := config.Default().Simulation
	if mutate != nil {
		mutate(&sim)
	}
	return system.NewWorld(sim, physics.NewStore(), physics.NewTetherRegistry(log.Nop()), bus.New(), log.Nop())
}

func addCircle(w *system.World, entity physics.EntityID, x, y, radius float64, ct physics.CollisionType) *physics.Hitbox {
	return addBox(w, entity, box.NewCircular(geom.Zero, 0, radius), x, y, ct)
}

func addBox(w *system.World, entity physics.EntityID, b *box.Box, x, y float64, ct physics.CollisionType) *physics.Hitbox {
	b.Position = geom.New(x, y)
	hb := physics.CreateHitbox(nil, b, 1, ct, 1, 1)
	w.Store().Add(entity, hb)
	return hb
}
