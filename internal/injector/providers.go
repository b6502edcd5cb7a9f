// Package injector assembles the simulation server from its configuration.
package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/physics/internal/config"
	"github.com/zeusync/physics/internal/core/events/bus"
	"github.com/zeusync/physics/internal/core/observability/log"
	"github.com/zeusync/physics/internal/core/system"
	"github.com/zeusync/physics/internal/core/systems"
	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/server"
)

// App is everything cmd/server needs to run a simulation.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	World   *system.World
	Manager *system.Manager
	// Server is nil when replication is disabled.
	Server *server.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideSimulation,
	ProvideReplication,
	physics.NewStore,
	physics.NewTetherRegistry,
	bus.New,
	system.NewWorld,
	ProvideManager,
	ProvideServer,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return log.NewWithConfig(log.Config{Level: level, Encoding: cfg.Log.Encoding})
}

func ProvideSimulation(cfg *config.Config) config.SimulationConfig { return cfg.Simulation }

func ProvideReplication(cfg *config.Config) config.ReplicationConfig { return cfg.Replication }

// ProvideManager registers the default pipeline with the configured
// broadphase.
func ProvideManager(sim config.SimulationConfig, logger log.Log) (*system.Manager, error) {
	m := system.NewManager(logger)
	for _, s := range systems.Defaults(systems.PairSourceFor(sim.Broadphase)) {
		if err := m.RegisterSystem(s); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func ProvideServer(rep config.ReplicationConfig, logger log.Log) (*server.Server, error) {
	if !rep.Enabled {
		return nil, nil
	}
	return server.NewServer(rep, logger)
}
