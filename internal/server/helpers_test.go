package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/physics/internal/config"
	"github.com/zeusync/physics/internal/core/observability/log"
	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/core/systems/physics/box"
	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

func testConfig(mutate func(*config.ReplicationConfig)) config.ReplicationConfig {
	cfg := config.Default().Replication
	cfg.Enabled = true
	cfg.ListenAddr = "127.0.0.1:0"
	if mutate != nil {
		mutate(&cfg)
	}
	return cfg
}

func newTestServer(t *testing.T, mutate func(*config.ReplicationConfig)) *Server {
	t.Helper()
	srv, err := NewServer(testConfig(mutate), log.Nop())
	require.NoError(t, err)
	return srv
}

func newTestStore() *physics.Store {
	store := physics.NewStore()
	hb := physics.CreateHitbox(nil, box.NewCircular(geom.Zero, 0, 2), 1, physics.CollisionHard, 1, 1)
	hb.Box.Position = geom.New(3, 4)
	store.Add(1, hb)
	return store
}
