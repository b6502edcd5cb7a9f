package systems

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/physics/internal/core/observability/log"
	"github.com/zeusync/physics/internal/core/system"
	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/core/systems/physics/box"
	"github.com/zeusync/physics/internal/core/systems/physics/chain"
	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

func newManager(t *testing.T) *system.Manager {
	t.Helper()
	m := system.NewManager(log.Nop())
	for _, s := range Defaults(nil) {
		require.NoError(t, m.RegisterSystem(s))
	}
	return m
}

func TestDefaults_ExecutionOrder(t *testing.T) {
	assert.Equal(t,
		[]string{IntegrateSystemName, ChainSystemName, PoseSystemName, TetherSystemName, CollisionSystemName},
		newManager(t).GetExecutionOrder(),
	)
}

func TestPipeline_TetherPullsBodiesTogether(t *testing.T) {
	w := newWorld(nil)
	a := addCircle(w, 1, 0, 0, 1, physics.CollisionSoft)
	b := addCircle(w, 2, 80, 0, 1, physics.CollisionSoft)
	physics.NewTether(a, b, 50, 20, 2)
	_, err := w.AdmitEntity(1)
	require.NoError(t, err)

	m := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.Update(ctx, w))
	assert.Equal(t, geom.Zero, a.Position(), "forces from the first tick apply on the next one")

	for i := 0; i < 10; i++ {
		require.NoError(t, m.Update(ctx, w))
	}

	assert.Equal(t, uint64(11), w.Tick())
	assert.Less(t, a.Position().Distance(b.Position()), 80.0)
	assert.Greater(t, a.Position().X, 0.0)
	assert.Less(t, b.Position().X, 80.0)
	assert.InDelta(t, 80, a.Position().X+b.Position().X, 1e-6, "equal masses move symmetrically")
	assert.Greater(t, a.Velocity(w.DT()).X, 0.0)

	metrics, ok := m.GetSystemMetrics(TetherSystemName)
	require.True(t, ok)
	assert.Equal(t, uint64(11), metrics.ExecutionCount)
	assert.Equal(t, uint64(11), metrics.EntitiesProcessed)
}

func TestPipeline_RigidChildFollowsRoot(t *testing.T) {
	w := newWorld(nil)
	root := addCircle(w, 1, 0, 0, 1, physics.CollisionSoft)
	child := physics.CreateHitbox(root.Box, box.NewCircular(geom.New(5, 0), 0, 1), 1, physics.CollisionSoft, 1, 1)
	w.Store().Add(1, child)
	require.NoError(t, w.Store().Attach(child.Handle, root.Handle, true))

	root.PreviousPosition = geom.New(-1, 0)

	m := newManager(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, m.Update(context.Background(), w))
	}

	assert.InDelta(t, 3, root.Position().X, tolerance)
	assert.InDelta(t, 8, child.Position().X, tolerance)
	assert.InDelta(t, 60, child.Velocity(w.DT()).X, 1e-6)
}

func TestPipeline_ChainFallsUnderGravity(t *testing.T) {
	w := newWorld(nil)
	anchor := addCircle(w, 1, 0, 0, 1, physics.CollisionSoft)
	tail := addCircle(w, 2, 5, 0, 1, physics.CollisionSoft)
	require.NoError(t, w.Store().SetStatic(1, true))

	c, err := chain.NewTetheredHitboxChain([]*physics.Hitbox{anchor, tail}, chain.Params{
		IdealDistance:  5,
		SpringConstant: 50,
		Damping:        1,
		Anchored:       true,
		Gravity:        geom.New(0, -100),
	})
	require.NoError(t, err)
	w.AddChain(c)

	m := newManager(t)
	for i := 0; i < 20; i++ {
		require.NoError(t, m.Update(context.Background(), w))
	}

	assert.Equal(t, geom.Zero, anchor.Position())
	assert.Less(t, tail.Position().Y, 0.0)
}

func TestPipeline_HaltsOnInvariantViolation(t *testing.T) {
	w := newWorld(nil)
	a := addCircle(w, 1, 0, 0, 1, physics.CollisionSoft)
	b := addCircle(w, 2, 10, 0, 1, physics.CollisionSoft)
	tether := physics.NewTether(a, b, 5, 1, 0)
	_, err := w.AdmitEntity(1)
	require.NoError(t, err)

	// Corrupt the registry state: a handle that no hitbox owns.
	tether.Hitbox2 = physics.Handle{Entity: 9, LocalID: 0}

	m := newManager(t)
	err = m.Update(context.Background(), w)
	require.Error(t, err)
	assert.ErrorIs(t, err, system.ErrSystemPanic)
	assert.ErrorIs(t, m.Update(context.Background(), w), system.ErrWorldFailed)
}
