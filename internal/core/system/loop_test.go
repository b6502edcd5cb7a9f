package system

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/physics/internal/core/observability/log"
)

func TestManager_RunStopsOnCancel(t *testing.T) {
	m := NewManager(log.Nop())
	require.NoError(t, m.RegisterSystem(&fakeSystem{name: "noop", phase: PhaseUpdate}))
	w := newTestWorld()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen []uint64
	err := m.Run(ctx, w, time.Millisecond, func(_ context.Context, world *World) error {
		seen = append(seen, world.Tick())
		if world.Tick() == 3 {
			cancel()
		}
		return errors.New("ignored")
	})

	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, seen)
	assert.Equal(t, uint64(3), w.Tick())
}

func TestManager_RunHaltsOnFailure(t *testing.T) {
	boom := errors.New("boom")
	m := NewManager(log.Nop())
	require.NoError(t, m.RegisterSystem(&fakeSystem{name: "broken", phase: PhaseUpdate, err: boom}))
	w := newTestWorld()

	called := false
	err := m.Run(context.Background(), w, time.Millisecond, func(context.Context, *World) error {
		called = true
		return nil
	})

	assert.True(t, errors.Is(err, boom))
	assert.False(t, called)
	assert.Equal(t, uint64(0), w.Tick())
	assert.Error(t, w.Err())
}
