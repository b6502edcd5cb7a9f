package system

import (
	"context"
	"testing"

	"github.com/zeusync/physics/internal/config"
	"github.com/zeusync/physics/internal/core/events/bus"
	"github.com/zeusync/physics/internal/core/observability/log"
	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/core/systems/physics/box"
	"github.com/zeusync/physics/internal/core/systems/physics/geom"
)

func newTestWorld() *World {
	return NewWorld(config.Default().Simulation, physics.NewStore(), physics.NewTetherRegistry(log.Nop()), bus.New(), log.Nop())
}

func addBody(w *World, entity physics.EntityID, x, y float64) *physics.Hitbox {
	hb := physics.CreateHitbox(nil, box.NewCircular(geom.Zero, 0, 1), 1, physics.CollisionHard, 1, 1)
	hb.Box.Position = geom.New(x, y)
	hb.PreviousPosition = hb.Box.Position
	w.Store().Add(entity, hb)
	return hb
}

func collect(t *testing.T, b bus.EventBus, eventType string) *[]bus.Event {
	t.Helper()
	var got []bus.Event
	if _, err := b.Subscribe(eventType, func(e bus.Event) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	return &got
}

type fakeSystem struct {
	name      string
	phase     ExecutionPhase
	priority  Priority
	disabled  bool
	calls     *[]string
	err       error
	panicWith any
	processed int

	initialized bool
	shutdown    bool
}

var _ System = (*fakeSystem)(nil)

func (s *fakeSystem) Name() string                   { return s.name }
func (s *fakeSystem) Priority() Priority             { return s.priority }
func (s *fakeSystem) ExecutionPhase() ExecutionPhase { return s.phase }
func (s *fakeSystem) IsEnabled() bool                { return !s.disabled }
func (s *fakeSystem) SetEnabled(enabled bool)        { s.disabled = !enabled }
func (s *fakeSystem) LastProcessed() int             { return s.processed }

func (s *fakeSystem) Initialize(context.Context, *World) error {
	s.initialized = true
	return nil
}

func (s *fakeSystem) Shutdown(context.Context) error {
	s.shutdown = true
	return nil
}

func (s *fakeSystem) Update(context.Context, *World) error {
	if s.calls != nil {
		*s.calls = append(*s.calls, s.name)
	}
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.err
}
