package systems

import (
	"context"

	"github.com/zeusync/physics/internal/core/system"
	"github.com/zeusync/physics/internal/core/systems/physics"
)

const IntegrateSystemName = "integrate"

// IntegrateSystem advances simulated hitboxes with the accelerations the
// previous tick's tether pass accumulated.
type IntegrateSystem struct {
	Base
}

var _ system.System = (*IntegrateSystem)(nil)

func NewIntegrateSystem() *IntegrateSystem {
	s := &IntegrateSystem{}
	s.init(IntegrateSystemName, system.PhasePreUpdate, system.PriorityHigh)
	return s
}

func (s *IntegrateSystem) Update(_ context.Context, w *system.World) error {
	s.processed = physics.Integrate(w.Store(), w.DT())
	return nil
}
