package systems

import (
	"context"

	"github.com/zeusync/physics/internal/core/system"
)

const TetherSystemName = "tethers"

// TetherSystem accumulates spring-damper forces of every active tether.
type TetherSystem struct {
	Base
}

var _ system.System = (*TetherSystem)(nil)

func NewTetherSystem() *TetherSystem {
	s := &TetherSystem{}
	s.init(TetherSystemName, system.PhasePostUpdate, system.PriorityNormal)
	return s
}

func (s *TetherSystem) Update(_ context.Context, w *system.World) error {
	registry := w.Tethers()
	registry.ApplyTethers(w.Store(), w.DT())
	s.processed = registry.Len() + registry.AngularLen()
	return nil
}
