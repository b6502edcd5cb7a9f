package systems

import (
	"context"

	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/core/system"
)

const ChainSystemName = "chains"

// ChainSystem steps every tethered hitbox chain in insertion order.
type ChainSystem struct {
	Base
}

var _ system.System = (*ChainSystem)(nil)

func NewChainSystem() *ChainSystem {
	s := &ChainSystem{}
	s.init(ChainSystemName, system.PhasePreUpdate, system.PriorityNormal)
	return s
}

func (s *ChainSystem) Update(_ context.Context, w *system.World) error {
	s.processed = 0
	for i, c := range w.Chains() {
		if err := c.Step(w.Store(), w.DT()); err != nil {
			return errors.Wrapf(err, "chain %d", i)
		}
		s.processed += c.Len()
	}
	return nil
}
