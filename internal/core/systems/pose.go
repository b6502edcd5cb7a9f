package systems

import (
	"context"

	"github.com/zeusync/physics/internal/core/system"
)

const PoseSystemName = "pose"

// PoseSystem resolves world poses parents-first, spreading independent trees
// over the configured number of workers.
type PoseSystem struct {
	Base
}

var _ system.System = (*PoseSystem)(nil)

func NewPoseSystem() *PoseSystem {
	s := &PoseSystem{}
	s.init(PoseSystemName, system.PhaseUpdate, system.PriorityNormal)
	return s
}

func (s *PoseSystem) Update(ctx context.Context, w *system.World) error {
	n, err := w.Store().ResolvePoses(ctx, w.Simulation().PoseWorkers)
	s.processed = n
	return err
}
