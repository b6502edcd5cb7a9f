package system

import (
	"context"
	"time"

	"github.com/zeusync/physics/internal/core/observability/log"
)

// AfterTick runs once every successful tick, e.g. to replicate state.
type AfterTick func(ctx context.Context, world *World) error

// Run steps world once per interval until ctx is done or a tick fails.
// A failed tick halts the loop and is returned; cancellation returns nil.
func (m *Manager) Run(ctx context.Context, world *World, interval time.Duration, after AfterTick) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info("simulation loop started", log.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("simulation loop stopped", log.Uint64("tick", world.Tick()))
			return nil
		case <-ticker.C:
		}

		if err := m.Update(ctx, world); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if after == nil {
			continue
		}
		if err := after(ctx, world); err != nil {
			m.logger.Warn("after tick hook failed", log.Uint64("tick", world.Tick()), log.Error(err))
		}
	}
}
