// Package systems holds the per-tick physics systems run by the system
// Manager: integration and chains in PreUpdate, pose resolution in Update,
// tether forces in PostUpdate and collision in LateUpdate.
package systems

import (
	"context"
	"sync/atomic"

	"github.com/zeusync/physics/internal/core/system"
	"github.com/zeusync/physics/internal/core/systems/physics"
)

// Base carries the identity and enabled state shared by every system.
type Base struct {
	name      string
	phase     system.ExecutionPhase
	priority  system.Priority
	enabled   atomic.Bool
	processed int
}

func (b *Base) init(name string, phase system.ExecutionPhase, priority system.Priority) {
	b.name, b.phase, b.priority = name, phase, priority
	b.enabled.Store(true)
}

func (b *Base) Name() string                          { return b.name }
func (b *Base) ExecutionPhase() system.ExecutionPhase { return b.phase }
func (b *Base) Priority() system.Priority             { return b.priority }
func (b *Base) IsEnabled() bool                       { return b.enabled.Load() }
func (b *Base) SetEnabled(enabled bool)               { b.enabled.Store(enabled) }
func (b *Base) LastProcessed() int                    { return b.processed }

func (b *Base) Initialize(context.Context, *system.World) error { return nil }
func (b *Base) Shutdown(context.Context) error                  { return nil }

// Defaults returns the standard tick pipeline.
func Defaults(pairs physics.PairSource) []system.System {
	return []system.System{
		NewIntegrateSystem(),
		NewChainSystem(),
		NewPoseSystem(),
		NewTetherSystem(),
		NewCollisionSystem(pairs),
	}
}
