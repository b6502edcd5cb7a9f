package system

import (
	"context"
	"time"
)

// System is a per-tick processor run by the Manager.
type System interface {
	Name() string
	Priority() Priority
	ExecutionPhase() ExecutionPhase

	Initialize(ctx context.Context, world *World) error
	Update(ctx context.Context, world *World) error
	Shutdown(ctx context.Context) error

	IsEnabled() bool
	SetEnabled(bool)
}

// ProcessReporter is implemented by systems that count the hitboxes, pairs or
// tethers they touched during their last update.
type ProcessReporter interface {
	LastProcessed() int
}

// Priority orders systems inside a phase; higher runs first.
type Priority uint16

const (
	PriorityLowest  Priority = 100
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// ExecutionPhase defines when a system runs within a tick.
type ExecutionPhase uint8

const (
	PhasePreUpdate ExecutionPhase = iota
	PhaseUpdate
	PhasePostUpdate
	PhaseLateUpdate
)

// Phases lists every phase in execution order.
var Phases = []ExecutionPhase{PhasePreUpdate, PhaseUpdate, PhasePostUpdate, PhaseLateUpdate}

func (p ExecutionPhase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre_update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhaseLateUpdate:
		return "late_update"
	default:
		return "unknown"
	}
}

// StateIdentity is the lifecycle state of a registered system.
type StateIdentity uint8

const (
	StateUninitialized StateIdentity = iota
	StateRunning
	StateShutdown
	StateFailed
)

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	MinExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
	EntitiesProcessed    uint64
}

func (m *Metrics) record(elapsed time.Duration, processed int, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += elapsed
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if elapsed > m.MaxExecutionTime {
		m.MaxExecutionTime = elapsed
	}
	if m.ExecutionCount == 1 || elapsed < m.MinExecutionTime {
		m.MinExecutionTime = elapsed
	}
	m.LastExecutionTime = time.Now()
	m.EntitiesProcessed += uint64(processed)
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}
