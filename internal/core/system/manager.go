package system

import (
	"cmp"
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/core/events"
	"github.com/zeusync/physics/internal/core/observability/log"
	"github.com/zeusync/physics/pkg/sequence"
)

// ManagerMetrics provides system manager statistics
type ManagerMetrics struct {
	RegisteredSystems uint32
	EnabledSystems    uint32
	Ticks             uint64
	TotalUpdateTime   time.Duration
	AverageUpdateTime time.Duration
	SystemErrorCount  map[string]uint64
	LastUpdateTime    time.Time
}

type entry struct {
	system  System
	order   int
	state   StateIdentity
	metrics Metrics
}

// Manager runs registered systems phase by phase. Inside a phase systems run
// by descending priority, then in registration order.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]*entry
	nextID  int
	logger  log.Log

	ticks     uint64
	totalTime time.Duration
	lastTick  time.Time
	onError   []func(string, error)
}

func NewManager(logger log.Log) *Manager {
	if logger == nil {
		logger = log.Provide()
	}
	return &Manager{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

func (m *Manager) RegisterSystem(s System) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[s.Name()]; ok {
		return errors.Wrap(ErrSystemExists, s.Name())
	}
	m.entries[s.Name()] = &entry{system: s, order: m.nextID}
	m.nextID++

	m.logger.Debug("system registered",
		log.String("system", s.Name()),
		log.String("phase", s.ExecutionPhase().String()),
		log.Int("priority", int(s.Priority())),
	)
	return nil
}

func (m *Manager) UnregisterSystem(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[name]; !ok {
		return errors.Wrap(ErrSystemNotFound, name)
	}
	delete(m.entries, name)
	return nil
}

func (m *Manager) GetSystem(name string) (System, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[name]
	if !ok {
		return nil, false
	}
	return e.system, true
}

func (m *Manager) HasSystem(name string) bool {
	_, ok := m.GetSystem(name)
	return ok
}

// ListSystems returns every system in execution order.
func (m *Manager) ListSystems() []System {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ordered := m.ordered(func(*entry) bool { return true })
	out := make([]System, len(ordered))
	for i, e := range ordered {
		out[i] = e.system
	}
	return out
}

// GetExecutionOrder returns the names of enabled systems in execution order.
func (m *Manager) GetExecutionOrder() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ordered := m.ordered(func(e *entry) bool { return e.system.IsEnabled() })
	names := make([]string, len(ordered))
	for i, e := range ordered {
		names[i] = e.system.Name()
	}
	return names
}

func (m *Manager) ordered(keep func(*entry) bool) []*entry {
	all := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		all = append(all, e)
	}
	return sequence.From(all).
		Filter(keep).
		Sort(func(a, b *entry) int {
			if c := cmp.Compare(a.system.ExecutionPhase(), b.system.ExecutionPhase()); c != 0 {
				return c
			}
			if c := cmp.Compare(b.system.Priority(), a.system.Priority()); c != 0 {
				return c
			}
			return cmp.Compare(a.order, b.order)
		}).
		Collect()
}

func (m *Manager) InitializeAll(ctx context.Context, world *World) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.ordered(func(*entry) bool { return true }) {
		if err := e.system.Initialize(ctx, world); err != nil {
			e.state = StateFailed
			return errors.Wrapf(err, "initialize %s", e.system.Name())
		}
		e.state = StateRunning
	}
	return nil
}

// ShutdownAll stops every system in reverse execution order. The first
// failure is returned; the rest are logged.
func (m *Manager) ShutdownAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := m.ordered(func(*entry) bool { return true })
	var all error
	for i := len(ordered) - 1; i >= 0; i-- {
		e := ordered[i]
		if err := e.system.Shutdown(ctx); err != nil {
			if all == nil {
				all = errors.Wrapf(err, "shutdown %s", e.system.Name())
			}
			m.logger.Warn("system shutdown failed", log.String("system", e.system.Name()), log.Error(err))
		}
		e.state = StateShutdown
	}
	return all
}

func (m *Manager) EnableSystem(name string) error  { return m.setEnabled(name, true) }
func (m *Manager) DisableSystem(name string) error { return m.setEnabled(name, false) }

func (m *Manager) setEnabled(name string, enabled bool) error {
	s, ok := m.GetSystem(name)
	if !ok {
		return errors.Wrap(ErrSystemNotFound, name)
	}
	s.SetEnabled(enabled)
	return nil
}

// OnSystemError registers a callback run when a system fails.
func (m *Manager) OnSystemError(fn func(name string, err error)) {
	m.mu.Lock()
	m.onError = append(m.onError, fn)
	m.mu.Unlock()
}

// Update runs one tick: every phase in order, then advances the world tick.
// The first failing system halts the world; later calls return
// ErrWorldFailed.
func (m *Manager) Update(ctx context.Context, world *World) error {
	if err := world.Err(); err != nil {
		return errors.Wrap(ErrWorldFailed, err.Error())
	}

	start := time.Now()
	for _, phase := range Phases {
		if err := m.UpdatePhase(ctx, phase, world); err != nil {
			return err
		}
	}
	world.advance()

	m.mu.Lock()
	m.ticks++
	m.totalTime += time.Since(start)
	m.lastTick = time.Now()
	m.mu.Unlock()
	return nil
}

// UpdatePhase runs the enabled systems of one phase.
func (m *Manager) UpdatePhase(ctx context.Context, phase ExecutionPhase, world *World) error {
	m.mu.RLock()
	ordered := m.ordered(func(e *entry) bool {
		return e.system.ExecutionPhase() == phase && e.system.IsEnabled()
	})
	m.mu.RUnlock()

	for _, e := range ordered {
		if err := ctx.Err(); err != nil {
			return err
		}

		began := time.Now()
		err := m.run(ctx, e.system, world)
		processed := 0
		if r, ok := e.system.(ProcessReporter); ok {
			processed = r.LastProcessed()
		}

		m.mu.Lock()
		e.metrics.record(time.Since(began), processed, err)
		if err != nil {
			e.state = StateFailed
		}
		callbacks := append([]func(string, error){}, m.onError...)
		m.mu.Unlock()

		if err != nil {
			m.fail(world, e.system.Name(), err, callbacks)
			return err
		}
	}
	return nil
}

func (m *Manager) run(ctx context.Context, s System, world *World) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = errors.Errorf("%v", r)
			}
			err = errors.Wrapf(ErrSystemPanic, "%s: %v", s.Name(), cause)
		}
	}()

	if err = s.Update(ctx, world); err != nil {
		return errors.Wrap(err, s.Name())
	}
	return nil
}

func (m *Manager) fail(world *World, name string, err error, callbacks []func(string, error)) {
	m.logger.Error("system failed",
		log.String("system", name),
		log.Uint64("tick", world.Tick()),
		log.Error(err),
	)
	world.Fail(err)
	for _, fn := range callbacks {
		fn(name, err)
	}
	if pubErr := world.Bus().Publish(events.NewSystemFailed(name, events.SystemFailed{
		Tick:   world.Tick(),
		System: name,
		Err:    err,
	})); pubErr != nil {
		m.logger.Warn("system failure not delivered", log.String("system", name), log.Error(pubErr))
	}
}

func (m *Manager) GetMetrics() ManagerMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := ManagerMetrics{
		RegisteredSystems: uint32(len(m.entries)),
		Ticks:             m.ticks,
		TotalUpdateTime:   m.totalTime,
		LastUpdateTime:    m.lastTick,
		SystemErrorCount:  make(map[string]uint64, len(m.entries)),
	}
	if m.ticks > 0 {
		out.AverageUpdateTime = m.totalTime / time.Duration(m.ticks)
	}
	for name, e := range m.entries {
		if e.system.IsEnabled() {
			out.EnabledSystems++
		}
		out.SystemErrorCount[name] = e.metrics.ErrorCount
	}
	return out
}

func (m *Manager) GetSystemMetrics(name string) (Metrics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[name]
	if !ok {
		return Metrics{}, false
	}
	return e.metrics, true
}

// State reports the lifecycle state of a registered system.
func (m *Manager) State(name string) (StateIdentity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[name]
	if !ok {
		return StateUninitialized, false
	}
	return e.state, true
}
