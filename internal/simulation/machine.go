// Package simulation drives the timer-based stand-ins for DNA analysis,
// audio playback and form acknowledgements. Each one is an explicit
// idle -> processing -> complete state machine on an injectable Clock.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"afriqar/internal/logging"
	"afriqar/internal/metrics"
)

// State of a Machine.
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateComplete   State = "complete"
)

// Policy decides what a trigger does while a run is still processing.
type Policy string

const (
	// PolicySupersede cancels the pending run and restarts; the earlier run never completes.
	PolicySupersede Policy = "supersede"
	// PolicyReject refuses the trigger with ErrBusy.
	PolicyReject Policy = "reject"
)

// ParsePolicy maps a configured name to a Policy; empty means supersede.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(name) {
	case "", PolicySupersede:
		return PolicySupersede, nil
	case PolicyReject:
		return PolicyReject, nil
	default:
		return "", fmt.Errorf("unknown simulation policy %q", name)
	}
}

var (
	ErrBusy   = errors.New("simulation: already processing")
	ErrClosed = errors.New("simulation: closed")
	ErrIdle   = errors.New("simulation: nothing is processing")
)

// Options configures a Machine.
type Options struct {
	Name      string
	Clock     Clock
	Policy    Policy
	Delay     time.Duration
	AutoReset time.Duration // return to idle this long after completion; zero keeps the result
	Logger    *zap.Logger
	Metrics   metrics.Recorder
}

// Snapshot is a point-in-time copy of a Machine.
type Snapshot[T any] struct {
	State       State      `json:"state"`
	Result      *T         `json:"result,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Runs        int        `json:"runs"`
}

// Machine runs one simulated job at a time.
type Machine[T any] struct {
	opts   Options
	onDone func(T)

	mu        sync.Mutex
	state     State
	result    T
	hasResult bool
	started   time.Time
	completed time.Time
	runs      int
	gen       uint64
	timer     Timer
	closed    bool
	changed   chan struct{}
}

// NewMachine builds an idle machine. onDone, when set, runs with the
// machine locked right after a run completes and must not call back into it.
func NewMachine[T any](opts Options, onDone func(T)) *Machine[T] {
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Policy == "" {
		opts.Policy = PolicySupersede
	}
	opts.Logger = logging.OrNop(opts.Logger)
	opts.Metrics = metrics.OrNop(opts.Metrics)
	return &Machine[T]{opts: opts, onDone: onDone, state: StateIdle, changed: make(chan struct{})}
}

// Start begins a run whose result is produced by run once the delay elapses.
func (m *Machine[T]) Start(run func() T) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.state == StateProcessing && m.opts.Policy == PolicyReject {
		m.mu.Unlock()
		return ErrBusy
	}
	if m.state == StateProcessing {
		m.opts.Logger.Debug("simulation superseded", zap.String("simulation", m.opts.Name))
	}
	m.stopTimerLocked()
	m.gen++
	gen := m.gen
	var zero T
	m.state = StateProcessing
	m.result, m.hasResult = zero, false
	m.started = m.opts.Clock.Now()
	m.completed = time.Time{}
	m.broadcastLocked()
	if m.opts.Delay <= 0 {
		m.mu.Unlock()
		m.complete(gen, run)
		return nil
	}
	m.timer = m.opts.Clock.AfterFunc(m.opts.Delay, func() { m.complete(gen, run) })
	m.mu.Unlock()
	return nil
}

func (m *Machine[T]) complete(gen uint64, run func() T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.gen || m.state != StateProcessing {
		return
	}
	m.timer = nil
	m.result, m.hasResult = run(), true
	m.state = StateComplete
	m.completed = m.opts.Clock.Now()
	m.runs++
	if m.opts.AutoReset > 0 {
		m.timer = m.opts.Clock.AfterFunc(m.opts.AutoReset, func() { m.expire(gen) })
	}
	if m.onDone != nil {
		m.onDone(m.result)
	}
	m.broadcastLocked()
	elapsed := m.completed.Sub(m.started)
	m.opts.Metrics.Observe(context.Background(), metrics.OpSimulationComplete, true, elapsed)
	m.opts.Logger.Debug("simulation complete",
		zap.String("simulation", m.opts.Name),
		zap.Duration("elapsed", elapsed),
		zap.Int("runs", m.runs),
	)
}

func (m *Machine[T]) expire(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.gen || m.state != StateComplete {
		return
	}
	m.timer = nil
	m.toIdleLocked()
}

// Reset abandons any pending run and returns to idle.
func (m *Machine[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.stopTimerLocked()
	m.gen++
	m.toIdleLocked()
}

// Close stops pending timers; late completions are discarded and later
// calls fail with ErrClosed.
func (m *Machine[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.stopTimerLocked()
	m.gen++
	m.closed = true
	m.broadcastLocked()
}

// Snapshot copies the current state.
func (m *Machine[T]) Snapshot() Snapshot[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot[T]{State: m.state, Runs: m.runs}
	if m.hasResult {
		r := m.result
		snap.Result = &r
	}
	if !m.started.IsZero() {
		s := m.started
		snap.StartedAt = &s
	}
	if !m.completed.IsZero() {
		c := m.completed
		snap.CompletedAt = &c
	}
	return snap
}

// Wait blocks until the current run completes.
func (m *Machine[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	for {
		m.mu.Lock()
		switch {
		case m.closed:
			m.mu.Unlock()
			return zero, ErrClosed
		case m.state == StateComplete:
			r := m.result
			m.mu.Unlock()
			return r, nil
		case m.state == StateIdle:
			m.mu.Unlock()
			return zero, ErrIdle
		}
		ch := m.changed
		m.mu.Unlock()
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-ch:
		}
	}
}

func (m *Machine[T]) toIdleLocked() {
	var zero T
	m.state = StateIdle
	m.result, m.hasResult = zero, false
	m.started, m.completed = time.Time{}, time.Time{}
	m.broadcastLocked()
}

func (m *Machine[T]) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Machine[T]) broadcastLocked() {
	close(m.changed)
	m.changed = make(chan struct{})
}
