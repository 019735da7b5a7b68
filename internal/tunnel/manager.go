// Package tunnel drives the local tunnel that exposes machine-local endpoints
// to the remote test infrastructure.
//
// A Manager wraps a Binding and moves through the states
//
//	Stopped -> Starting -> Running -> Stopping -> Stopped
//
// with Failed as the terminal state of a failed start and Killed as the
// terminal state of a forced stop. A Manager is started at most once; after
// a Stop it stays in its final state.
package tunnel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	"bsprep/pkg/logging"
)

const subsystem = "Tunnel"

// DefaultTimeout bounds Start and Stop when the context has no deadline.
const DefaultTimeout = 60 * time.Second

// State is the lifecycle state of a tunnel.
type State string

const (
	StateStopped  State = "Stopped"
	StateStarting State = "Starting"
	StateRunning  State = "Running"
	StateStopping State = "Stopping"
	StateFailed   State = "Failed"
	StateKilled   State = "Killed"
)

// Binding is the tunnel process handle. Start and Stop report completion
// through done, possibly from another goroutine.
type Binding interface {
	Start(opts map[string]string, done func(error))
	Stop(done func(error))
	IsRunning() bool
	PID() int
}

// StateChangeCallback is called on every state transition.
type StateChangeCallback func(oldState, newState State, err error)

// Options configures a Manager.
type Options struct {
	// ForcedStop makes Stop signal the recorded pid instead of asking the
	// binding to stop.
	ForcedStop   bool
	StartTimeout time.Duration
	StopTimeout  time.Duration
}

// killProcess is swapped out in tests.
var killProcess = func(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

// ErrAlreadyStarted is returned by Start on a Manager that was started
// before, including one that has since stopped.
var ErrAlreadyStarted = errors.New("tunnel already started")

// Manager owns one tunnel for the lifetime of a session.
type Manager struct {
	mu       sync.RWMutex
	binding  Binding
	opts     Options
	state    State
	started  bool
	lastErr  error
	callback StateChangeCallback
}

// NewManager creates a Manager in the Stopped state.
func NewManager(binding Binding, opts Options) *Manager {
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = DefaultTimeout
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultTimeout
	}
	return &Manager{binding: binding, opts: opts, state: StateStopped}
}

// SetStateChangeCallback registers cb for state transitions.
func (m *Manager) SetStateChangeCallback(cb StateChangeCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callback = cb
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// LastError returns the error of the last failed transition.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) setState(state State, err error) {
	m.mu.Lock()
	old := m.state
	m.state = state
	if err != nil {
		m.lastErr = err
	}
	cb := m.callback
	m.mu.Unlock()

	if old != state {
		logging.Debug(subsystem, "State %s -> %s", old, state)
	}
	if cb != nil && old != state {
		cb(old, state, err)
	}
}

// Start starts the tunnel and blocks until the binding reports readiness, the
// binding fails, or ctx (bounded by the start timeout) ends.
func (m *Manager) Start(ctx context.Context, opts map[string]string) error {
	m.mu.Lock()
	if m.started {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w (state %s)", ErrAlreadyStarted, state)
	}
	m.started = true
	m.mu.Unlock()

	m.setState(StateStarting, nil)

	ctx, cancel := context.WithTimeout(ctx, m.opts.StartTimeout)
	defer cancel()

	done := make(chan error, 1)
	m.binding.Start(opts, func(err error) {
		select {
		case done <- err:
		default:
		}
	})

	select {
	case err := <-done:
		if err != nil {
			m.setState(StateFailed, err)
			return fmt.Errorf("failed to start tunnel: %w", err)
		}
	case <-ctx.Done():
		err := fmt.Errorf("tunnel did not start within %s: %w", m.opts.StartTimeout, ctx.Err())
		m.setState(StateFailed, err)
		return err
	}

	m.setState(StateRunning, nil)
	logging.Info(subsystem, "Tunnel running (PID %d)", m.binding.PID())
	return nil
}

// Stop stops the tunnel. It returns immediately when the binding is not
// running. With forced stop configured and a pid recorded, the process is
// signalled directly and its pid is returned; otherwise the binding is asked
// to stop gracefully and 0 is returned.
func (m *Manager) Stop(ctx context.Context) (int, error) {
	if !m.binding.IsRunning() {
		logging.Debug(subsystem, "Tunnel not running, nothing to stop")
		return 0, nil
	}

	if pid := m.binding.PID(); m.opts.ForcedStop && pid > 0 {
		return m.kill(pid)
	}
	return 0, m.stopGracefully(ctx)
}

func (m *Manager) kill(pid int) (int, error) {
	logging.Info(subsystem, "Killing tunnel process %d", pid)
	if err := killProcess(pid); err != nil {
		m.setState(StateFailed, err)
		return pid, fmt.Errorf("failed to kill tunnel process %d: %w", pid, err)
	}
	m.setState(StateKilled, nil)
	return pid, nil
}

func (m *Manager) stopGracefully(ctx context.Context) error {
	m.setState(StateStopping, nil)

	ctx, cancel := context.WithTimeout(ctx, m.opts.StopTimeout)
	defer cancel()

	done := make(chan error, 1)
	m.binding.Stop(func(err error) {
		select {
		case done <- err:
		default:
		}
	})

	select {
	case err := <-done:
		if err != nil {
			m.setState(StateFailed, err)
			return fmt.Errorf("failed to stop tunnel: %w", err)
		}
	case <-ctx.Done():
		err := fmt.Errorf("tunnel failed to stop within %s: %w", m.opts.StopTimeout, ctx.Err())
		m.setState(StateFailed, err)
		return err
	}

	m.setState(StateStopped, nil)
	logging.Info(subsystem, "Tunnel stopped")
	return nil
}
