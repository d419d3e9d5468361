package terminal

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dshills/tickcon/internal/logging"
	"github.com/dshills/tickcon/internal/renderer/backend"
)

// Opener creates the backend for a new terminal session. A tcell screen
// cannot be re-initialised after it is finalised, so every activation
// opens a fresh backend.
type Opener func() (backend.Backend, error)

// OpenTerminal opens a tcell backend on the controlling terminal.
func OpenTerminal() (backend.Backend, error) {
	return backend.NewTerminal()
}

// Guard brackets raw terminal mode. The zero value is not usable; create
// guards with NewGuard.
type Guard struct {
	mu       sync.Mutex
	open     Opener
	probe    Prober
	logger   *logging.Logger
	signals  []os.Signal
	onSignal func(os.Signal)

	backend backend.Backend
	active  bool
	closed  bool

	armOnce sync.Once
	sigCh   chan os.Signal
	stop    chan struct{}
}

// Option configures a Guard.
type Option func(*Guard)

// WithProbe sets the check run before each activation.
func WithProbe(p Prober) Option {
	return func(g *Guard) { g.probe = p }
}

// WithLogger sets the guard's logger.
func WithLogger(l *logging.Logger) Option {
	return func(g *Guard) { g.logger = l }
}

// WithSignals replaces the signals that restore the terminal.
// Passing no signals disables signal handling.
func WithSignals(sigs ...os.Signal) Option {
	return func(g *Guard) { g.signals = sigs }
}

// WithSignalHandler sets a function called after the terminal has been
// restored in response to a signal, typically to request host shutdown.
func WithSignalHandler(fn func(os.Signal)) Option {
	return func(g *Guard) { g.onSignal = fn }
}

// NewGuard creates a guard that opens backends with open.
// By default the guard probes stdin and restores on SIGINT, SIGTERM and SIGHUP.
func NewGuard(open Opener, opts ...Option) *Guard {
	g := &Guard{
		open:    open,
		probe:   ProbeFile(os.Stdin),
		logger:  logging.Nop(),
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP},
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Activate enters raw mode and returns the session's backend.
// Calling Activate while active returns the same backend.
// Failures wrap ErrTerminalUnavailable and leave the guard inactive.
func (g *Guard) Activate() (backend.Backend, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil, ErrClosed
	}
	if g.active {
		return g.backend, nil
	}

	if g.probe != nil {
		if err := g.probe(); err != nil {
			return nil, err
		}
	}
	b, err := g.open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTerminalUnavailable, err)
	}
	if err := b.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTerminalUnavailable, err)
	}

	g.backend = b
	g.active = true
	g.armOnce.Do(g.arm)
	g.logger.Debug("raw mode on")
	return b, nil
}

// Deactivate restores the terminal if raw mode is on. It never panics;
// a failed restore is logged and returned as *RestoreError.
func (g *Guard) Deactivate() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.deactivateLocked()
}

func (g *Guard) deactivateLocked() (err error) {
	if !g.active {
		return nil
	}
	b := g.backend
	g.active = false
	g.backend = nil

	defer func() {
		if r := recover(); r != nil {
			err = &RestoreError{Cause: r}
			g.logger.Error("terminal restore failed: %v", r)
		}
	}()
	b.Shutdown()
	g.logger.Debug("raw mode off")
	return nil
}

// Active reports whether raw mode is on.
func (g *Guard) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// Backend returns the active session's backend, or nil.
func (g *Guard) Backend() backend.Backend {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.backend
}

// Recover restores the terminal while a panic unwinds, then re-panics.
// It must be deferred directly:
//
//	defer guard.Recover()
func (g *Guard) Recover() {
	if r := recover(); r != nil {
		_ = g.Deactivate()
		panic(r)
	}
}

// Close restores the terminal and stops signal handling. Later
// activations fail with ErrClosed. Close is idempotent.
func (g *Guard) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true
	err := g.deactivateLocked()
	if g.sigCh != nil {
		signal.Stop(g.sigCh)
	}
	close(g.stop)
	return err
}

// arm installs the signal handler. Called once, on first activation.
func (g *Guard) arm() {
	if len(g.signals) == 0 {
		return
	}
	g.sigCh = make(chan os.Signal, 1)
	signal.Notify(g.sigCh, g.signals...)

	go func() {
		for {
			select {
			case sig := <-g.sigCh:
				g.logger.Warn("received %v, restoring terminal", sig)
				_ = g.Deactivate()
				if g.onSignal != nil {
					g.onSignal(sig)
				}
			case <-g.stop:
				return
			}
		}
	}()
}
