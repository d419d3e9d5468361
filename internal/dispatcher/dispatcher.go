package dispatcher

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/dshills/tickcon/internal/command"
	"github.com/dshills/tickcon/internal/dispatcher/handler"
	"github.com/dshills/tickcon/internal/logging"
)

// Dispatcher runs command handlers one at a time.
type Dispatcher struct {
	// mu is held for the whole of a dispatch; it is the single-writer
	// section that gives handlers exclusive access to host state.
	mu sync.Mutex

	// hmu guards handlers and hooks.
	hmu       sync.RWMutex
	handlers  map[string]handler.Handler
	postHooks []PostDispatchHook

	config  Config
	logger  *logging.Logger
	metrics *Metrics
}

// New creates a new dispatcher with the given configuration.
func New(config Config) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[string]handler.Handler),
		config:   config,
		logger:   config.Logger,
	}
	if d.logger == nil {
		d.logger = logging.Nop()
	}
	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}
	return d
}

// NewWithDefaults creates a new dispatcher with default configuration.
func NewWithDefaults() *Dispatcher {
	return New(DefaultConfig())
}

// Metrics returns the metrics collector, or nil when disabled.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Register sets the handler for a command. A command has at most one
// handler; registering a second fails with ErrDuplicateHandler.
func (d *Dispatcher) Register(name string, h handler.Handler) error {
	if h == nil {
		return fmt.Errorf("dispatcher: nil handler for %q", name)
	}
	d.hmu.Lock()
	defer d.hmu.Unlock()

	if _, ok := d.handlers[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, name)
	}
	d.handlers[name] = h
	return nil
}

// Handle registers a typed handler. The handler receives the command's
// constructed arguments as T.
func Handle[T any](d *Dispatcher, name string, fn func(ctx *handler.Context, cmd T) handler.Result) error {
	if fn == nil {
		return fmt.Errorf("dispatcher: nil handler for %q", name)
	}
	return d.Register(name, handler.HandlerFunc(func(ctx *handler.Context) handler.Result {
		cmd, ok := ctx.Command.Args.(T)
		if !ok {
			var want T
			return handler.Error(fmt.Errorf("%w: %s got %T, want %T", ErrArgsType, name, ctx.Command.Args, want))
		}
		return fn(ctx, cmd)
	}))
}

// MustHandle is Handle that panics on error.
func MustHandle[T any](d *Dispatcher, name string, fn func(ctx *handler.Context, cmd T) handler.Result) {
	if err := Handle(d, name, fn); err != nil {
		panic(err)
	}
}

// HasHandler reports whether a handler is registered for name.
func (d *Dispatcher) HasHandler(name string) bool {
	d.hmu.RLock()
	defer d.hmu.RUnlock()
	_, ok := d.handlers[name]
	return ok
}

// Dispatch runs the handler for val and reports the outcome. ctx may be
// nil; its Command and Logger fields are filled in by Dispatch.
func (d *Dispatcher) Dispatch(ctx *handler.Context, val command.Value) Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ctx == nil {
		ctx = &handler.Context{}
	}
	ctx.Command = val
	logger := d.logger.WithField("cmd", val.Name)
	if ctx.SubmissionID != "" {
		logger = logger.WithField("submission", ctx.SubmissionID)
	}
	ctx.Logger = logger

	d.hmu.RLock()
	h := d.handlers[val.Name]
	d.hmu.RUnlock()

	var out Outcome
	if h == nil {
		logger.Error("command is registered but has no handler")
		out = Outcome{Kind: OutcomeUnhandled, Command: val.Name, Err: ErrNoHandler}
		if d.metrics != nil {
			d.metrics.RecordOutcome(out.Kind)
		}
	} else {
		start := time.Now()
		var result handler.Result
		if d.config.RecoverFromPanic {
			result = d.executeWithRecovery(h, ctx)
		} else {
			result = h.Handle(ctx)
		}
		out = d.outcomeFor(val.Name, result)
		if d.metrics != nil {
			d.metrics.RecordDispatch(val.Name, time.Since(start), out.Kind)
		}
		logger.Debug("dispatched in %s: %s", time.Since(start), out.Kind)
	}

	d.runPostHooks(val, &out)
	return out
}

// Report converts an error from command resolution into an outcome
// without running any handler. line is the submitted text.
func (d *Dispatcher) Report(line string, err error) Outcome {
	var (
		unknown *command.UnknownCommandError
		parse   *command.ParseError
		out     Outcome
	)
	switch {
	case errors.As(err, &unknown):
		out = Outcome{Kind: OutcomeUnknownCommand, Command: unknown.Name, Err: err}
	case errors.As(err, &parse):
		out = Outcome{Kind: OutcomeParseFailed, Command: parse.Command, Text: parse.Message, Help: parse.Help, Err: err}
	default:
		out = Outcome{Kind: OutcomeParseFailed, Text: fmt.Sprint(err), Err: err}
	}
	if d.metrics != nil {
		d.metrics.RecordOutcome(out.Kind)
	}
	d.runPostHooks(command.Value{Name: out.Command, Line: line}, &out)
	return out
}

// outcomeFor converts a handler result.
func (d *Dispatcher) outcomeFor(name string, r handler.Result) Outcome {
	if r.IsError() {
		msg := r.Message
		if msg == "" && r.Error != nil {
			msg = r.Error.Error()
		}
		return Outcome{Kind: OutcomeHandlerFailed, Command: name, Text: name + ": " + msg, Err: r.Error}
	}
	return Handled(name, r.Message)
}

// executeWithRecovery executes a handler with panic recovery.
func (d *Dispatcher) executeWithRecovery(h handler.Handler, ctx *handler.Context) (result handler.Result) {
	defer func() {
		if r := recover(); r != nil {
			size := d.config.PanicStackSize
			if size <= 0 {
				size = 4096
			}
			stack := make([]byte, size)
			n := runtime.Stack(stack, false)
			ctx.Logger.Error("handler panic: %v\n%s", r, stack[:n])

			result = handler.Error(fmt.Errorf("%w: %v", ErrPanic, r))
			if d.metrics != nil {
				d.metrics.RecordPanic(ctx.Command.Name)
			}
		}
	}()

	return h.Handle(ctx)
}
