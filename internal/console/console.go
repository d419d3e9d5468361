package console

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/tickcon/internal/command"
	"github.com/dshills/tickcon/internal/dispatcher"
	"github.com/dshills/tickcon/internal/dispatcher/handler"
	"github.com/dshills/tickcon/internal/input/key"
	"github.com/dshills/tickcon/internal/input/keymap"
	"github.com/dshills/tickcon/internal/logging"
	"github.com/dshills/tickcon/internal/renderer"
	"github.com/dshills/tickcon/internal/renderer/backend"
	"github.com/dshills/tickcon/internal/terminal"
)

// Session owns the terminal's raw mode. terminal.Guard implements it.
type Session interface {
	Activate() (backend.Backend, error)
	Deactivate() error
}

// attacher is implemented by sinks that draw to the session's backend.
type attacher interface {
	Attach(b backend.Backend)
	Detach()
}

type renderable interface {
	Render()
}

type invalidator interface {
	Invalidate()
}

// Console ties the input pump, command registry and dispatcher together.
// All methods except the request methods and RequestQuit must be called
// from the host's loop goroutine.
type Console struct {
	id         string
	registry   *command.Registry
	dispatcher *dispatcher.Dispatcher
	pump       *Pump
	sink       renderer.Sink
	session    Session
	source     Source
	owned      *terminal.Source
	pass       func(key.Event)
	onQuit     func()
	logger     *logging.Logger

	state   State
	started bool
	capture bool

	mu       sync.Mutex
	requests []request
	keymap   *keymap.Keymap

	quit       atomic.Bool
	interrupts atomic.Int64
}

// Option configures a Console.
type Option func(*Console)

// WithKeymap sets the keymap. The default is keymap.Default().
func WithKeymap(km *keymap.Keymap) Option {
	return func(c *Console) { c.pump.SetKeymap(km) }
}

// WithSink sets where the console reports. The default discards.
func WithSink(s renderer.Sink) Option {
	return func(c *Console) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithSession sets the raw-mode session opened by Start. Keys are read
// from the session's backend unless WithSource is also given.
func WithSession(s Session) Option {
	return func(c *Console) { c.session = s }
}

// WithSource sets where keys come from.
func WithSource(s Source) Option {
	return func(c *Console) { c.source = s }
}

// WithToggleKey sets the key that switches between Capturing and Inactive.
func WithToggleKey(kb keymap.Keybind) Option {
	return func(c *Console) { c.pump.SetToggle(kb) }
}

// WithPassthrough sets the function that receives keys while Inactive.
func WithPassthrough(fn func(key.Event)) Option {
	return func(c *Console) { c.pass = fn }
}

// WithQuitHandler sets a function called once when a quit is requested.
func WithQuitHandler(fn func()) Option {
	return func(c *Console) { c.onQuit = fn }
}

// WithLogger sets the console's logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStartInactive makes Start leave the console Inactive until the
// toggle key or Activate is used.
func WithStartInactive() Option {
	return func(c *Console) { c.capture = false }
}

// New creates a console resolving lines with reg and running them with d.
func New(reg *command.Registry, d *dispatcher.Dispatcher, opts ...Option) *Console {
	c := &Console{
		id:         uuid.NewString(),
		registry:   reg,
		dispatcher: d,
		sink:       renderer.Discard,
		logger:     logging.Nop(),
		capture:    true,
	}
	c.pump = NewPump(nil, nil)
	for _, opt := range opts {
		opt(c)
	}
	c.pump.sink = c.sink
	c.logger = c.logger.WithComponent("console").WithField("session", c.id[:8])
	return c
}

// ID returns the console's session id.
func (c *Console) ID() string {
	return c.id
}

// State returns the current state.
func (c *Console) State() State {
	return c.state
}

// Started reports whether Start succeeded and Stop has not been called.
func (c *Console) Started() bool {
	return c.started
}

// Registry returns the command registry.
func (c *Console) Registry() *command.Registry {
	return c.registry
}

// Dispatcher returns the dispatcher.
func (c *Console) Dispatcher() *dispatcher.Dispatcher {
	return c.dispatcher
}

// Keymap returns the keymap in use.
func (c *Console) Keymap() *keymap.Keymap {
	return c.pump.Keymap()
}

// Start seals the registry and takes over the terminal.
//
// If the session cannot enter raw mode the error, wrapping
// terminal.ErrTerminalUnavailable, is returned and the console stays
// Inactive; Tick is then a no-op and the host can carry on without it.
// Start on a started console does nothing.
func (c *Console) Start() error {
	if c.started {
		return nil
	}
	c.registry.Seal()

	if c.session != nil {
		b, err := c.session.Activate()
		if err != nil {
			c.logger.Warn("console unavailable: %v", err)
			return err
		}
		if c.source == nil {
			c.owned = terminal.NewSource(b, terminal.WithInterrupt(c.interrupt))
			c.source = c.owned
		}
		if a, ok := c.sink.(attacher); ok {
			a.Attach(b)
		}
	}
	if c.source == nil {
		return errors.New("console: no key source")
	}

	c.started = true
	if c.capture {
		c.state = Capturing
	}
	c.pump.Redraw()
	c.render()
	c.logger.Info("console started (%s)", c.state)
	return nil
}

// Stop restores the terminal. The console is Inactive afterwards and
// can be started again. Stop is idempotent.
func (c *Console) Stop() error {
	if !c.started {
		return nil
	}
	c.started = false
	c.state = Inactive

	if a, ok := c.sink.(attacher); ok {
		a.Detach()
	}
	var err error
	if c.session != nil {
		err = c.session.Deactivate()
	}
	if c.owned != nil {
		c.owned.Stop()
		c.owned = nil
		c.source = nil
	}
	c.logger.Info("console stopped")
	return err
}

// Activate asks for the console to start capturing at the next tick.
func (c *Console) Activate() { c.enqueue(requestActivate) }

// Deactivate asks for the console to stop capturing at the next tick.
func (c *Console) Deactivate() { c.enqueue(requestDeactivate) }

// Toggle asks for the capture state to flip at the next tick.
func (c *Console) Toggle() { c.enqueue(requestToggle) }

// SetKeymap replaces the keymap at the next tick. It is safe to call
// from any goroutine.
func (c *Console) SetKeymap(km *keymap.Keymap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keymap = km
}

func (c *Console) enqueue(r request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, r)
}

// RequestQuit asks the host to shut down. Safe from any goroutine.
func (c *Console) RequestQuit() {
	if c.quit.CompareAndSwap(false, true) {
		c.logger.Info("quit requested")
		if c.onQuit != nil {
			c.onQuit()
		}
	}
}

// Print writes host text to the console output. It is safe from any
// goroutine when the sink is; the bundled sinks are.
func (c *Console) Print(text string) {
	c.sink.Print(text)
}

// QuitRequested reports whether a quit was requested.
func (c *Console) QuitRequested() bool {
	return c.quit.Load()
}

// Interrupts returns how many times Ctrl+C was pressed.
func (c *Console) Interrupts() int64 {
	return c.interrupts.Load()
}

// interrupt runs on the source's reader goroutine when Ctrl+C is pressed.
func (c *Console) interrupt() {
	c.interrupts.Add(1)
	c.logger.Info("interrupt")
	c.RequestQuit()
}

// Tick runs one frame of the console: pending state changes are applied,
// then every key that arrived since the last tick is handled. Lines
// submitted during the tick are dispatched before Tick returns, with
// state handed to their handlers.
func (c *Console) Tick(state any) {
	c.applyRequests()
	if !c.started {
		return
	}

	if r, ok := c.source.(interface{ Resized() bool }); ok && r.Resized() {
		if inv, ok := c.sink.(invalidator); ok {
			inv.Invalidate()
		}
	}

	submit := func(line string) { c.submit(state, line) }
	if c.pump.Drain(c.source, c.state == Capturing, submit, c.pass) {
		c.enqueue(requestToggle)
	}
	c.render()
}

// applyRequests performs queued state changes. Called only between drains.
// State requests made before Start stay queued until the first tick after it.
func (c *Console) applyRequests() {
	c.mu.Lock()
	var reqs []request
	if c.started {
		reqs = c.requests
		c.requests = nil
	}
	km := c.keymap
	c.keymap = nil
	c.mu.Unlock()

	if km != nil {
		c.pump.SetKeymap(km)
		c.logger.Info("keymap replaced (%d bindings)", km.Len())
	}
	for _, r := range reqs {
		switch r {
		case requestActivate:
			c.setCapturing(true)
		case requestDeactivate:
			c.setCapturing(false)
		case requestToggle:
			c.setCapturing(c.state != Capturing)
		}
	}
}

func (c *Console) setCapturing(on bool) {
	next := Inactive
	if on {
		next = Capturing
	}
	if c.state == next {
		return
	}
	c.state = next
	c.logger.Debug("state %s", next)
	c.pump.Redraw()
}

// submit resolves and dispatches one line. The line buffer is already
// empty when it runs.
func (c *Console) submit(state any, line string) {
	val, err := c.registry.Resolve(line)
	if errors.Is(err, command.ErrEmptyLine) {
		return
	}
	if e, ok := c.sink.(renderer.Echoer); ok {
		e.Echo(line)
	}

	id := uuid.NewString()
	var out dispatcher.Outcome
	if err != nil {
		out = c.dispatcher.Report(line, err)
	} else {
		prev := c.state
		c.state = Dispatching
		out = c.dispatcher.Dispatch(&handler.Context{
			SubmissionID: id,
			State:        state,
			Console:      handlerConsole{c},
		}, val)
		c.state = prev
	}

	if out.IsFailure() {
		c.logger.WithField("submission", id).Info("%q: %s", line, out)
	}
	c.sink.Outcome(out)
}

func (c *Console) render() {
	if r, ok := c.sink.(renderable); ok {
		r.Render()
	}
}

// handlerConsole is the view of the console given to handlers.
type handlerConsole struct {
	c *Console
}

func (h handlerConsole) Print(text string) { h.c.sink.Print(text) }

func (h handlerConsole) ClearOutput() {
	if cl, ok := h.c.sink.(renderer.Clearer); ok {
		cl.ClearOutput()
	}
}

func (h handlerConsole) Close() { h.c.Deactivate() }

func (h handlerConsole) RequestQuit() { h.c.RequestQuit() }
