// Package app is the host that embeds the console: a world of entities
// advanced by a fixed-rate loop, with the console ticked at the start of
// every frame.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/tickcon/internal/builtins"
	"github.com/dshills/tickcon/internal/command"
	"github.com/dshills/tickcon/internal/config"
	"github.com/dshills/tickcon/internal/console"
	"github.com/dshills/tickcon/internal/dispatcher"
	"github.com/dshills/tickcon/internal/input/key"
	"github.com/dshills/tickcon/internal/input/keymap"
	"github.com/dshills/tickcon/internal/logging"
	"github.com/dshills/tickcon/internal/renderer"
	"github.com/dshills/tickcon/internal/script"
	"github.com/dshills/tickcon/internal/terminal"
)

// Application owns the world, the console and everything they need.
type Application struct {
	cfg    *config.Config
	opts   Options
	logger *logging.Logger
	closer io.Closer

	world   *World
	metrics *Metrics

	registry   *command.Registry
	dispatcher *dispatcher.Dispatcher
	console    *console.Console
	prompt     *renderer.Prompt
	guard      *terminal.Guard
	scripts    *script.Engine
	watcher    *config.Watcher

	// interval is the tick interval in nanoseconds.
	interval    atomic.Int64
	rateChanged chan struct{}

	running   atomic.Bool
	closeOnce sync.Once
}

// Options configures the application beyond its configuration file.
type Options struct {
	// Source replaces the terminal as the key source. With Headless set it
	// is required.
	Source console.Source

	// Sink replaces the terminal prompt.
	Sink renderer.Sink

	// Headless runs without taking over the terminal.
	Headless bool

	// Opener opens the terminal backend. The default is terminal.OpenTerminal.
	Opener terminal.Opener

	// GuardOptions are passed to the terminal guard.
	GuardOptions []terminal.Option

	// Logger replaces the log file named in the configuration.
	Logger *logging.Logger
}

// New creates an application from cfg. Nothing touches the terminal
// until Run.
func New(cfg *config.Config, opts Options) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	app := &Application{
		cfg:         cfg,
		opts:        opts,
		world:       NewWorld(),
		metrics:     NewMetrics(),
		rateChanged: make(chan struct{}, 1),
	}
	app.interval.Store(int64(cfg.TickInterval()))

	if err := app.bootstrap(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Logging
	if app.opts.Logger != nil {
		app.logger = app.opts.Logger
	} else {
		app.logger, app.closer = logging.Open(app.cfg.LogFile(), "tickcon")
	}

	// 2. Keymap
	km, err := app.loadKeymap()
	if err != nil {
		return &InitError{Component: "keymap", Err: err}
	}

	// 3. Dispatcher
	app.registry = command.NewRegistry()
	app.dispatcher = dispatcher.New(dispatcher.DefaultConfig().
		WithLogger(app.logger.WithComponent("dispatcher")))

	// 4. Console
	copts, err := app.consoleOptions(km)
	if err != nil {
		return err
	}
	app.console = console.New(app.registry, app.dispatcher, copts...)

	// 5. Commands
	if err := builtins.Install(app.console); err != nil {
		return &InitError{Component: "builtins", Err: err}
	}
	if err := app.registerCommands(app.console); err != nil {
		return &InitError{Component: "commands", Err: err}
	}

	// 6. Scripts. A broken script is skipped, not fatal.
	if app.cfg.Scripts.Enabled && app.cfg.Scripts.Dir != "" {
		if err := app.loadScripts(); err != nil {
			return &InitError{Component: "scripts", Err: err}
		}
	}

	// 7. Keymap watcher
	if app.cfg.Keymap.Watch && app.cfg.Keymap.File != "" {
		w, err := config.Watch(app.cfg.Keymap.File, app.reloadKeymap,
			config.WithWatchLogger(app.logger.WithComponent("config")))
		if err != nil {
			return &InitError{Component: "keymap watcher", Err: err}
		}
		app.watcher = w
	}

	return nil
}

func (app *Application) consoleOptions(km *keymap.Keymap) ([]console.Option, error) {
	opts := []console.Option{
		console.WithKeymap(km),
		console.WithLogger(app.logger),
		console.WithPassthrough(app.passthrough),
	}

	// Headless input is whole lines, so it always captures and a toggle
	// character inside a line is text.
	if tk := app.cfg.Console.ToggleKey; tk != "" {
		kb, err := keymap.ParseKeybind(tk)
		if err != nil {
			return nil, &InitError{Component: "toggle key", Err: err}
		}
		if !app.opts.Headless {
			opts = append(opts, console.WithToggleKey(kb))
		}
	}
	if !app.cfg.Console.StartActive && !app.opts.Headless {
		opts = append(opts, console.WithStartInactive())
	}

	sink := app.opts.Sink
	if sink == nil {
		app.prompt = renderer.NewPrompt(renderer.PromptOptions{
			Symbol:     app.cfg.Console.Prompt,
			Hint:       app.cfg.Console.Hint,
			Scrollback: app.cfg.Console.Scrollback,
		})
		sink = app.prompt
	}
	opts = append(opts, console.WithSink(sink))

	if app.opts.Source != nil {
		opts = append(opts, console.WithSource(app.opts.Source))
	}
	if app.opts.Headless {
		if app.opts.Source == nil {
			return nil, &InitError{Component: "console", Err: errors.New("headless mode needs a key source")}
		}
		return opts, nil
	}

	open := app.opts.Opener
	if open == nil {
		open = terminal.OpenTerminal
	}
	gopts := append([]terminal.Option{
		terminal.WithLogger(app.logger.WithComponent("terminal")),
		terminal.WithSignalHandler(func(sig os.Signal) {
			app.logger.Info("signal %s", sig)
			app.console.RequestQuit()
		}),
	}, app.opts.GuardOptions...)
	app.guard = terminal.NewGuard(open, gopts...)
	return append(opts, console.WithSession(app.guard)), nil
}

// loadKeymap returns the default keymap, or the configured keymap file
// built over it.
func (app *Application) loadKeymap() (*keymap.Keymap, error) {
	var km *keymap.Keymap
	if path := app.cfg.Keymap.File; path != "" {
		loader := keymap.NewLoader()
		log := app.logger.WithComponent("keymap")
		loader.OnReplace = func(kb keymap.Keybind, prev, next keymap.Action) {
			log.Debug("%s rebound from %s to %s", kb, prev, next)
		}
		var err error
		if km, err = loader.LoadFile(path); err != nil {
			return nil, err
		}
	} else {
		km = keymap.Default()
	}
	if !app.cfg.Keymap.AllowShiftInsert {
		km.AllowShiftInsert = false
	}
	return km, nil
}

// reloadKeymap runs on the watcher goroutine. The console swaps the
// keymap at its next tick; a bad file keeps the current one.
func (app *Application) reloadKeymap(path string) {
	km, err := app.loadKeymap()
	if err != nil {
		app.logger.Warn("keeping current keymap: %v", err)
		app.console.Print(fmt.Sprintf("keymap %s not reloaded: %v", path, err))
		return
	}
	app.console.SetKeymap(km)
	app.console.Print(fmt.Sprintf("keymap reloaded (%d bindings)", km.Len()))
}

func (app *Application) loadScripts() error {
	app.scripts = script.NewEngine(
		script.WithTimeout(app.cfg.ScriptTimeout()),
		script.WithLogger(app.logger.WithComponent("script")),
	)
	app.scripts.Module("world", worldModule(app.scripts))

	defs, err := app.scripts.LoadDir(app.cfg.Scripts.Dir)
	if err != nil {
		app.logger.Warn("scripts: %v", err)
	}
	app.logger.Info("loaded %d script commands from %s", len(defs), app.cfg.Scripts.Dir)
	return app.scripts.Install(app.console)
}

// passthrough receives keys while the console is not capturing.
func (app *Application) passthrough(ev key.Event) {
	if ev.Key == key.KeyRune && ev.Rune == 'q' && ev.Modifiers == key.ModNone {
		app.console.RequestQuit()
		return
	}
	app.logger.Debug("host key %s", ev)
}

// Rate returns the tick rate in Hz.
func (app *Application) Rate() int {
	return int(time.Second / time.Duration(app.interval.Load()))
}

// SetRate changes the tick rate. The loop picks it up after the current tick.
func (app *Application) SetRate(hz int) error {
	if hz < 1 || hz > 1000 {
		return fmt.Errorf("%w: %d Hz is outside 1..1000", ErrInvalidRate, hz)
	}
	app.interval.Store(int64(time.Second / time.Duration(hz)))
	select {
	case app.rateChanged <- struct{}{}:
	default:
	}
	app.logger.Info("tick rate %d Hz", hz)
	return nil
}

// Shutdown stops Run at the next tick. It is safe from any goroutine.
func (app *Application) Shutdown() {
	app.console.RequestQuit()
}

// Close releases everything the application opened. Run must have
// returned. Close is idempotent.
func (app *Application) Close() error {
	var errs []error
	app.closeOnce.Do(func() {
		if app.watcher != nil {
			errs = append(errs, app.watcher.Close())
		}
		if app.console != nil {
			errs = append(errs, app.console.Stop())
		}
		if app.guard != nil {
			errs = append(errs, app.guard.Close())
		}
		if app.scripts != nil {
			errs = append(errs, app.scripts.Close())
		}
		if app.closer != nil {
			errs = append(errs, app.closer.Close())
		}
	})
	return errors.Join(errs...)
}

// Config returns the configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Console returns the console.
func (app *Application) Console() *console.Console {
	return app.console
}

// World returns the world. Only the loop goroutine may use it while Run
// is active.
func (app *Application) World() *World {
	return app.world
}

// Metrics returns the loop metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Guard returns the terminal guard, or nil when headless.
func (app *Application) Guard() *terminal.Guard {
	return app.guard
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.logger
}
