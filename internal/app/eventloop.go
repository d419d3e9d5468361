package app

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/tickcon/internal/terminal"
)

// memorySampleTicks is how often, in ticks, memory statistics are read.
const memorySampleTicks = 256

// Run starts the console and drives the loop until a quit is requested
// or ctx is done. If the terminal cannot be taken over, the host keeps
// running without a console.
//
// Run returns ErrQuit when the loop ended because a quit was requested.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.console.Start(); err != nil {
		if !errors.Is(err, terminal.ErrTerminalUnavailable) {
			return &InitError{Component: "console", Err: err}
		}
		app.logger.Warn("running without a console: %v", err)
	}
	defer func() {
		if err := app.console.Stop(); err != nil {
			app.logger.Error("stopping console: %v", err)
		}
	}()

	app.logger.Info("loop started at %d Hz", app.Rate())
	return app.eventLoop(ctx)
}

// eventLoop ticks at the configured rate. Ticks never overlap; a tick
// that overruns its interval delays the next one.
func (app *Application) eventLoop(ctx context.Context) error {
	interval := time.Duration(app.interval.Load())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-app.rateChanged:
			interval = time.Duration(app.interval.Load())
			ticker.Reset(interval)

		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			app.Tick(dt)
			if app.console.QuitRequested() {
				app.logger.Info("quit after %d ticks", app.world.Ticks())
				return ErrQuit
			}
		}
	}
}

// Tick runs one frame: the console first, so that commands see the world
// as the previous frame left it, then the world systems.
func (app *Application) Tick(dt time.Duration) {
	timer := StartTimer()

	app.console.Tick(app.world)
	inConsole := timer.Elapsed()

	app.world.Step(dt)

	total := timer.Elapsed()
	app.metrics.RecordTick(total, inConsole)
	if total > time.Duration(app.interval.Load()) {
		app.metrics.RecordOverrun()
	}
	if app.world.Ticks()%memorySampleTicks == 0 {
		app.metrics.SampleMemory()
	}
}
