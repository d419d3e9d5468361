// Package handler defines what a command handler receives and returns.
package handler

import (
	"github.com/dshills/tickcon/internal/command"
	"github.com/dshills/tickcon/internal/logging"
)

// Console is the part of the console a handler may drive.
type Console interface {
	// Print appends text to the console output.
	Print(text string)
	// ClearOutput erases the console output.
	ClearOutput()
	// Close stops capturing input at the next tick; the host keeps running.
	Close()
	// RequestQuit asks the host to shut down at the next tick.
	RequestQuit()
}

// Context is passed to a handler for one dispatch. The handler has
// exclusive access to State for the duration of the call.
type Context struct {
	// Command is the parsed command.
	Command command.Value

	// SubmissionID identifies the submitted line in logs.
	SubmissionID string

	// State is the host application state.
	State any

	// Console may be nil when dispatching outside a console.
	Console Console

	// Logger is never nil when built by the dispatcher.
	Logger *logging.Logger
}

// Print writes text to the console, if there is one.
func (c *Context) Print(text string) {
	if c.Console != nil {
		c.Console.Print(text)
	}
}

// StateAs returns the context's state as S.
func StateAs[S any](c *Context) (S, bool) {
	s, ok := c.State.(S)
	return s, ok
}

// Handler executes one command.
type Handler interface {
	Handle(ctx *Context) Result
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx *Context) Result

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx *Context) Result {
	if f == nil {
		return Errorf("handler function is nil")
	}
	return f(ctx)
}
