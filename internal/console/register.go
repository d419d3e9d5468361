package console

import (
	"github.com/dshills/tickcon/internal/command"
	"github.com/dshills/tickcon/internal/dispatcher"
	"github.com/dshills/tickcon/internal/dispatcher/handler"
)

// Handler runs one command with its typed arguments.
type Handler[T any] func(ctx *handler.Context, cmd T) handler.Result

// Register adds a command and its handler in one step. It must be called
// before Start. On error neither the registry nor the dispatcher keeps
// anything of the command.
func Register[T any](c *Console, grammar command.Grammar, construct command.Constructor[T], fn Handler[T]) error {
	if err := command.Register(c.registry, grammar, construct); err != nil {
		return err
	}
	name := grammar().Name()
	if err := dispatcher.Handle[T](c.dispatcher, name, fn); err != nil {
		c.registry.Unregister(name)
		return err
	}
	return nil
}

// MustRegister is Register that panics on error.
func MustRegister[T any](c *Console, grammar command.Grammar, construct command.Constructor[T], fn Handler[T]) {
	if err := Register(c, grammar, construct, fn); err != nil {
		panic(err)
	}
}
