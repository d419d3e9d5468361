package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrNoHandler indicates a parsed command has no registered handler.
	ErrNoHandler = errors.New("dispatcher: no handler for command")

	// ErrDuplicateHandler indicates a second handler for the same command.
	ErrDuplicateHandler = errors.New("dispatcher: handler already registered")

	// ErrPanic indicates the handler panicked.
	ErrPanic = errors.New("dispatcher: handler panic")

	// ErrArgsType indicates a handler received arguments of the wrong type.
	ErrArgsType = errors.New("dispatcher: unexpected argument type")
)
