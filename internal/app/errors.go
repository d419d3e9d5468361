package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrQuit signals that the application should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates the application is already running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNoEntity indicates an entity id that is not in the world.
	ErrNoEntity = errors.New("no such entity")

	// ErrInvalidRate indicates a tick rate outside the supported range.
	ErrInvalidRate = errors.New("invalid tick rate")
)

// InitError represents an initialization error.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// EntityError reports an operation on an entity that failed.
type EntityError struct {
	Op  string
	ID  int
	Err error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s entity %d: %v", e.Op, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}
