package script

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when using a closed engine.
	ErrClosed = errors.New("script: engine closed")

	// ErrTimeout is returned when a script runs longer than its limit.
	ErrTimeout = errors.New("script: execution timeout")

	// ErrInvalidCommand is returned for a malformed command table.
	ErrInvalidCommand = errors.New("script: invalid command definition")
)

// LoadError reports a script that failed to load.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("script %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
