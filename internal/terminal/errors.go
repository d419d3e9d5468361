package terminal

import (
	"errors"
	"fmt"
)

// ErrTerminalUnavailable is returned by Activate when the input is not a
// terminal or the terminal could not be initialised. The host should run
// on without the console.
var ErrTerminalUnavailable = errors.New("terminal: unavailable")

// ErrClosed is returned by Activate after Close.
var ErrClosed = errors.New("terminal: guard closed")

// RestoreError reports a failure to restore the terminal's prior mode.
type RestoreError struct {
	Cause any
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("terminal: restore failed: %v", e.Cause)
}
