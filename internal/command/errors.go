package command

import (
	"errors"
	"fmt"
)

// ErrEmptyLine is returned by Resolve for blank lines. It is not a user
// error; callers should ignore the line silently.
var ErrEmptyLine = errors.New("command: empty line")

// ErrSealed is returned when registering after the registry was sealed.
var ErrSealed = errors.New("command: registry sealed")

// ErrShellOperator is wrapped by the ParseError for a line holding an
// unquoted ; & | < or >.
var ErrShellOperator = errors.New("command: unquoted shell operator")

// UnknownCommandError reports a first word that names no command.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %s", e.Name)
}

// ParseError reports a line that does not match its command's grammar.
// Message is the grammar's own text, unmodified.
type ParseError struct {
	Command string
	Message string
	// Help is set when the user asked for usage with -h or --help.
	Help bool
	Err  error
}

func (e *ParseError) Error() string {
	if e.Command == "" {
		return e.Message
	}
	return e.Command + ": " + e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RegistrationConflictError reports a name or alias claimed twice.
type RegistrationConflictError struct {
	Name     string
	Existing string
	Incoming string
}

func (e *RegistrationConflictError) Error() string {
	return fmt.Sprintf("command: %q of %q is already registered by %q", e.Name, e.Incoming, e.Existing)
}
