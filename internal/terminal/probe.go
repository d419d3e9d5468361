package terminal

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Prober checks that the console can take over the terminal.
type Prober func() error

// ProbeFile returns a Prober requiring f to be a terminal.
func ProbeFile(f *os.File) Prober {
	return func() error {
		if f == nil {
			return fmt.Errorf("%w: no input file", ErrTerminalUnavailable)
		}
		if !term.IsTerminal(int(f.Fd())) {
			return fmt.Errorf("%w: %s is not a terminal", ErrTerminalUnavailable, f.Name())
		}
		return nil
	}
}

// Describe returns a short description of the terminal on f for logs.
func Describe(f *os.File) string {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return "not a terminal"
	}
	w, h, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return fmt.Sprintf("tty (size unknown: %v)", err)
	}
	return fmt.Sprintf("tty %dx%d TERM=%s", w, h, os.Getenv("TERM"))
}
