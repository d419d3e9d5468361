package renderer

import "github.com/dshills/tickcon/internal/dispatcher"

// Sink receives everything the console wants shown. The console calls it
// from the host's tick; implementations need not be safe for concurrent
// use unless they are also written to from elsewhere.
type Sink interface {
	// Redraw reports the line being edited after every change. column is
	// the cursor's display column within buffer.
	Redraw(buffer string, column int)

	// Outcome reports what happened to a submitted line.
	Outcome(out dispatcher.Outcome)

	// Print appends text to the output.
	Print(text string)
}

// Echoer is implemented by sinks that show submitted lines above the prompt.
type Echoer interface {
	Echo(line string)
}

// Clearer is implemented by sinks with output that can be erased.
type Clearer interface {
	ClearOutput()
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Redraw(string, int)          {}
func (discard) Outcome(dispatcher.Outcome) {}
func (discard) Print(string)               {}
