package renderer

import (
	"sync"

	"github.com/dshills/tickcon/internal/dispatcher"
)

// Frame is one Redraw call seen by a Recorder.
type Frame struct {
	Buffer string
	Column int
}

// Recorder is a Sink that remembers every call. It is used by tests and
// by hosts that render the console themselves.
type Recorder struct {
	mu       sync.Mutex
	frames   []Frame
	outcomes []dispatcher.Outcome
	printed  []string
	echoed   []string
	clears   int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Redraw implements Sink.
func (r *Recorder) Redraw(buffer string, column int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, Frame{Buffer: buffer, Column: column})
}

// Outcome implements Sink.
func (r *Recorder) Outcome(out dispatcher.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, out)
}

// Print implements Sink.
func (r *Recorder) Print(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.printed = append(r.printed, text)
}

// Echo implements Echoer.
func (r *Recorder) Echo(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.echoed = append(r.echoed, line)
}

// ClearOutput implements Clearer.
func (r *Recorder) ClearOutput() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	r.printed = nil
}

// Frames returns every Redraw call in order.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

// Last returns the most recent frame, or the zero Frame.
func (r *Recorder) Last() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return Frame{}
	}
	return r.frames[len(r.frames)-1]
}

// Outcomes returns every reported outcome in order.
func (r *Recorder) Outcomes() []dispatcher.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]dispatcher.Outcome(nil), r.outcomes...)
}

// Printed returns the text printed since the last ClearOutput.
func (r *Recorder) Printed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.printed...)
}

// Echoed returns every echoed line.
func (r *Recorder) Echoed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.echoed...)
}

// Clears returns how many times the output was cleared.
func (r *Recorder) Clears() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clears
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
	r.outcomes = nil
	r.printed = nil
	r.echoed = nil
	r.clears = 0
}
