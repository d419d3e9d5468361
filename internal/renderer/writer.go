package renderer

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dshills/tickcon/internal/dispatcher"
)

// Writer is a line-oriented Sink for running without a terminal. It
// writes echoed lines and outcomes as plain text; the line being edited
// is not shown.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	errw   io.Writer
	symbol string
}

// NewWriter creates a sink writing to w. Failures go to errw, or to w
// when errw is nil.
func NewWriter(w, errw io.Writer, symbol string) *Writer {
	if errw == nil {
		errw = w
	}
	return &Writer{w: w, errw: errw, symbol: symbol}
}

// Redraw implements Sink. It does nothing.
func (*Writer) Redraw(string, int) {}

// Outcome implements Sink.
func (s *Writer) Outcome(out dispatcher.Outcome) {
	msg := out.Message()
	if msg == "" {
		return
	}
	if out.IsFailure() {
		s.write(s.errw, msg)
		return
	}
	s.write(s.w, msg)
}

// Print implements Sink.
func (s *Writer) Print(text string) {
	s.write(s.w, text)
}

// Echo implements Echoer. Nothing is echoed without a prompt symbol.
func (s *Writer) Echo(line string) {
	if s.symbol == "" {
		return
	}
	s.write(s.w, s.symbol+line)
}

func (s *Writer) write(w io.Writer, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(w, strings.TrimRight(text, "\n"))
}
