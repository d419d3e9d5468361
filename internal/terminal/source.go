package terminal

import (
	"sync"
	"sync/atomic"

	"github.com/dshills/tickcon/internal/input/key"
	"github.com/dshills/tickcon/internal/renderer/backend"
)

const defaultQueueSize = 1024

// interruptKey is Ctrl+C as reported by the backend.
var interruptKey = key.Event{Key: key.KeyRune, Rune: 'c', Modifiers: key.ModCtrl}

// Source reads key events from a backend on its own goroutine and hands
// them out without blocking.
type Source struct {
	events    chan key.Event
	interrupt func()
	resized   atomic.Bool
	stop      chan struct{}
	closed    chan struct{}
	stopOnce  sync.Once
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithInterrupt sets the function called when Ctrl+C is pressed. The key
// itself is not queued. The function runs on the reader goroutine.
func WithInterrupt(fn func()) SourceOption {
	return func(s *Source) { s.interrupt = fn }
}

// WithQueueSize sets how many unread events are buffered before the reader waits.
func WithQueueSize(n int) SourceOption {
	return func(s *Source) {
		if n > 0 {
			s.events = make(chan key.Event, n)
		}
	}
}

// NewSource starts reading events from b.
func NewSource(b backend.Backend, opts ...SourceOption) *Source {
	s := &Source{
		events: make(chan key.Event, defaultQueueSize),
		stop:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run(b)
	return s
}

func (s *Source) run(b backend.Backend) {
	defer close(s.closed)
	for {
		ev := b.PollEvent()
		switch ev.Type {
		case backend.EventClosed:
			return
		case backend.EventResize:
			s.resized.Store(true)
		case backend.EventKey:
			if ev.Key.Equals(interruptKey) && s.interrupt != nil {
				s.interrupt()
				continue
			}
			select {
			case s.events <- ev.Key:
			case <-s.stop:
				return
			}
		}
	}
}

// Poll returns the events queued so far, in arrival order, without waiting.
// Events arriving during the call are left for the next Poll.
func (s *Source) Poll() []key.Event {
	n := len(s.events)
	if n == 0 {
		return nil
	}
	out := make([]key.Event, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, <-s.events)
	}
	return out
}

// Resized reports whether the terminal was resized since the last call.
func (s *Source) Resized() bool {
	return s.resized.Swap(false)
}

// Done is closed when the backend has shut down and the reader has exited.
func (s *Source) Done() <-chan struct{} {
	return s.closed
}

// Stop releases a reader blocked on a full queue. The reader exits once
// the backend is shut down.
func (s *Source) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}
