package console

import (
	"sync"
	"unicode"

	"github.com/dshills/tickcon/internal/input/key"
)

// Source supplies key events. Poll returns the events that arrived since
// the last call, oldest first, and must not block.
type Source interface {
	Poll() []key.Event
}

// Queue is a Source fed by the program instead of a terminal. It is safe
// for concurrent use.
type Queue struct {
	mu     sync.Mutex
	events []key.Event
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends events.
func (q *Queue) Push(events ...key.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, events...)
}

// Type appends one unmodified rune event per character of s. A tab is
// typed as a space. Other control characters have no key that would
// insert them, so they are left out; Type returns how many were.
func (q *Queue) Type(s string) int {
	events := make([]key.Event, 0, len(s))
	dropped := 0
	for _, r := range s {
		switch {
		case r == '\t':
			r = ' '
		case unicode.IsControl(r):
			dropped++
			continue
		}
		events = append(events, key.NewRuneEvent(r, key.ModNone))
	}
	q.Push(events...)
	return dropped
}

// Press appends a special key.
func (q *Queue) Press(k key.Key) {
	q.Push(key.NewSpecialEvent(k, key.ModNone))
}

// Line types s followed by Enter and returns the number of control
// characters left out.
func (q *Queue) Line(s string) int {
	n := q.Type(s)
	q.Press(key.KeyEnter)
	return n
}

// Poll implements Source.
func (q *Queue) Poll() []key.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
