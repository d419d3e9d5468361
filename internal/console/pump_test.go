package console

import (
	"testing"

	"github.com/dshills/tickcon/internal/input/key"
	"github.com/dshills/tickcon/internal/input/keymap"
	"github.com/dshills/tickcon/internal/renderer"
)

func TestPumpDrainEmptySource(t *testing.T) {
	p := NewPump(nil, nil)
	called := false
	toggled := p.Drain(NewQueue(), true, func(string) { called = true }, nil)
	if toggled || called {
		t.Error("empty source should do nothing")
	}
	if toggled := p.Drain(nil, true, nil, nil); toggled {
		t.Error("nil source should do nothing")
	}
}

func TestPumpSubmitsEveryLine(t *testing.T) {
	rec := renderer.NewRecorder()
	p := NewPump(keymap.Default(), rec)
	q := NewQueue()
	q.Line("a")
	q.Line("b c")
	q.Type("d")

	var lines []string
	p.Drain(q, true, func(l string) { lines = append(lines, l) }, nil)

	if len(lines) != 2 || lines[0] != "a" || lines[1] != "b c" {
		t.Errorf("lines = %q", lines)
	}
	if text, cursor := p.Line(); text != "d" || cursor != 1 {
		t.Errorf("Line() = %q, %d", text, cursor)
	}
	// One frame per edit: a, Enter, b, space, c, Enter, d.
	if n := len(rec.Frames()); n != 7 {
		t.Errorf("frames = %d, want 7", n)
	}
}

func TestPumpSubmitIsUntrimmed(t *testing.T) {
	p := NewPump(nil, nil)
	q := NewQueue()
	q.Line("  say hi  ")

	var got string
	p.Drain(q, true, func(l string) { got = l }, nil)
	if got != "  say hi  " {
		t.Errorf("submitted %q", got)
	}
}

func TestPumpNoOpDoesNotRedraw(t *testing.T) {
	rec := renderer.NewRecorder()
	p := NewPump(nil, rec)

	p.Feed(key.NewSpecialEvent(key.KeyF5, key.ModNone))
	p.Feed(key.NewRuneEvent('x', key.ModCtrl))

	if n := len(rec.Frames()); n != 0 {
		t.Errorf("frames = %d, want 0", n)
	}
}

func TestPumpPassthrough(t *testing.T) {
	p := NewPump(nil, nil)
	q := NewQueue()
	q.Type("ab")
	q.Press(key.KeyEnter)

	var passed []key.Event
	submitted := false
	p.Drain(q, false, func(string) { submitted = true }, func(ev key.Event) { passed = append(passed, ev) })

	if submitted {
		t.Error("inactive pump submitted a line")
	}
	if len(passed) != 3 {
		t.Fatalf("passed %d events, want 3", len(passed))
	}
	if passed[2].Key != key.KeyEnter {
		t.Errorf("last passed event = %v", passed[2])
	}
	if text, _ := p.Line(); text != "" {
		t.Errorf("inactive pump edited the line: %q", text)
	}
}

func TestPumpToggleHoldsRemainingEvents(t *testing.T) {
	p := NewPump(nil, nil)
	p.SetToggle(keymap.MustParseKeybind("F2"))
	q := NewQueue()
	q.Type("a")
	q.Press(key.KeyF2)
	q.Type("b")

	if !p.Drain(q, true, nil, nil) {
		t.Fatal("expected toggle")
	}
	if text, _ := p.Line(); text != "a" {
		t.Errorf("line = %q, want %q", text, "a")
	}
	if !p.Pending() {
		t.Fatal("expected held events")
	}

	if p.Drain(q, true, nil, nil) {
		t.Error("unexpected second toggle")
	}
	if text, _ := p.Line(); text != "ab" {
		t.Errorf("line = %q, want %q", text, "ab")
	}
}

func TestPumpClear(t *testing.T) {
	rec := renderer.NewRecorder()
	p := NewPump(nil, rec)
	p.Clear()
	if len(rec.Frames()) != 0 {
		t.Error("clearing an empty line should not redraw")
	}
	p.Feed(key.NewRuneEvent('x', key.ModNone))
	p.Clear()
	if rec.Last() != (renderer.Frame{}) {
		t.Errorf("Last = %+v", rec.Last())
	}
}

func TestQueue(t *testing.T) {
	q := NewQueue()
	q.Line("hé")
	if q.Len() != 3 {
		t.Fatalf("Len = %d, want 3", q.Len())
	}
	events := q.Poll()
	if len(events) != 3 || events[1].Rune != 'é' || events[2].Key != key.KeyEnter {
		t.Errorf("Poll = %v", events)
	}
	if q.Poll() != nil {
		t.Error("second Poll should be empty")
	}
}

func TestQueueControlCharacters(t *testing.T) {
	q := NewQueue()
	if n := q.Line("say\ta\x07b"); n != 1 {
		t.Errorf("Line reported %d removed, want 1", n)
	}

	var typed []rune
	for _, ev := range q.Poll() {
		if ev.Key == key.KeyRune {
			typed = append(typed, ev.Rune)
		}
	}
	if got := string(typed); got != "say ab" {
		t.Errorf("typed %q, want %q", got, "say ab")
	}
}
