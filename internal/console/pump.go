package console

import (
	"github.com/dshills/tickcon/internal/input/key"
	"github.com/dshills/tickcon/internal/input/keymap"
	"github.com/dshills/tickcon/internal/input/line"
	"github.com/dshills/tickcon/internal/renderer"
)

// Pump moves key events from a Source into the prompt line.
type Pump struct {
	keymap  *keymap.Keymap
	buffer  line.Buffer
	sink    renderer.Sink
	toggle  keymap.Keybind
	toggles bool

	// held are events read after a toggle key, kept for the next drain.
	held []key.Event
}

// NewPump creates a pump editing with km and reporting to sink.
func NewPump(km *keymap.Keymap, sink renderer.Sink) *Pump {
	if km == nil {
		km = keymap.Default()
	}
	if sink == nil {
		sink = renderer.Discard
	}
	return &Pump{keymap: km, sink: sink}
}

// SetToggle sets the key that switches the console on and off.
func (p *Pump) SetToggle(kb keymap.Keybind) {
	p.toggle = kb
	p.toggles = true
}

// SetKeymap replaces the keymap. The line being edited is kept.
func (p *Pump) SetKeymap(km *keymap.Keymap) {
	if km != nil {
		p.keymap = km
	}
}

// Keymap returns the keymap in use.
func (p *Pump) Keymap() *keymap.Keymap {
	return p.keymap
}

// Drain handles every pending event in arrival order and returns without
// waiting when there are none.
//
// When capturing, each event is resolved through the keymap and applied
// to the line; submitted lines go to submit before the next event is
// read. Otherwise each event goes to pass, which may be nil.
//
// Drain stops at the toggle key and reports true. The key is consumed;
// events after it are held for the next Drain so that they are handled
// in the state the toggle produces.
func (p *Pump) Drain(src Source, capturing bool, submit func(line string), pass func(key.Event)) (toggled bool) {
	events := p.held
	p.held = nil
	if src != nil {
		events = append(events, src.Poll()...)
	}

	for i, ev := range events {
		if p.toggles && keymap.KeybindOf(ev) == p.toggle {
			p.held = append(p.held, events[i+1:]...)
			return true
		}
		if !capturing {
			if pass != nil {
				pass(ev)
			}
			continue
		}
		if text, ok := p.Feed(ev); ok && submit != nil {
			submit(text)
		}
	}
	return false
}

// Feed applies one event to the line. It returns the submitted line when
// the event completed one.
func (p *Pump) Feed(ev key.Event) (string, bool) {
	a := p.keymap.Resolve(ev)
	if a.Kind == keymap.NoOp {
		return "", false
	}
	text, ok := p.buffer.Apply(a)
	p.Redraw()
	return text, ok
}

// Redraw reports the line to the sink.
func (p *Pump) Redraw() {
	p.sink.Redraw(p.buffer.String(), renderer.Column(p.buffer.Before()))
}

// Clear empties the line.
func (p *Pump) Clear() {
	if p.buffer.Len() == 0 && p.buffer.Cursor() == 0 {
		return
	}
	p.buffer.Clear()
	p.Redraw()
}

// Line returns the text being edited and the cursor position in characters.
func (p *Pump) Line() (string, int) {
	return p.buffer.String(), p.buffer.Cursor()
}

// Pending reports whether events are held for the next drain.
func (p *Pump) Pending() bool {
	return len(p.held) > 0
}
