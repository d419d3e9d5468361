package backend

import (
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/tickcon/internal/input/key"
)

var specialKeys = map[tcell.Key]key.Key{
	tcell.KeyDelete: key.KeyDelete,
	tcell.KeyInsert: key.KeyInsert,
	tcell.KeyHome:   key.KeyHome,
	tcell.KeyEnd:    key.KeyEnd,
	tcell.KeyPgUp:   key.KeyPageUp,
	tcell.KeyPgDn:   key.KeyPageDown,
	tcell.KeyUp:     key.KeyUp,
	tcell.KeyDown:   key.KeyDown,
	tcell.KeyLeft:   key.KeyLeft,
	tcell.KeyRight:  key.KeyRight,
	tcell.KeyF1:     key.KeyF1,
	tcell.KeyF2:     key.KeyF2,
	tcell.KeyF3:     key.KeyF3,
	tcell.KeyF4:     key.KeyF4,
	tcell.KeyF5:     key.KeyF5,
	tcell.KeyF6:     key.KeyF6,
	tcell.KeyF7:     key.KeyF7,
	tcell.KeyF8:     key.KeyF8,
	tcell.KeyF9:     key.KeyF9,
	tcell.KeyF10:    key.KeyF10,
	tcell.KeyF11:    key.KeyF11,
	tcell.KeyF12:    key.KeyF12,
}

// convertEvent converts tcell events to our Event type.
func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return Event{Type: EventKey, Key: convertKey(e)}
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}
	default:
		return Event{Type: EventNone}
	}
}

// convertKey maps a tcell key press onto key.Event.
//
// tcell reports the ASCII control keys with the same codes as Ctrl+letter
// (Backspace is Ctrl+H, Tab is Ctrl+I, Enter is Ctrl+M), so the named keys
// are checked before the Ctrl+letter range. Ctrl+letter becomes the
// lowercase letter with ModCtrl, which is what key.Parse("Ctrl+U") yields.
func convertKey(e *tcell.EventKey) key.Event {
	k := e.Key()
	mods := convertMod(e.Modifiers())
	ev := key.Event{Modifiers: mods, Timestamp: e.When()}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	switch {
	case k == tcell.KeyRune:
		ev.Key, ev.Rune = key.KeyRune, e.Rune()
		if mods.HasCtrl() {
			ev.Rune = unicode.ToLower(ev.Rune)
		}
	case k == tcell.KeyEnter:
		ev.Key = key.KeyEnter
	case k == tcell.KeyTab:
		ev.Key = key.KeyTab
	case k == tcell.KeyBacktab:
		ev.Key, ev.Modifiers = key.KeyTab, mods.With(key.ModShift)
	case k == tcell.KeyEscape:
		ev.Key = key.KeyEscape
	case k == tcell.KeyBackspace || k == tcell.KeyBackspace2:
		ev.Key = key.KeyBackspace
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		ev.Key, ev.Rune = key.KeyRune, 'a'+rune(k-tcell.KeyCtrlA)
		ev.Modifiers = mods.With(key.ModCtrl)
	case k == tcell.KeyCtrlSpace:
		ev.Key, ev.Rune = key.KeyRune, ' '
		ev.Modifiers = mods.With(key.ModCtrl)
	default:
		ev.Key = specialKeys[k]
	}
	return ev
}

// convertMod converts a tcell modifier mask. Meta folds into Alt.
func convertMod(m tcell.ModMask) key.Modifier {
	var result key.Modifier
	if m&tcell.ModShift != 0 {
		result |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= key.ModCtrl
	}
	if m&(tcell.ModAlt|tcell.ModMeta) != 0 {
		result |= key.ModAlt
	}
	return result
}

// convertToTcell converts a key.Event back to tcell key, rune and modifiers.
func convertToTcell(ev key.Event) (tcell.Key, rune, tcell.ModMask) {
	var mod tcell.ModMask
	if ev.Modifiers.HasShift() {
		mod |= tcell.ModShift
	}
	if ev.Modifiers.HasCtrl() {
		mod |= tcell.ModCtrl
	}
	if ev.Modifiers.HasAlt() {
		mod |= tcell.ModAlt
	}

	switch ev.Key {
	case key.KeyRune:
		if ev.Modifiers.HasCtrl() && ev.Rune >= 'a' && ev.Rune <= 'z' {
			return tcell.KeyCtrlA + tcell.Key(ev.Rune-'a'), ev.Rune, mod
		}
		return tcell.KeyRune, ev.Rune, mod
	case key.KeyEnter:
		return tcell.KeyEnter, 0, mod
	case key.KeyTab:
		return tcell.KeyTab, 0, mod
	case key.KeyEscape:
		return tcell.KeyEscape, 0, mod
	case key.KeyBackspace:
		return tcell.KeyBackspace2, 0, mod
	}
	for tk, k := range specialKeys {
		if k == ev.Key {
			return tk, 0, mod
		}
	}
	return tcell.KeyRune, ev.Rune, mod
}
