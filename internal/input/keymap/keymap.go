package keymap

import (
	"slices"
	"strings"

	"github.com/dshills/tickcon/internal/input/key"
)

// Keymap maps exact key combinations to actions.
// A Keymap is not safe for concurrent mutation; bind before the console
// starts reading keys, or hand a new Keymap to the console.
type Keymap struct {
	bindings map[Keybind]Action

	// AllowShiftInsert lets a printable character typed with Shift as the
	// only modifier fall back to InsertChar.
	AllowShiftInsert bool
}

// New creates an empty keymap. Only the printable-character fallback applies.
func New() *Keymap {
	return &Keymap{
		bindings:         make(map[Keybind]Action),
		AllowShiftInsert: true,
	}
}

// Bind maps kb to action. If kb was already bound, the previous action is
// returned with replaced set to true; the new action wins.
func (k *Keymap) Bind(kb Keybind, action Action) (prev Action, replaced bool) {
	prev, replaced = k.bindings[kb]
	k.bindings[kb] = action
	return prev, replaced
}

// Unbind removes the binding for kb. It reports whether one existed.
func (k *Keymap) Unbind(kb Keybind) bool {
	if _, ok := k.bindings[kb]; !ok {
		return false
	}
	delete(k.bindings, kb)
	return true
}

// Lookup returns the action explicitly bound to kb.
func (k *Keymap) Lookup(kb Keybind) (Action, bool) {
	a, ok := k.bindings[kb]
	return a, ok
}

// Resolve maps a key event to an action.
//
// An explicit binding always wins. Otherwise a printable character with
// no modifiers (or Shift alone, when AllowShiftInsert is set) inserts
// itself, and anything else is NoOp.
func (k *Keymap) Resolve(ev key.Event) Action {
	if a, ok := k.bindings[KeybindOf(ev)]; ok {
		return a
	}
	if !ev.IsPrintable() {
		return Do(NoOp)
	}
	mods := ev.Modifiers
	if k.AllowShiftInsert {
		mods = mods.Without(key.ModShift)
	}
	if mods.IsEmpty() {
		return Insert(ev.Rune)
	}
	return Do(NoOp)
}

// Len returns the number of explicit bindings.
func (k *Keymap) Len() int {
	return len(k.bindings)
}

// Bindings returns all explicit bindings ordered by key specification.
func (k *Keymap) Bindings() []Binding {
	out := make([]Binding, 0, len(k.bindings))
	for kb, a := range k.bindings {
		out = append(out, Binding{Keys: kb, Action: a})
	}
	slices.SortFunc(out, func(a, b Binding) int {
		return strings.Compare(a.Keys.String(), b.Keys.String())
	})
	return out
}

// Merge binds every binding of other into k, other winning on conflict.
// It returns the keybinds whose action was replaced.
func (k *Keymap) Merge(other *Keymap) []Keybind {
	var replaced []Keybind
	for _, b := range other.Bindings() {
		if prev, ok := k.Bind(b.Keys, b.Action); ok && prev != b.Action {
			replaced = append(replaced, b.Keys)
		}
	}
	return replaced
}

// Clone returns an independent copy of the keymap.
func (k *Keymap) Clone() *Keymap {
	c := &Keymap{
		bindings:         make(map[Keybind]Action, len(k.bindings)),
		AllowShiftInsert: k.AllowShiftInsert,
	}
	for kb, a := range k.bindings {
		c.bindings[kb] = a
	}
	return c
}
