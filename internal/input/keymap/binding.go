package keymap

import (
	"errors"
	"fmt"

	"github.com/dshills/tickcon/internal/input/key"
)

// Errors returned while building keymaps.
var (
	ErrUnknownAction = errors.New("keymap: unknown action")
	ErrInvalidKeys   = errors.New("keymap: invalid key specification")
)

// Keybind is the exact key combination a binding matches.
// Two Keybinds are equal only if key, rune and modifiers all match.
type Keybind struct {
	Key  key.Key
	Rune rune
	Mods key.Modifier
}

// KeybindOf returns the Keybind an event would match.
func KeybindOf(ev key.Event) Keybind {
	kb := Keybind{Key: ev.Key, Mods: ev.Modifiers}
	if ev.Key == key.KeyRune {
		kb.Rune = ev.Rune
	}
	return kb
}

// ParseKeybind parses a key specification such as "Ctrl+U" or "<Esc>".
func ParseKeybind(spec string) (Keybind, error) {
	ev, err := key.Parse(spec)
	if err != nil {
		return Keybind{}, fmt.Errorf("%w: %w", ErrInvalidKeys, err)
	}
	return KeybindOf(ev), nil
}

// MustParseKeybind is ParseKeybind for known-valid specs; it panics on error.
func MustParseKeybind(spec string) Keybind {
	kb, err := ParseKeybind(spec)
	if err != nil {
		panic(err)
	}
	return kb
}

// String returns the key specification for the binding.
func (kb Keybind) String() string {
	return key.Event{Key: kb.Key, Rune: kb.Rune, Modifiers: kb.Mods}.String()
}

// Binding pairs a Keybind with its action.
type Binding struct {
	Keys   Keybind
	Action Action
}

// String returns "keys -> action".
func (b Binding) String() string {
	return b.Keys.String() + " -> " + b.Action.String()
}
