package key

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Event represents a single key press as reported by the terminal.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the modifier keys the terminal reported.
	Modifiers Modifier

	// Timestamp is when the event was read.
	Timestamp time.Time
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{
		Key:       KeyRune,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{
		Key:       k,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsPrintable returns true if the event carries a printable character.
func (e Event) IsPrintable() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// Equals returns true if two events represent the same key press.
// Timestamps are not compared.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key &&
		e.Rune == other.Rune &&
		e.Modifiers == other.Modifiers
}

// Matches checks if this event matches a key specification string.
func (e Event) Matches(spec string) bool {
	parsed, err := Parse(spec)
	if err != nil {
		return false
	}
	return e.Equals(parsed)
}

// String returns the canonical spec for the event, e.g. "Ctrl+U", "Enter", "a".
// The result parses back to an equal event.
func (e Event) String() string {
	var name string
	switch {
	case e.Key == KeyRune && e.Rune == ' ':
		name = "Space"
	case e.Key == KeyRune && e.Rune == '+':
		name = "Plus"
	case e.Key == KeyRune:
		name = string(e.Rune)
	default:
		name = e.Key.String()
	}

	mods := e.Modifiers
	// Shift on an uppercase letter is implied by the letter itself.
	if e.Key == KeyRune && unicode.IsUpper(e.Rune) {
		mods = mods.Without(ModShift)
	}
	if mods.IsEmpty() {
		return name
	}
	return mods.String() + "+" + name
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("key.Event{Key: %s, Rune: %q, Modifiers: %s}",
		e.Key, e.Rune, strings.TrimSpace(e.Modifiers.String()))
}
