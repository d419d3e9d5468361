package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into an Event.
//
// Supported formats:
//   - Single character: "a", "A", "`", "@"
//   - Named keys: "Enter", "Esc", "Backspace", "Space", "F5"
//   - With modifiers: "Ctrl+U", "Alt+Left", "Ctrl+Shift+Home"
//   - Bracketed: "<C-u>", "<A-b>", "<CR>", "<Esc>"
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if len(spec) > 2 && strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseBracketed(spec[1 : len(spec)-1])
	}

	// "+" alone is the plus character, "Ctrl++" is Ctrl with plus.
	if len(spec) > 1 && strings.Contains(spec, "+") {
		return parseCombo(spec)
	}

	return parseKey(spec, ModNone)
}

// parseBracketed parses notation like "C-u", "A-F4", "CR".
func parseBracketed(inner string) (Event, error) {
	inner = strings.TrimSpace(inner)
	parts := strings.Split(inner, "-")
	if len(parts) > 1 && parts[len(parts)-1] == "" {
		// "<C-->" names the minus key
		parts = append(parts[:len(parts)-2], "-")
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		mod := ModifierFromName(p)
		if mod == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}
	return parseKey(parts[len(parts)-1], mods)
}

// parseCombo parses "Ctrl+U" style notation.
func parseCombo(spec string) (Event, error) {
	keyPart := spec[strings.LastIndex(spec, "+")+1:]
	head := spec[:len(spec)-len(keyPart)-1]
	if keyPart == "" {
		// trailing "+" names the plus key
		keyPart = "+"
		head = strings.TrimSuffix(head, "+")
	}

	var mods Modifier
	for _, p := range strings.Split(head, "+") {
		mod := ModifierFromName(p)
		if mod == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}
	return parseKey(keyPart, mods)
}

// parseKey parses a key name or single character with known modifiers.
func parseKey(keyPart string, mods Modifier) (Event, error) {
	keyPart = strings.TrimSpace(keyPart)
	if keyPart == "" {
		return Event{}, ErrInvalidSpec
	}

	switch strings.ToLower(keyPart) {
	case "space":
		return NewRuneEvent(' ', mods), nil
	case "plus":
		return NewRuneEvent('+', mods), nil
	case "lt":
		return NewRuneEvent('<', mods), nil
	case "gt":
		return NewRuneEvent('>', mods), nil
	case "backtick":
		return NewRuneEvent('`', mods), nil
	}

	if k := KeyFromName(keyPart); k != KeyNone {
		return NewSpecialEvent(k, mods), nil
	}

	runes := []rune(keyPart)
	if len(runes) != 1 {
		return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
	}
	r := runes[0]
	switch {
	case mods.HasCtrl():
		// terminals report Ctrl+letter in lowercase
		r = unicode.ToLower(r)
	case unicode.IsUpper(r):
		mods = mods.With(ModShift)
	}
	return NewRuneEvent(r, mods), nil
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	ev, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return ev
}
