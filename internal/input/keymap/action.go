package keymap

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind identifies a line-editing action.
type Kind uint8

const (
	// NoOp does nothing.
	NoOp Kind = iota
	// InsertChar inserts Action.Char at the cursor.
	InsertChar
	// Backspace deletes the character left of the cursor.
	Backspace
	// DeleteForward deletes the character under the cursor.
	DeleteForward
	// MoveLeft moves the cursor one character left.
	MoveLeft
	// MoveRight moves the cursor one character right.
	MoveRight
	// MoveHome moves the cursor to the start of the line.
	MoveHome
	// MoveEnd moves the cursor to the end of the line.
	MoveEnd
	// ClearBuffer empties the line.
	ClearBuffer
	// Submit completes the line.
	Submit
)

var kindNames = [...]string{
	NoOp:          "noop",
	InsertChar:    "insert",
	Backspace:     "backspace",
	DeleteForward: "delete",
	MoveLeft:      "left",
	MoveRight:     "right",
	MoveHome:      "home",
	MoveEnd:       "end",
	ClearBuffer:   "clear",
	Submit:        "submit",
}

// String returns the action name used in keymap files.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Action is a line-editing action. Char is only meaningful for InsertChar.
type Action struct {
	Kind Kind
	Char rune
}

// Do returns the action of the given kind with no payload.
func Do(k Kind) Action {
	return Action{Kind: k}
}

// Insert returns an InsertChar action for r.
func Insert(r rune) Action {
	return Action{Kind: InsertChar, Char: r}
}

// String returns the action name, with the character for inserts ("insert:x").
func (a Action) String() string {
	if a.Kind == InsertChar {
		return a.Kind.String() + ":" + string(a.Char)
	}
	return a.Kind.String()
}

// ParseAction parses an action name as written in keymap files.
// Inserts are written "insert:<char>".
func ParseAction(name string) (Action, error) {
	name = strings.TrimSpace(name)
	if rest, ok := strings.CutPrefix(name, "insert:"); ok {
		r, size := utf8.DecodeRuneInString(rest)
		if r == utf8.RuneError || size != len(rest) {
			return Action{}, fmt.Errorf("%w: insert needs exactly one character, got %q", ErrUnknownAction, rest)
		}
		return Insert(r), nil
	}
	lower := strings.ToLower(name)
	for k, n := range kindNames {
		if n == lower && Kind(k) != InsertChar {
			return Do(Kind(k)), nil
		}
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}
