// Package line implements the single-line edit buffer behind the prompt.
package line

import "github.com/dshills/tickcon/internal/input/keymap"

// Buffer is an editable line of characters with a cursor.
// The cursor is an index in [0, Len()] counted in characters, not bytes.
// The zero value is an empty buffer ready for use.
type Buffer struct {
	runes  []rune
	cursor int
}

// Apply performs an editing action. For Submit it returns the line,
// untrimmed, with ok set, and leaves the buffer empty. Every other
// action returns ok false. Edits at the ends of the line are no-ops.
func (b *Buffer) Apply(a keymap.Action) (submitted string, ok bool) {
	switch a.Kind {
	case keymap.InsertChar:
		b.runes = append(b.runes, 0)
		copy(b.runes[b.cursor+1:], b.runes[b.cursor:])
		b.runes[b.cursor] = a.Char
		b.cursor++
	case keymap.Backspace:
		if b.cursor > 0 {
			b.runes = append(b.runes[:b.cursor-1], b.runes[b.cursor:]...)
			b.cursor--
		}
	case keymap.DeleteForward:
		if b.cursor < len(b.runes) {
			b.runes = append(b.runes[:b.cursor], b.runes[b.cursor+1:]...)
		}
	case keymap.MoveLeft:
		if b.cursor > 0 {
			b.cursor--
		}
	case keymap.MoveRight:
		if b.cursor < len(b.runes) {
			b.cursor++
		}
	case keymap.MoveHome:
		b.cursor = 0
	case keymap.MoveEnd:
		b.cursor = len(b.runes)
	case keymap.ClearBuffer:
		b.Clear()
	case keymap.Submit:
		submitted = string(b.runes)
		b.Clear()
		return submitted, true
	}
	return "", false
}

// Clear empties the buffer and resets the cursor.
func (b *Buffer) Clear() {
	b.runes = b.runes[:0]
	b.cursor = 0
}

// String returns the current contents.
func (b *Buffer) String() string {
	return string(b.runes)
}

// Before returns the text left of the cursor.
func (b *Buffer) Before() string {
	return string(b.runes[:b.cursor])
}

// Cursor returns the cursor position in characters.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Len returns the number of characters in the buffer.
func (b *Buffer) Len() int {
	return len(b.runes)
}

// IsEmpty reports whether the buffer holds no characters.
func (b *Buffer) IsEmpty() bool {
	return len(b.runes) == 0
}
