package renderer

import (
	"strings"

	"github.com/dshills/tickcon/internal/renderer/backend"
)

// Line is one line of console output.
type Line struct {
	Text  string
	Style backend.Style
}

// Scrollback keeps the most recent output lines, oldest first.
type Scrollback struct {
	lines []Line
	limit int
}

// NewScrollback creates a scrollback holding at most limit lines. A
// limit below one keeps a single line.
func NewScrollback(limit int) *Scrollback {
	if limit < 1 {
		limit = 1
	}
	return &Scrollback{limit: limit}
}

// Add appends text, one Line per newline-separated part.
func (s *Scrollback) Add(text string, style backend.Style) {
	text = strings.TrimRight(text, "\n")
	for _, part := range strings.Split(text, "\n") {
		s.lines = append(s.lines, Line{Text: strings.TrimRight(part, "\r"), Style: style})
	}
	if over := len(s.lines) - s.limit; over > 0 {
		s.lines = append(s.lines[:0], s.lines[over:]...)
	}
}

// Clear drops every line.
func (s *Scrollback) Clear() {
	s.lines = s.lines[:0]
}

// Len returns the number of lines held.
func (s *Scrollback) Len() int {
	return len(s.lines)
}

// Tail returns up to n of the newest lines.
func (s *Scrollback) Tail(n int) []Line {
	if n <= 0 {
		return nil
	}
	if n > len(s.lines) {
		n = len(s.lines)
	}
	out := make([]Line, n)
	copy(out, s.lines[len(s.lines)-n:])
	return out
}
