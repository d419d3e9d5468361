// Package backend abstracts the terminal the console draws to and reads from.
package backend

import "github.com/dshills/tickcon/internal/input/key"

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	// EventClosed is returned by PollEvent once the backend has shut down.
	EventClosed
)

// Event represents a terminal event.
type Event struct {
	Type EventType

	// Key is set for EventKey.
	Key key.Event

	// Width and Height are set for EventResize.
	Width, Height int
}

// Style selects how text is drawn. Backends map styles to colors.
type Style uint8

const (
	StyleNormal Style = iota
	StylePrompt
	StyleOutput
	StyleError
	StyleHint
)

// Backend defines the interface for terminal backends.
type Backend interface {
	// Init takes over the terminal: raw input, no echo, alternate screen.
	// Must be called before any other methods.
	Init() error

	// Shutdown restores the terminal to the state it had before Init.
	// Pending and future PollEvent calls return EventClosed.
	Shutdown()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// SetContent draws one character. Positions outside the terminal are ignored.
	SetContent(x, y int, r rune, style Style)

	// Clear clears the entire screen.
	Clear()

	// Show flushes pending drawing to the terminal.
	Show()

	// ShowCursor positions and displays the cursor.
	ShowCursor(x, y int)

	// HideCursor hides the cursor.
	HideCursor()

	// PollEvent waits for and returns the next terminal event.
	// This is a blocking call.
	PollEvent() Event

	// PostEvent posts a synthetic event to the event queue.
	PostEvent(event Event)
}
