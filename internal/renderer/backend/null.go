package backend

import "sync"

// NullBackend is an in-memory backend for testing.
type NullBackend struct {
	mu            sync.Mutex
	width, height int
	cells         [][]rune
	styles        [][]Style
	cursorX       int
	cursorY       int
	cursorVisible bool
	initCount     int
	shutdownCount int
	shows         int
	closed        bool
	events        chan Event
	done          chan struct{}
	initErr       error
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  width,
		height: height,
		events: make(chan Event, 100),
		done:   make(chan struct{}),
	}
}

// FailInit makes the next Init calls return err.
func (b *NullBackend) FailInit(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initErr = err
}

func (b *NullBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initErr != nil {
		return b.initErr
	}
	b.initCount++
	b.allocate()
	return nil
}

func (b *NullBackend) allocate() {
	b.cells = make([][]rune, b.height)
	b.styles = make([][]Style, b.height)
	for y := range b.cells {
		b.cells[y] = make([]rune, b.width)
		b.styles[y] = make([]Style, b.width)
		for x := range b.cells[y] {
			b.cells[y][x] = ' '
		}
	}
}

func (b *NullBackend) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.shutdownCount++
	if !b.closed {
		b.closed = true
		close(b.done)
	}
}

func (b *NullBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *NullBackend) SetContent(x, y int, r rune, style Style) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if x >= 0 && x < b.width && y >= 0 && y < len(b.cells) {
		b.cells[y][x] = r
		b.styles[y][x] = style
	}
}

func (b *NullBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allocate()
}

func (b *NullBackend) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shows++
}

func (b *NullBackend) ShowCursor(x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorX, b.cursorY, b.cursorVisible = x, y, true
}

func (b *NullBackend) HideCursor() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorVisible = false
}

func (b *NullBackend) PollEvent() Event {
	select {
	case ev := <-b.events:
		return ev
	case <-b.done:
		return Event{Type: EventClosed}
	}
}

func (b *NullBackend) PostEvent(event Event) {
	select {
	case b.events <- event:
	default:
		// Event dropped if queue is full (non-blocking for testing)
	}
}

// Row returns the characters on row y, trailing spaces included.
func (b *NullBackend) Row(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if y < 0 || y >= len(b.cells) {
		return ""
	}
	return string(b.cells[y])
}

// StyleAt returns the style of the cell at (x, y).
func (b *NullBackend) StyleAt(x, y int) Style {
	b.mu.Lock()
	defer b.mu.Unlock()

	if y < 0 || y >= len(b.styles) || x < 0 || x >= b.width {
		return StyleNormal
	}
	return b.styles[y][x]
}

// CursorPosition returns the current cursor position for testing.
func (b *NullBackend) CursorPosition() (x, y int, visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursorX, b.cursorY, b.cursorVisible
}

// Counts returns how many times Init, Shutdown and Show were called.
func (b *NullBackend) Counts() (inits, shutdowns, shows int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initCount, b.shutdownCount, b.shows
}

// Resize simulates a terminal resize and queues the resize event.
func (b *NullBackend) Resize(width, height int) {
	b.mu.Lock()
	b.width, b.height = width, height
	b.allocate()
	b.mu.Unlock()

	b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}
