package renderer

import (
	"sync"

	"github.com/dshills/tickcon/internal/dispatcher"
	"github.com/dshills/tickcon/internal/renderer/backend"
)

// PromptOptions configures a Prompt.
type PromptOptions struct {
	// Symbol is drawn before the line being edited.
	Symbol string

	// Hint is drawn right-aligned on the prompt row when it fits.
	Hint string

	// Scrollback is the number of output lines kept.
	Scrollback int
}

// DefaultPromptOptions returns the default prompt configuration.
func DefaultPromptOptions() PromptOptions {
	return PromptOptions{
		Symbol:     "> ",
		Scrollback: 1000,
	}
}

// Prompt is a Sink that draws a prompt row at the bottom of a terminal
// with output scrolling above it.
//
// Sink calls only record state; Render draws it. Print may be called
// from any goroutine.
type Prompt struct {
	mu sync.Mutex

	backend backend.Backend
	opts    PromptOptions
	output  *Scrollback

	buffer string
	column int
	dirty  bool
}

// NewPrompt creates a prompt with no backend attached.
func NewPrompt(opts PromptOptions) *Prompt {
	return &Prompt{
		opts:   opts,
		output: NewScrollback(opts.Scrollback),
		dirty:  true,
	}
}

// Attach starts drawing to b. The console attaches the backend the
// terminal guard opened and detaches it before the guard restores the
// terminal.
func (p *Prompt) Attach(b backend.Backend) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.backend = b
	p.dirty = true
}

// Detach stops drawing. Output keeps accumulating.
func (p *Prompt) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.backend = nil
}

// SetHint replaces the hint text.
func (p *Prompt) SetHint(hint string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts.Hint = hint
	p.dirty = true
}

// Redraw implements Sink.
func (p *Prompt) Redraw(buffer string, column int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffer = buffer
	p.column = column
	p.dirty = true
}

// Outcome implements Sink. Failures are drawn in the error style.
func (p *Prompt) Outcome(out dispatcher.Outcome) {
	msg := out.Message()
	if msg == "" {
		return
	}
	style := backend.StyleOutput
	if out.IsFailure() {
		style = backend.StyleError
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output.Add(msg, style)
	p.dirty = true
}

// Print implements Sink.
func (p *Prompt) Print(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output.Add(text, backend.StyleOutput)
	p.dirty = true
}

// Echo implements Echoer.
func (p *Prompt) Echo(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output.Add(p.opts.Symbol+line, backend.StylePrompt)
	p.dirty = true
}

// ClearOutput implements Clearer.
func (p *Prompt) ClearOutput() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output.Clear()
	p.dirty = true
}

// Output returns up to n of the newest output lines.
func (p *Prompt) Output(n int) []Line {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.output.Tail(n)
}

// Invalidate forces the next Render to draw, after a resize for example.
func (p *Prompt) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = true
}

// Render draws the prompt if anything changed since the last call.
func (p *Prompt) Render() {
	p.mu.Lock()
	defer p.mu.Unlock()

	b := p.backend
	if b == nil || !p.dirty {
		return
	}
	p.dirty = false

	width, height := b.Size()
	if width <= 0 || height <= 0 {
		return
	}
	b.Clear()

	row := height - 1
	p.renderOutput(b, width, row)
	p.renderPrompt(b, width, row)
	b.Show()
}

// renderOutput fills the rows above the prompt with the newest output,
// wrapped to the terminal width.
func (p *Prompt) renderOutput(b backend.Backend, width, rows int) {
	if rows <= 0 {
		return
	}
	var wrapped []Line
	lines := p.output.Tail(rows)
	for i := len(lines) - 1; i >= 0 && len(wrapped) < rows; i-- {
		parts := Wrap(lines[i].Text, width)
		for j := len(parts) - 1; j >= 0 && len(wrapped) < rows; j-- {
			wrapped = append(wrapped, Line{Text: parts[j], Style: lines[i].Style})
		}
	}
	for i, l := range wrapped {
		drawText(b, 0, rows-1-i, width, l.Text, l.Style)
	}
}

// renderPrompt draws the symbol, the visible part of the buffer and the
// hint, then places the cursor.
func (p *Prompt) renderPrompt(b backend.Backend, width, row int) {
	x := drawText(b, 0, row, width, p.opts.Symbol, backend.StylePrompt)
	avail := width - x
	if avail <= 0 {
		b.HideCursor()
		return
	}

	// Scroll the buffer horizontally so the cursor stays visible.
	clusters := Clusters(p.buffer)
	skip := 0
	for col := p.column; col >= avail && skip < len(clusters); skip++ {
		col -= clusters[skip].Width
	}
	offset := 0
	for _, c := range clusters[:skip] {
		offset += c.Width
	}

	end := x
	for _, c := range clusters[skip:] {
		if end+c.Width > width {
			break
		}
		b.SetContent(end, row, c.Runes[0], backend.StyleNormal)
		end += c.Width
	}

	if hint := p.opts.Hint; hint != "" {
		hw := Column(hint)
		if start := width - hw; start > end+1 {
			drawText(b, start, row, width, hint, backend.StyleHint)
		}
	}

	b.ShowCursor(x+p.column-offset, row)
}

// drawText draws s starting at x and returns the column after it.
func drawText(b backend.Backend, x, y, width int, s string, style backend.Style) int {
	for _, c := range Clusters(s) {
		if x+c.Width > width {
			break
		}
		b.SetContent(x, y, c.Runes[0], style)
		x += c.Width
	}
	return x
}
