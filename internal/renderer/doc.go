// Package renderer shows the console.
//
// The console core only reports state through the Sink interface: the
// line being edited with its cursor column after every change, the
// outcome of every submitted line, and text printed by commands. What a
// sink does with it is up to the sink.
//
// Two sinks are provided. Prompt draws to a backend: output scrolls in
// the rows above a prompt row at the bottom of the terminal. Recorder
// keeps every call for inspection.
//
//	p := renderer.NewPrompt(renderer.DefaultPromptOptions())
//	p.Attach(b)
//	p.Redraw("say hi", renderer.Column("say hi"))
//	p.Render()
//
// Widths are measured in terminal cells per grapheme cluster, so wide
// and combining characters keep the cursor where the user expects it.
package renderer
