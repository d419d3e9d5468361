package keymap

// defaultBindings is the editing table every console starts with.
// Ctrl+C is deliberately absent: the terminal source turns it into an
// interrupt before it reaches the keymap.
var defaultBindings = []struct {
	Keys   string
	Action Kind
}{
	{Keys: "Enter", Action: Submit},
	{Keys: "Esc", Action: ClearBuffer},
	{Keys: "Left", Action: MoveLeft},
	{Keys: "Right", Action: MoveRight},
	{Keys: "Home", Action: MoveHome},
	{Keys: "End", Action: MoveEnd},
	{Keys: "Backspace", Action: Backspace},
	{Keys: "Delete", Action: DeleteForward},
}

// Default returns a keymap holding the default editing bindings.
func Default() *Keymap {
	km := New()
	for _, b := range defaultBindings {
		km.Bind(MustParseKeybind(b.Keys), Do(b.Action))
	}
	return km
}
