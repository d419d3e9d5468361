// Package keymap translates raw key events into line-editing actions.
//
// A Keymap is a table from exact Keybind (key, rune, modifiers) to Action.
// Resolution is a single exact lookup; when nothing is bound, a printable
// character typed without modifiers becomes InsertChar, and everything
// else becomes NoOp. Modifier matching is exact, so Ctrl+Left is not
// Left. With AllowShiftInsert set, a character typed with Shift alone
// also inserts, since most terminals report shifted punctuation that way.
//
// # Usage
//
//	km := keymap.Default()
//	km.Bind(keymap.MustParseKeybind("Ctrl+U"), keymap.Do(keymap.ClearBuffer))
//
//	action := km.Resolve(ev)
//
// Keymaps may also be loaded from TOML or YAML files:
//
//	defaults = true
//
//	[[bind]]
//	keys = "Ctrl+U"
//	action = "clear"
package keymap
