// Package key defines the raw keyboard vocabulary of the console.
//
// An Event is what the terminal layer reports for one key press: a
// symbolic Key, the character for KeyRune presses, and the set of
// modifiers the terminal was able to detect. Events are immutable values
// and compare with Equals, which ignores the timestamp.
//
// # Key Specifications
//
// Keymap files and the toggle-key setting name keys with short specs:
//
//   - Single characters: "a", "`", "1"
//   - Named keys: "Enter", "Esc", "Backspace", "Home", "F2"
//   - With modifiers: "Ctrl+U", "Alt+Left", "Shift+Home"
//   - Bracketed: "<C-u>", "<A-b>", "<CR>"
//
// Uppercase letters carry an implicit Shift, matching what terminals
// report for a shifted letter.
package key
