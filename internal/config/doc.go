// Package config loads tickcon's settings.
//
// Settings come from three layers, each overriding the one before:
// built-in defaults, a TOML file, and TICKCON_* environment variables.
// Command-line flags are applied on top by the caller.
//
//	[console]
//	prompt = "> "
//	toggle_key = "`"
//
//	[keymap]
//	file = "~/.config/tickcon/keys.toml"
//	watch = true
//
//	[logging]
//	level = "debug"
//	file = "/tmp/tickcon.log"
//
// A Watcher reports changes to a file, such as the keymap file, so they
// can be applied while the program runs.
package config
