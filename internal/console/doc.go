// Package console embeds a command prompt in a host's fixed-rate loop.
//
// The host calls Tick once per frame. Each tick the console drains the
// keys that arrived since the previous tick, edits the prompt line, and
// resolves and dispatches every line submitted during the tick, in
// order, before returning. Nothing in a tick waits for input.
//
// # States
//
//	Inactive ──Activate──▶ Capturing ──Submit──▶ Dispatching
//	    ▲                     │  ▲                    │
//	    └─────Deactivate──────┘  └────────────────────┘
//
// While Capturing the console consumes every key; while Inactive keys go
// to the host's passthrough function instead. Activate, Deactivate and
// the toggle key take effect at the start of the next tick, never in the
// middle of one.
//
// Start puts the terminal in raw mode through a Session, normally a
// terminal.Guard, and Stop restores it. A console whose Session cannot
// start stays Inactive and the host keeps running without it.
package console
