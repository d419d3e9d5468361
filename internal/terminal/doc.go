// Package terminal owns the console's terminal session.
//
// Guard brackets the session: Activate probes the input for a TTY and
// puts the terminal into raw mode through a backend, and Deactivate
// restores it. Both are idempotent. Once a session is active, every exit
// path is covered: interrupt and termination signals, a panic unwinding
// through a deferred Recover, and a graceful Close.
//
// Source turns the backend's blocking event stream into a non-blocking
// poll. A goroutine waits on the backend and queues converted key events;
// the host's tick drains the queue with Poll and never waits. Ctrl+C is
// intercepted there and reported as an interrupt rather than as a key.
package terminal
