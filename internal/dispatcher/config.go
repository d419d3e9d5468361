package dispatcher

import "github.com/dshills/tickcon/internal/logging"

// Config holds dispatcher configuration options.
type Config struct {
	// EnableMetrics enables dispatch timing and statistics collection.
	EnableMetrics bool

	// RecoverFromPanic turns handler panics into HandlerFailed outcomes.
	RecoverFromPanic bool

	// PanicStackSize is how many bytes of stack are logged for a panic.
	PanicStackSize int

	// Logger receives dispatch diagnostics. Nil discards them.
	Logger *logging.Logger
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableMetrics:    true,
		RecoverFromPanic: true,
		PanicStackSize:   4096,
	}
}

// WithMetrics returns a copy of the config with metrics set.
func (c Config) WithMetrics(enabled bool) Config {
	c.EnableMetrics = enabled
	return c
}

// WithPanicRecovery returns a copy of the config with panic recovery set.
func (c Config) WithPanicRecovery(recover bool) Config {
	c.RecoverFromPanic = recover
	return c
}

// WithLogger returns a copy of the config with the logger set.
func (c Config) WithLogger(l *logging.Logger) Config {
	c.Logger = l
	return c
}
