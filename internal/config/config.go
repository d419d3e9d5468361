package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/tickcon/internal/input/key"
	"github.com/dshills/tickcon/internal/logging"
)

// Config holds every tickcon setting.
type Config struct {
	Console ConsoleConfig `toml:"console"`
	Keymap  KeymapConfig  `toml:"keymap"`
	Logging LoggingConfig `toml:"logging"`
	Loop    LoopConfig    `toml:"loop"`
	Scripts ScriptsConfig `toml:"scripts"`
}

// ConsoleConfig configures the prompt.
type ConsoleConfig struct {
	Prompt      string `toml:"prompt"`
	Hint        string `toml:"hint"`
	ToggleKey   string `toml:"toggle_key"`
	StartActive bool   `toml:"start_active"`
	Scrollback  int    `toml:"scrollback"`
}

// KeymapConfig configures key bindings.
type KeymapConfig struct {
	// File is a TOML or YAML keymap merged over the defaults.
	File string `toml:"file"`
	// Watch reloads File when it changes.
	Watch bool `toml:"watch"`
	// AllowShiftInsert lets Shift-only characters fall back to insertion.
	AllowShiftInsert bool `toml:"allow_shift_insert"`
}

// LoggingConfig configures the log file. With no file, logs are discarded.
type LoggingConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// LoopConfig configures the host loop.
type LoopConfig struct {
	// TickRate is the number of ticks per second.
	TickRate int `toml:"tick_rate"`
}

// ScriptsConfig configures Lua script commands.
type ScriptsConfig struct {
	Enabled   bool   `toml:"enabled"`
	Dir       string `toml:"dir"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Console: ConsoleConfig{
			Prompt:      "> ",
			Hint:        "` toggles, help lists commands",
			ToggleKey:   "`",
			StartActive: true,
			Scrollback:  1000,
		},
		Keymap: KeymapConfig{
			AllowShiftInsert: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Loop: LoopConfig{
			TickRate: 60,
		},
		Scripts: ScriptsConfig{
			Enabled:   true,
			TimeoutMS: 1000,
		},
	}
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tickcon", "config.toml")
}

// Load builds the configuration from defaults, the file at path and the
// environment. A missing file is an error only when required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	if path != "" {
		err := cfg.LoadFile(path)
		switch {
		case errors.Is(err, ErrFileNotFound) && !required:
		case err != nil:
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges a TOML file into c. Unknown keys are errors.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	defer f.Close()

	if err := c.decode(f, path); err != nil {
		return err
	}
	c.resolvePaths(filepath.Dir(path))
	return nil
}

// LoadReader merges TOML from r into c.
func (c *Config) LoadReader(r io.Reader) error {
	return c.decode(r, "<reader>")
}

func (c *Config) decode(r io.Reader, source string) error {
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		return pe
	}
	return nil
}

// resolvePaths makes file settings relative to the config file's
// directory and expands a leading ~.
func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Keymap.File, &c.Logging.File, &c.Scripts.Dir} {
		*p = resolvePath(base, *p)
	}
}

func resolvePath(base, p string) string {
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if !filepath.IsAbs(p) && base != "" {
		p = filepath.Join(base, p)
	}
	return p
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var problems []string
	if c.Loop.TickRate < 1 || c.Loop.TickRate > 1000 {
		problems = append(problems, fmt.Sprintf("loop.tick_rate must be between 1 and 1000, got %d", c.Loop.TickRate))
	}
	if c.Console.Scrollback < 1 {
		problems = append(problems, fmt.Sprintf("console.scrollback must be positive, got %d", c.Console.Scrollback))
	}
	if c.Console.ToggleKey != "" {
		if _, err := key.Parse(c.Console.ToggleKey); err != nil {
			problems = append(problems, fmt.Sprintf("console.toggle_key: %v", err))
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	if c.Scripts.TimeoutMS < 0 {
		problems = append(problems, "scripts.timeout_ms must not be negative")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// TickInterval returns the duration of one tick.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Loop.TickRate)
}

// ScriptTimeout returns the limit for one script call.
func (c *Config) ScriptTimeout() time.Duration {
	return time.Duration(c.Scripts.TimeoutMS) * time.Millisecond
}

// LogFile returns the logging settings in the form logging.Open takes.
func (c *Config) LogFile() logging.FileConfig {
	return logging.FileConfig{
		Path:       c.Logging.File,
		Level:      logging.ParseLevel(c.Logging.Level),
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAgeDays: c.Logging.MaxAgeDays,
		Compress:   c.Logging.Compress,
	}
}
