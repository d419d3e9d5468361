package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix starts every environment variable tickcon reads.
const EnvPrefix = "TICKCON_"

// LookupFunc looks up an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(name string) (string, bool)

// envSetting binds one environment variable to a setting.
type envSetting struct {
	name string
	path string
	set  func(c *Config, v string) error
}

// envSettings returns the environment variables tickcon reads.
func envSettings() []envSetting {
	return []envSetting{
		{"TICKCON_PROMPT", "console.prompt", func(c *Config, v string) error {
			c.Console.Prompt = v
			return nil
		}},
		{"TICKCON_HINT", "console.hint", func(c *Config, v string) error {
			c.Console.Hint = v
			return nil
		}},
		{"TICKCON_TOGGLE_KEY", "console.toggle_key", func(c *Config, v string) error {
			c.Console.ToggleKey = v
			return nil
		}},
		{"TICKCON_START_ACTIVE", "console.start_active", boolSetting(func(c *Config) *bool { return &c.Console.StartActive })},
		{"TICKCON_KEYMAP", "keymap.file", func(c *Config, v string) error {
			c.Keymap.File = resolvePath("", v)
			return nil
		}},
		{"TICKCON_KEYMAP_WATCH", "keymap.watch", boolSetting(func(c *Config) *bool { return &c.Keymap.Watch })},
		{"TICKCON_LOG_LEVEL", "logging.level", func(c *Config, v string) error {
			c.Logging.Level = v
			return nil
		}},
		{"TICKCON_LOG_FILE", "logging.file", func(c *Config, v string) error {
			c.Logging.File = resolvePath("", v)
			return nil
		}},
		{"TICKCON_TICK_RATE", "loop.tick_rate", intSetting(func(c *Config) *int { return &c.Loop.TickRate })},
		{"TICKCON_SCRIPTS", "scripts.enabled", boolSetting(func(c *Config) *bool { return &c.Scripts.Enabled })},
		{"TICKCON_SCRIPTS_DIR", "scripts.dir", func(c *Config, v string) error {
			c.Scripts.Dir = resolvePath("", v)
			return nil
		}},
	}
}

// ApplyEnv overrides settings from the environment.
// Note: empty values are applied as empty strings, not treated as unset.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, s := range envSettings() {
		v, ok := lookup(s.name)
		if !ok {
			continue
		}
		if err := s.set(c, v); err != nil {
			return fmt.Errorf("%s (%s): %w", s.name, s.path, err)
		}
	}
	return nil
}

// EnvNames returns the names of the variables ApplyEnv reads.
func EnvNames() []string {
	settings := envSettings()
	names := make([]string, len(settings))
	for i, s := range settings {
		names[i] = s.name
	}
	return names
}

func boolSetting(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			*field(c) = true
		case "0", "false", "no", "off", "":
			*field(c) = false
		default:
			return fmt.Errorf("invalid boolean %q", v)
		}
		return nil
	}
}

func intSetting(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		*field(c) = n
		return nil
	}
}
