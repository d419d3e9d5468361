package config

import (
	"strings"
	"testing"
)

func lookupMap(m map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupMap(map[string]string{
		"TICKCON_PROMPT":       "# ",
		"TICKCON_TICK_RATE":    "120",
		"TICKCON_LOG_LEVEL":    "debug",
		"TICKCON_KEYMAP_WATCH": "yes",
		"TICKCON_SCRIPTS":      "off",
		"TICKCON_HINT":         "",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Console.Prompt != "# " {
		t.Errorf("prompt = %q", cfg.Console.Prompt)
	}
	if cfg.Loop.TickRate != 120 {
		t.Errorf("tick rate = %d", cfg.Loop.TickRate)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if !cfg.Keymap.Watch || cfg.Scripts.Enabled {
		t.Errorf("watch = %v, scripts = %v", cfg.Keymap.Watch, cfg.Scripts.Enabled)
	}
	if cfg.Console.Hint != "" {
		t.Errorf("empty value should clear the hint, got %q", cfg.Console.Hint)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	tests := map[string]string{
		"TICKCON_TICK_RATE":    "fast",
		"TICKCON_START_ACTIVE": "maybe",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			err := Default().ApplyEnv(lookupMap(map[string]string{name: value}))
			if err == nil || !strings.Contains(err.Error(), name) {
				t.Errorf("err = %v, want it to name %s", err, name)
			}
		})
	}
}

func TestEnvNames(t *testing.T) {
	for _, n := range EnvNames() {
		if !strings.HasPrefix(n, EnvPrefix) {
			t.Errorf("%s lacks the %s prefix", n, EnvPrefix)
		}
	}
}
