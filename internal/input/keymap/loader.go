package keymap

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a keymap file encoding.
type Format string

// Supported keymap file formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("keymap: unsupported file extension %q", filepath.Ext(path))
	}
}

// keymapConfig is the on-disk structure for keymap files.
type keymapConfig struct {
	// Defaults starts from the default editing bindings when true.
	Defaults *bool `toml:"defaults" yaml:"defaults"`

	AllowShiftInsert *bool `toml:"allow_shift_insert" yaml:"allow_shift_insert"`

	Bind []bindingConfig `toml:"bind" yaml:"bind"`

	Unbind []string `toml:"unbind" yaml:"unbind"`
}

type bindingConfig struct {
	Keys   string `toml:"keys" yaml:"keys"`
	Action string `toml:"action" yaml:"action"`
}

// LoadError describes a problem with one entry of a keymap file.
type LoadError struct {
	Source string
	Index  int
	Keys   string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("keymap %s: bind[%d] (%s): %v", e.Source, e.Index, e.Keys, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader builds keymaps from configuration files.
type Loader struct {
	// OnReplace is called when a file binds a key that was already bound.
	OnReplace func(kb Keybind, prev, next Action)
}

// NewLoader creates a new keymap loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFile loads a keymap from a TOML or YAML file.
func (l *Loader) LoadFile(path string) (*Keymap, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening keymap file: %w", err)
	}
	defer f.Close()

	return l.load(f, format, filepath.Base(path))
}

// LoadReader loads a keymap from a reader in the given format.
func (l *Loader) LoadReader(r io.Reader, format Format) (*Keymap, error) {
	return l.load(r, format, string(format))
}

func (l *Loader) load(r io.Reader, format Format, source string) (*Keymap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading keymap: %w", err)
	}

	var cfg keymapConfig
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		if err == io.EOF {
			err = nil
		}
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding keymap %s: %w", source, err)
	}

	return l.build(cfg, source)
}

func (l *Loader) build(cfg keymapConfig, source string) (*Keymap, error) {
	km := New()
	if cfg.Defaults == nil || *cfg.Defaults {
		km = Default()
	}
	if cfg.AllowShiftInsert != nil {
		km.AllowShiftInsert = *cfg.AllowShiftInsert
	}

	for _, spec := range cfg.Unbind {
		kb, err := ParseKeybind(spec)
		if err != nil {
			return nil, fmt.Errorf("keymap %s: unbind %q: %w", source, spec, err)
		}
		km.Unbind(kb)
	}

	for i, bc := range cfg.Bind {
		kb, err := ParseKeybind(bc.Keys)
		if err != nil {
			return nil, &LoadError{Source: source, Index: i, Keys: bc.Keys, Err: err}
		}
		action, err := ParseAction(bc.Action)
		if err != nil {
			return nil, &LoadError{Source: source, Index: i, Keys: bc.Keys, Err: err}
		}
		if prev, replaced := km.Bind(kb, action); replaced && l.OnReplace != nil {
			l.OnReplace(kb, prev, action)
		}
	}

	return km, nil
}
