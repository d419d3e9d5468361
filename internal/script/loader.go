package script

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestName is the optional file in a scripts directory that selects
// and orders the scripts to load.
const ManifestName = "scripts.yaml"

// Manifest lists the scripts of a directory.
//
//	scripts:
//	  - file: greet.lua
//	  - file: debug.lua
//	    enabled: false
type Manifest struct {
	Scripts []ManifestEntry `yaml:"scripts"`
}

// ManifestEntry is one script in a manifest.
type ManifestEntry struct {
	File    string `yaml:"file"`
	Enabled *bool  `yaml:"enabled"`
}

// ReadManifest parses a manifest file.
func ReadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m Manifest
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i, s := range m.Scripts {
		if s.File == "" {
			return nil, fmt.Errorf("%s: script %d has no file", path, i+1)
		}
		if filepath.IsAbs(s.File) || strings.Contains(filepath.ToSlash(s.File), "../") {
			return nil, fmt.Errorf("%s: script %q must be inside the directory", path, s.File)
		}
	}
	return &m, nil
}

// Files returns the scripts to load from dir, in load order. With a
// manifest it lists the enabled entries; otherwise every *.lua file
// sorted by name. A missing directory yields no files.
func Files(dir string) ([]string, error) {
	m, err := ReadManifest(filepath.Join(dir, ManifestName))
	switch {
	case err == nil:
		var files []string
		for _, s := range m.Scripts {
			if s.Enabled == nil || *s.Enabled {
				files = append(files, filepath.Join(dir, s.File))
			}
		}
		return files, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		if !ent.IsDir() && filepath.Ext(ent.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, ent.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadDir loads the scripts of dir. A script that fails to load is
// skipped; its error is included in the joined error returned alongside
// the commands that did load.
func (e *Engine) LoadDir(dir string) ([]Definition, error) {
	files, err := Files(dir)
	if err != nil {
		return nil, err
	}
	var (
		defs []Definition
		errs []error
	)
	for _, f := range files {
		d, err := e.LoadFile(f)
		if err != nil {
			e.logger.Warn("%v", err)
			errs = append(errs, err)
			continue
		}
		defs = append(defs, d...)
	}
	return defs, errors.Join(errs...)
}
