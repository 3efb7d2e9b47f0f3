package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"passfmt/internal/diag"
	"passfmt/internal/source"
)

// FileNames is the discovery order inside one directory.
var FileNames = []string{
	"passfmt.toml",
	".passfmt.toml",
	"passfmt.yml",
	"passfmt.yaml",
	".passfmt.yml",
	".passfmt.yaml",
}

// ErrUnsupportedExtension is returned for config paths that are neither TOML nor YAML.
var ErrUnsupportedExtension = errors.New("unsupported config extension")

// Discover looks for a config file in dir and then in each parent directory.
// It returns an empty string when none is found.
func Discover(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if st, err := os.Stat(path); err == nil && !st.IsDir() {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load reads the config at path, or discovers one from the working directory
// when path is empty. Missing keys keep their defaults. Unknown TOML keys come
// back as warnings; YAML rejects them outright.
func Load(path string) (*Config, []diag.Diagnostic, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, fmt.Errorf("getting working directory: %w", err)
		}
		path = Discover(wd)
	}
	if path == "" {
		return Default(), nil, nil
	}
	if err := CheckExtension(path); err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg, warnings, err := Parse(path, data)
	if err != nil {
		return nil, nil, err
	}
	cfg.Path = path
	return cfg, warnings, nil
}

// Parse decodes data over the defaults; the format is chosen by the
// extension of name.
func Parse(name string, data []byte) (*Config, []diag.Diagnostic, error) {
	cfg := Default()
	var warnings []diag.Diagnostic

	if isTOML(name) {
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: failed to parse TOML: %w", name, err)
		}
		for _, key := range meta.Undecoded() {
			d := diag.New(diag.SevWarning, diag.CfgUnknownKey, source.Span{},
				fmt.Sprintf("%s: unknown key %q", name, key.String()))
			warnings = append(warnings, d)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%s: failed to parse YAML: %w", name, err)
		}
	}

	if cfg.Languages == nil {
		cfg.Languages = map[string]string{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, warnings, nil
}

// CheckExtension accepts .toml, .yml and .yaml paths.
func CheckExtension(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".yml", ".yaml":
		return nil
	}
	return fmt.Errorf("%w: %s (expected .toml, .yml or .yaml)", ErrUnsupportedExtension, path)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
