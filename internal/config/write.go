package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrExists is returned by WriteDefault when the target already exists.
var ErrExists = errors.New("config file already exists")

// Encode renders cfg in the format implied by the extension of name.
func Encode(name string, cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if isTOML(name) {
		enc := toml.NewEncoder(&buf)
		enc.Indent = ""
		if err := enc.Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDefault creates path with the default settings. Parent directories are
// created as needed; an existing file is never overwritten.
func WriteDefault(path string) error {
	if err := CheckExtension(path); err != nil {
		return err
	}
	data, err := Encode(path, Default())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// Fingerprint hashes the settings that influence formatted output. Cache and
// path settings are left out so moving the cache does not invalidate it.
func (c *Config) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "engine:%d:%t\n", c.Engine.MaxRounds, c.Engine.Strict)
	fmt.Fprintf(h, "style:%s:%d:%d:%t:%t\n", c.Style.IndentStyle, c.Style.TabWidth,
		c.Style.MaxBlankLines, c.Style.SpaceAfterOpenBrace, c.Style.SpaceBeforeCloseBrace)

	disabled := append([]string(nil), c.Passes.Disable...)
	sort.Strings(disabled)
	for _, name := range disabled {
		fmt.Fprintf(h, "disable:%s\n", name)
	}

	exts := make([]string, 0, len(c.Languages))
	for ext := range c.Languages {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		fmt.Fprintf(h, "lang:%s=%s\n", ext, c.Languages[ext])
	}
	return hex.EncodeToString(h.Sum(nil))
}
