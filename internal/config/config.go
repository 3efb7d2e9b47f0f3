// Package config holds the formatter settings read from passfmt.toml or
// passfmt.yaml. Every engine run receives a *Config value explicitly.
package config

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// IndentStyle selects how the indent_style pass rewrites leading whitespace.
type IndentStyle string

const (
	IndentSpaces   IndentStyle = "spaces"
	IndentTabs     IndentStyle = "tabs"
	IndentPreserve IndentStyle = "preserve"
)

func (s *IndentStyle) UnmarshalText(b []byte) error {
	v := IndentStyle(strings.ToLower(strings.TrimSpace(string(b))))
	switch v {
	case IndentSpaces, IndentTabs, IndentPreserve:
		*s = v
		return nil
	}
	return fmt.Errorf("invalid indent_style %q (expected: spaces|tabs|preserve)", string(b))
}

// Duration is a time.Duration written as "2s" or "500ms" in config files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Engine controls the fixed-point loop.
type Engine struct {
	MaxRounds    int      `toml:"max_rounds" yaml:"max_rounds"`
	Strict       bool     `toml:"strict" yaml:"strict"`
	ParseTimeout Duration `toml:"parse_timeout" yaml:"parse_timeout"`
}

// Style carries the options of the bundled passes.
type Style struct {
	IndentStyle           IndentStyle `toml:"indent_style" yaml:"indent_style"`
	TabWidth              int         `toml:"tab_width" yaml:"tab_width"`
	MaxBlankLines         int         `toml:"max_blank_lines" yaml:"max_blank_lines"`
	SpaceAfterOpenBrace   bool        `toml:"space_after_open_brace" yaml:"space_after_open_brace"`
	SpaceBeforeCloseBrace bool        `toml:"space_before_close_brace" yaml:"space_before_close_brace"`
}

// Passes lists passes switched off by name.
type Passes struct {
	Disable []string `toml:"disable" yaml:"disable"`
}

// Files filters what directory walks pick up. Patterns use path.Match
// syntax and are tried against both the slash-separated path relative to the
// walked root and the base name.
type Files struct {
	Exclude []string `toml:"exclude" yaml:"exclude"`
}

// Cache configures the on-disk result cache.
type Cache struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Dir     string `toml:"dir" yaml:"dir"`
}

// Config is the whole file.
type Config struct {
	Engine    Engine            `toml:"engine" yaml:"engine"`
	Style     Style             `toml:"style" yaml:"style"`
	Passes    Passes            `toml:"passes" yaml:"passes"`
	Languages map[string]string `toml:"languages" yaml:"languages"`
	Files     Files             `toml:"files" yaml:"files"`
	Cache     Cache             `toml:"cache" yaml:"cache"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

const (
	DefaultMaxRounds    = 10
	DefaultParseTimeout = 2 * time.Second
	DefaultTabWidth     = 4
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Engine: Engine{
			MaxRounds:    DefaultMaxRounds,
			ParseTimeout: Duration(DefaultParseTimeout),
		},
		Style: Style{
			IndentStyle:   IndentPreserve,
			TabWidth:      DefaultTabWidth,
			MaxBlankLines: 1,
		},
		Languages: map[string]string{},
		Cache:     Cache{Enabled: true},
	}
}

// Validate reports the first setting that is out of range.
func (c *Config) Validate() error {
	switch {
	case c.Engine.MaxRounds < 1:
		return fmt.Errorf("engine.max_rounds must be >= 1, got %d", c.Engine.MaxRounds)
	case c.Engine.ParseTimeout < 0:
		return fmt.Errorf("engine.parse_timeout must not be negative")
	case c.Style.TabWidth < 1 || c.Style.TabWidth > 16:
		return fmt.Errorf("style.tab_width must be in 1..16, got %d", c.Style.TabWidth)
	case c.Style.MaxBlankLines < 0:
		return fmt.Errorf("style.max_blank_lines must be >= 0, got %d", c.Style.MaxBlankLines)
	}
	switch c.Style.IndentStyle {
	case IndentSpaces, IndentTabs, IndentPreserve:
	case "":
		c.Style.IndentStyle = IndentPreserve
	default:
		return fmt.Errorf("style.indent_style %q is not supported", c.Style.IndentStyle)
	}
	for _, pat := range c.Files.Exclude {
		if _, err := path.Match(pat, ""); err != nil {
			return fmt.Errorf("files.exclude: bad pattern %q", pat)
		}
	}
	for ext, lang := range c.Languages {
		if strings.TrimSpace(ext) == "" || strings.TrimSpace(lang) == "" {
			return fmt.Errorf("languages: empty mapping %q = %q", ext, lang)
		}
	}
	return nil
}

// Disabled reports whether the named pass is switched off.
func (c *Config) Disabled(name string) bool {
	for _, d := range c.Passes.Disable {
		if d == name {
			return true
		}
	}
	return false
}
