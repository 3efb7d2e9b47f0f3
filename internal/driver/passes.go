package driver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"passfmt/internal/config"
	"passfmt/internal/engine"
	"passfmt/internal/pass/builtin"
	"passfmt/internal/pipeline"
	"passfmt/internal/syntax"
)

// Runner formats one text with settings fixed for the whole invocation.
type Runner interface {
	Format(ctx context.Context, text, language string) (*engine.Result, error)
	// Passes lists the passes that run, in registration order.
	Passes() []string
}

// Passes turns a loaded config into the Runner of one invocation. It is the
// seam between the driver, which only knows *config.Config, and pipelines
// over any settings type.
type Passes func(cfg *config.Config, registry *syntax.Registry, opts engine.Options) (Runner, error)

// Pipeline binds p to the settings that settings derives from each loaded
// config. Names in cfg.Passes.Disable must belong to p.
func Pipeline[C any](p *pipeline.Pipeline[C], settings func(*config.Config) C) Passes {
	return func(cfg *config.Config, registry *syntax.Registry, opts engine.Options) (Runner, error) {
		known := p.Names()
		for _, name := range cfg.Passes.Disable {
			if !slices.Contains(known, name) {
				return nil, fmt.Errorf("passes.disable: %w %q", ErrUnknownPass, name)
			}
		}
		enabled := p.Without(cfg.Passes.Disable...)
		return &boundEngine[C]{
			engine:   engine.New(registry, enabled, opts),
			settings: settings(cfg),
			names:    enabled.Names(),
		}, nil
	}
}

// DefaultPasses runs the bundled passes with the config's style section.
func DefaultPasses() (Passes, error) {
	p, err := pipeline.New(builtin.Default()...)
	if err != nil {
		return nil, err
	}
	return Pipeline(p, StyleOf), nil
}

// StyleOf hands passes the style section of cfg.
func StyleOf(cfg *config.Config) *config.Style { return &cfg.Style }

type boundEngine[C any] struct {
	engine   *engine.Engine[C]
	settings C
	names    []string
}

func (b *boundEngine[C]) Format(ctx context.Context, text, language string) (*engine.Result, error) {
	return b.engine.Format(ctx, text, language, b.settings)
}

func (b *boundEngine[C]) Passes() []string { return b.names }

// passesFingerprint keys cached results to the pass set as well as the config.
func passesFingerprint(cfg *config.Config, r Runner) string {
	return cfg.Fingerprint() + "|" + strings.Join(r.Passes(), ",")
}
