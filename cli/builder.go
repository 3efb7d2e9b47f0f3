// Package cli builds passfmt-style command line tools around a pass
// pipeline. The passfmt binary is Default; other tools register their own
// passes over their own settings type and get the same fmt, check, init,
// languages, cache and version commands:
//
//	cli.New(func(cfg *cli.Config) Settings { return Settings{Width: cfg.Style.TabWidth} }).
//		AddPass(alignPass{}).
//		AddPass(wrapPass{}).
//		Run()
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"passfmt/internal/config"
	"passfmt/internal/driver"
	"passfmt/internal/edit"
	"passfmt/internal/pass"
	"passfmt/internal/pass/builtin"
	"passfmt/internal/pipeline"
	"passfmt/internal/syntax"
)

type (
	// Pass proposes edits for one round; C is the settings type of the tool.
	Pass[C any] = pass.Pass[C]
	// Context is what a pass sees during one round.
	Context[C any] = pass.Context[C]
	// Pipeline is an ordered set of passes.
	Pipeline[C any] = pipeline.Pipeline[C]

	Edit     = edit.Edit
	Config   = config.Config
	Style    = config.Style
	Registry = syntax.Registry
	Language = syntax.Language
)

// ErrNoPasses is returned when a tool is run without any pass.
var ErrNoPasses = errors.New("no passes registered")

// NewPipeline builds a pipeline; it fails on duplicate pass names.
func NewPipeline[C any](passes ...Pass[C]) (*Pipeline[C], error) {
	return pipeline.New(passes...)
}

// PassFunc adapts fn to a Pass called name.
func PassFunc[C any](name string, fn func(ctx *Context[C]) ([]Edit, error)) Pass[C] {
	return pass.NewFunc(name, fn)
}

// Replace builds an edit swapping text[start:end] for text.
func Replace(start, end int, text string) Edit { return edit.Replace(start, end, text) }

// Insert builds an edit adding text at byte offset at.
func Insert(at int, text string) Edit { return edit.Insert(at, text) }

// Delete builds an edit removing text[start:end].
func Delete(start, end int) Edit { return edit.Delete(start, end) }

// Builder assembles a command line tool. Methods record the first error
// and return the builder so calls chain; Run reports it.
type Builder[C any] struct {
	name     string
	short    string
	pipeline *pipeline.Pipeline[C]
	registry *syntax.Registry
	settings func(*config.Config) C
	err      error
}

// New starts a tool whose passes receive settings(cfg) for the loaded
// config file. A nil settings hands every pass the zero C.
func New[C any](settings func(*Config) C) *Builder[C] {
	if settings == nil {
		settings = func(*config.Config) C {
			var zero C
			return zero
		}
	}
	return &Builder[C]{
		name:     "passfmt",
		short:    "Pass-based source formatter for many languages",
		pipeline: &pipeline.Pipeline[C]{},
		settings: settings,
	}
}

// Default is the passfmt tool: the bundled passes over the style section.
func Default() *Builder[*Style] {
	return New(driver.StyleOf).AddPass(builtin.Default()...)
}

// Named sets the command name and its one-line description.
func (b *Builder[C]) Named(name, short string) *Builder[C] {
	b.name, b.short = name, short
	return b
}

// AddPass appends passes after the ones already registered.
func (b *Builder[C]) AddPass(passes ...Pass[C]) *Builder[C] {
	if b.err == nil {
		b.err = b.pipeline.Add(passes...)
	}
	return b
}

// WithPipeline replaces every registered pass with a copy of p. Later
// AddPass calls extend the copy, not p.
func (b *Builder[C]) WithPipeline(p *Pipeline[C]) *Builder[C] {
	if p == nil {
		b.pipeline = &pipeline.Pipeline[C]{}
		return b
	}
	b.pipeline = p.Without()
	return b
}

// WithRegistry replaces the bundled languages. The config file's
// languages table is still layered on top.
func (b *Builder[C]) WithRegistry(r *Registry) *Builder[C] {
	b.registry = r
	return b
}

// Passes lists the registered pass names in order.
func (b *Builder[C]) Passes() []string { return b.pipeline.Names() }

// Run executes the tool with the process arguments and exit code.
func (b *Builder[C]) Run() {
	os.Exit(b.Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Execute runs the tool against args and returns the exit status: 0 on
// success, 1 when a file failed, needs formatting or the tool is misbuilt.
func (b *Builder[C]) Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a, err := b.build()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", b.name, err)
		return 1
	}
	return a.run(args, stdin, stdout, stderr)
}

func (b *Builder[C]) build() (*app, error) {
	switch {
	case b.err != nil:
		return nil, b.err
	case b.pipeline.Len() == 0:
		return nil, ErrNoPasses
	}
	return &app{
		name:      b.name,
		short:     b.short,
		registry:  b.registry,
		passes:    driver.Pipeline(b.pipeline.Without(), b.settings),
		passNames: b.pipeline.Names(),
	}, nil
}

// app is a built tool: what the commands need, without the settings type.
type app struct {
	name, short string
	// registry is nil for the bundled languages.
	registry  *syntax.Registry
	passes    driver.Passes
	passNames []string
}

func (a *app) languages() *syntax.Registry {
	if a.registry != nil {
		return a.registry
	}
	return syntax.DefaultRegistry()
}
