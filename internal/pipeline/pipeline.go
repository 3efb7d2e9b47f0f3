// Package pipeline runs an ordered set of passes over one round's tree.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"passfmt/internal/diag"
	"passfmt/internal/edit"
	"passfmt/internal/pass"
	"passfmt/internal/source"
	"passfmt/internal/syntax"
	"passfmt/internal/trace"
)

// ErrDuplicatePass is returned by Add for a name already registered.
var ErrDuplicatePass = errors.New("duplicate pass")

// Pipeline is an ordered list of passes sharing one configuration type.
// Registration order decides Edit.Order and therefore tie-breaking.
type Pipeline[C any] struct {
	passes []pass.Pass[C]
}

// New builds a pipeline from passes; it fails on duplicate names.
func New[C any](passes ...pass.Pass[C]) (*Pipeline[C], error) {
	p := &Pipeline[C]{}
	if err := p.Add(passes...); err != nil {
		return nil, err
	}
	return p, nil
}

// Add appends passes in order.
func (p *Pipeline[C]) Add(passes ...pass.Pass[C]) error {
	for _, ps := range passes {
		for _, have := range p.passes {
			if have.Name() == ps.Name() {
				return fmt.Errorf("%w: %s", ErrDuplicatePass, ps.Name())
			}
		}
		p.passes = append(p.passes, ps)
	}
	return nil
}

func (p *Pipeline[C]) Len() int { return len(p.passes) }

// Names lists pass names in registration order.
func (p *Pipeline[C]) Names() []string {
	names := make([]string, len(p.passes))
	for i, ps := range p.passes {
		names[i] = ps.Name()
	}
	return names
}

// Without returns a copy of the pipeline lacking the named passes. Unknown
// names are ignored.
func (p *Pipeline[C]) Without(names ...string) *Pipeline[C] {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := &Pipeline[C]{passes: make([]pass.Pass[C], 0, len(p.passes))}
	for _, ps := range p.passes {
		if !drop[ps.Name()] {
			out.passes = append(out.passes, ps)
		}
	}
	return out
}

// RunRound runs every pass against the same tree and text. A failing pass
// adds a PassFailed diagnostic and its edits are discarded; the remaining
// passes still run. Diagnostics are in the tree's coordinates.
func (p *Pipeline[C]) RunRound(ctx context.Context, cfg C, tree *syntax.Tree, round int) ([]edit.Edit, []diag.Diagnostic) {
	var (
		edits []edit.Edit
		diags []diag.Diagnostic
	)
	for order, ps := range p.passes {
		span, _ := trace.BeginCtx(ctx, trace.ScopePass, "pass:"+ps.Name())
		pctx := pass.NewContext(ps.Name(), cfg, tree, round)
		out, err := pass.Run(ps, pctx, order)
		diags = append(diags, pctx.Diagnostics()...)
		if err != nil {
			diags = append(diags, failure(ps.Name(), err))
			span.WithExtra("error", err.Error()).End("failed")
			continue
		}
		edits = append(edits, out...)
		span.WithExtra("edits", strconv.Itoa(len(out))).End("")
	}
	return edits, diags
}

func failure(name string, err error) diag.Diagnostic {
	var rng source.Span
	var pe *pass.Error
	if errors.As(err, &pe) {
		rng = pe.Range
	}
	// panics carry a stack trace after the first line; it stays in the trace
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return diag.NewError(diag.PassFailed, rng, msg).WithPass(name)
}
