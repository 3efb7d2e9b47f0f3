package pass

import (
	"passfmt/internal/edit"
	"passfmt/internal/source"
)

// Target is one region a structured pass rewrites, with the items found in it.
type Target[T any] struct {
	Range source.Span
	Items []T
}

// Structured is a pass that works on items rather than bytes:
// Extract finds targets, Transform reorders or filters their items and Build
// renders the items back into the text that replaces the target range.
type Structured[C, T any] interface {
	Name() string
	Extract(ctx *Context[C]) ([]Target[T], error)
	Transform(ctx *Context[C], items []T) ([]T, error)
	Build(ctx *Context[C], items []T) (string, error)
}

// FromStructured adapts a Structured pass to Pass. Targets without items are
// skipped; a target whose Transform fails is reported as a warning and left
// untouched while the remaining targets proceed.
func FromStructured[C, T any](s Structured[C, T]) Pass[C] {
	return structuredPass[C, T]{s: s}
}

type structuredPass[C, T any] struct {
	s Structured[C, T]
}

func (p structuredPass[C, T]) Name() string { return p.s.Name() }

func (p structuredPass[C, T]) Run(ctx *Context[C]) ([]edit.Edit, error) {
	targets, err := p.s.Extract(ctx)
	if err != nil {
		return nil, err
	}
	var edits []edit.Edit
	for _, target := range targets {
		if len(target.Items) == 0 {
			continue
		}
		items, err := p.s.Transform(ctx, target.Items)
		if err != nil {
			ctx.Warn(target.Range, "transform skipped: %v", err)
			continue
		}
		text, err := p.s.Build(ctx, items)
		if err != nil {
			return nil, Fail(ctx, target.Range, err)
		}
		if text == ctx.Buffer.Slice(target.Range) {
			continue
		}
		edits = append(edits, ctx.Replace(target.Range.Start, target.Range.End, text))
	}
	return edits, nil
}
