package pass

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"passfmt/internal/diag"
	"passfmt/internal/edit"
	"passfmt/internal/source"
	"passfmt/internal/syntax"
)

// Context is what one pass sees during one round. It is built by the
// pipeline for a single Run call and must not be retained afterwards.
type Context[C any] struct {
	Config   C
	Tree     *syntax.Tree
	Root     *sitter.Node
	Source   []byte
	Buffer   *source.Buffer
	Language *syntax.Language
	Round    int

	pass  string
	diags []diag.Diagnostic
}

// NewContext prepares the context for pass name over tree.
func NewContext[C any](name string, cfg C, tree *syntax.Tree, round int) *Context[C] {
	buf := tree.Buffer()
	return &Context[C]{
		Config:   cfg,
		Tree:     tree,
		Root:     tree.Root(),
		Source:   buf.Bytes(),
		Buffer:   buf,
		Language: tree.Language(),
		Round:    round,
		pass:     name,
	}
}

// Pass returns the name of the pass the context was built for.
func (c *Context[C]) Pass() string { return c.pass }

// Text returns the current buffer's text.
func (c *Context[C]) Text() string { return c.Buffer.Text() }

// Content returns the source text covered by n.
func (c *Context[C]) Content(n *sitter.Node) string {
	return c.Buffer.Slice(syntax.NodeSpan(n))
}

func (c *Context[C]) stamp(e edit.Edit) edit.Edit {
	e.Pass = c.pass
	e.Generation = c.Buffer.Generation()
	return e
}

func (c *Context[C]) Insert(at int, text string) edit.Edit {
	return c.stamp(edit.Insert(at, text))
}

func (c *Context[C]) Delete(start, end int) edit.Edit {
	return c.stamp(edit.Delete(start, end))
}

func (c *Context[C]) Replace(start, end int, text string) edit.Edit {
	return c.stamp(edit.Replace(start, end, text))
}

// Info, Warn and Error record a PassReport diagnostic without failing the pass.
func (c *Context[C]) Info(rng source.Span, format string, args ...any) {
	c.report(diag.SevInfo, rng, format, args...)
}

func (c *Context[C]) Warn(rng source.Span, format string, args ...any) {
	c.report(diag.SevWarning, rng, format, args...)
}

func (c *Context[C]) Error(rng source.Span, format string, args ...any) {
	c.report(diag.SevError, rng, format, args...)
}

func (c *Context[C]) report(sev diag.Severity, rng source.Span, format string, args ...any) {
	c.diags = append(c.diags, diag.New(sev, diag.PassReport, rng, fmt.Sprintf(format, args...)).WithPass(c.pass))
}

// Diagnostics returns what the pass reported so far.
func (c *Context[C]) Diagnostics() []diag.Diagnostic {
	return c.diags
}
