// Package builtin contains the passes shipped with passfmt. Each pass keeps to
// its own kind of byte range (whitespace runs, token boundaries, comment
// bodies, import lists) so that the default set never conflicts with itself.
package builtin

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"passfmt/internal/config"
	"passfmt/internal/pass"
	"passfmt/internal/source"
	"passfmt/internal/syntax"
)

// Pass is the pass type used by every bundled pass.
type Pass = pass.Pass[*config.Style]

// Context is the per-round view the bundled passes receive.
type Context = pass.Context[*config.Style]

// Default returns the bundled passes in registration order.
func Default() []Pass {
	return []Pass{
		TrailingWhitespace{},
		FinalNewline{},
		BlankLines{},
		IndentStyle{},
		CommaSpacing{},
		BraceSpacing{},
		CommentNFC{},
		NewImportSort(),
	}
}

// Names lists the bundled pass names in registration order.
func Names() []string {
	passes := Default()
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.Name()
	}
	return names
}

// literals holds the spans of string literal nodes in document order. Bytes
// strictly inside them are content, not layout.
type literals []source.Span

func stringLiterals(ctx *Context) literals {
	var out literals
	syntax.Walk(ctx.Root, func(n *sitter.Node) bool {
		if ctx.Language.IsString(n.Type()) {
			out = append(out, syntax.NodeSpan(n))
			return false
		}
		return true
	})
	return out
}

// inside reports whether off lies strictly within one of the literals.
func (l literals) inside(off int) bool {
	i := sort.Search(len(l), func(i int) bool { return l[i].End > off })
	return i < len(l) && l[i].Start < off
}

// leaves calls fn for every leaf whose type is one of kinds and that is not
// part of a string literal.
func leaves(ctx *Context, fn func(n *sitter.Node), kinds ...string) {
	syntax.Walk(ctx.Root, func(n *sitter.Node) bool {
		if ctx.Language.IsString(n.Type()) {
			return false
		}
		if n.ChildCount() > 0 {
			return true
		}
		if n.IsMissing() {
			return false
		}
		for _, k := range kinds {
			if n.Type() == k {
				fn(n)
				break
			}
		}
		return false
	})
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
