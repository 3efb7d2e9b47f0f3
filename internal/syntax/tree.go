package syntax

import (
	"fmt"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"

	"passfmt/internal/source"
)

// Tree is a concrete syntax tree paired with the buffer generation it was
// parsed from. Once Edit has been called the tree describes a text that no
// longer exists and must only be handed to Parser.Reparse.
type Tree struct {
	t      *sitter.Tree
	buf    *source.Buffer
	lang   *Language
	edited bool
}

func (t *Tree) Root() *sitter.Node { return t.t.RootNode() }

func (t *Tree) Buffer() *source.Buffer { return t.buf }

func (t *Tree) Language() *Language { return t.lang }

// Range is the byte range the root covers: always the whole buffer.
// tree-sitter's own root range skips leading and trailing whitespace.
func (t *Tree) Range() source.Span {
	return source.Span{Start: 0, End: t.buf.Len()}
}

// Stale reports whether Edit was called on this tree.
func (t *Tree) Stale() bool { return t.edited }

// Fork returns an independent copy of t for the next generation. Edits on
// the fork leave t valid for its own buffer.
func (t *Tree) Fork() *Tree {
	return &Tree{t: t.t.Copy(), buf: t.buf, lang: t.lang, edited: t.edited}
}

// Edit informs the tree that ch was applied to its text. The change's points
// must come from the generation the edit was computed against.
func (t *Tree) Edit(ch source.Change) error {
	in, err := editInput(ch)
	if err != nil {
		return err
	}
	t.t.Edit(in)
	t.edited = true
	return nil
}

// HasErrors reports whether the tree holds ERROR or MISSING nodes.
func (t *Tree) HasErrors() bool {
	return t.Root().HasError()
}

// FirstError returns the span of the first ERROR or MISSING node in document order.
func (t *Tree) FirstError() (source.Span, bool) {
	root := t.Root()
	if !root.HasError() {
		return source.Span{}, false
	}
	var found *sitter.Node
	Walk(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.IsMissing() || n.Type() == "ERROR" {
			found = n
			return false
		}
		return n.HasError()
	})
	if found == nil {
		return source.Span{}, false
	}
	return NodeSpan(found), true
}

// ErrorCount counts ERROR and MISSING nodes.
func (t *Tree) ErrorCount() int {
	n := 0
	Walk(t.Root(), func(node *sitter.Node) bool {
		if node.IsMissing() || node.Type() == "ERROR" {
			n++
			return false
		}
		return node.HasError()
	})
	return n
}

// Walk visits n and its descendants in document order. Children of a node
// are skipped when fn returns false for it.
func Walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil || n.IsNull() {
		return
	}
	if !fn(n) {
		return
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		Walk(n.Child(i), fn)
	}
}

// NodeSpan converts a node's byte range into a span.
func NodeSpan(n *sitter.Node) source.Span {
	return source.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func editInput(ch source.Change) (sitter.EditInput, error) {
	var in sitter.EditInput
	var err error
	if in.StartIndex, err = safecast.Conv[uint32](ch.Start); err != nil {
		return in, fmt.Errorf("edit start %d: %w", ch.Start, err)
	}
	if in.OldEndIndex, err = safecast.Conv[uint32](ch.OldEnd); err != nil {
		return in, fmt.Errorf("edit old end %d: %w", ch.OldEnd, err)
	}
	if in.NewEndIndex, err = safecast.Conv[uint32](ch.NewEnd); err != nil {
		return in, fmt.Errorf("edit new end %d: %w", ch.NewEnd, err)
	}
	if in.StartPoint, err = toPoint(ch.StartPoint); err != nil {
		return in, err
	}
	if in.OldEndPoint, err = toPoint(ch.OldEndPoint); err != nil {
		return in, err
	}
	if in.NewEndPoint, err = toPoint(ch.NewEndPoint); err != nil {
		return in, err
	}
	return in, nil
}

func toPoint(p source.Point) (sitter.Point, error) {
	row, err := safecast.Conv[uint32](p.Row)
	if err != nil {
		return sitter.Point{}, fmt.Errorf("row %d: %w", p.Row, err)
	}
	col, err := safecast.Conv[uint32](p.Column)
	if err != nil {
		return sitter.Point{}, fmt.Errorf("column %d: %w", p.Column, err)
	}
	return sitter.Point{Row: row, Column: col}, nil
}
