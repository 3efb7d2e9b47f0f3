// Package testkit holds invariant checks shared by package tests.
package testkit

import (
	"context"
	"fmt"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"passfmt/internal/diag"
	"passfmt/internal/edit"
	"passfmt/internal/source"
	"passfmt/internal/syntax"
)

// CheckTree runs a minimal set of invariants on a tree:
// 1) the tree is not stale and its range is the whole buffer
// 2) every node span lies within its parent's span
// 3) siblings are ordered and do not overlap
func CheckTree(tree *syntax.Tree) error {
	if tree == nil {
		return fmt.Errorf("nil tree")
	}
	if tree.Stale() {
		return fmt.Errorf("tree was edited but not reparsed")
	}
	n := tree.Buffer().Len()
	if r := tree.Range(); r.Start != 0 || r.End != n {
		return fmt.Errorf("tree range %v does not cover buffer of %d bytes", r, n)
	}
	root := syntax.NodeSpan(tree.Root())
	if root.Start < 0 || root.End > n {
		return fmt.Errorf("root span %v is outside the buffer", root)
	}
	var err error
	syntax.Walk(tree.Root(), func(node *sitter.Node) bool {
		if err != nil {
			return false
		}
		err = checkChildren(node)
		return err == nil
	})
	return err
}

func checkChildren(node *sitter.Node) error {
	parent := syntax.NodeSpan(node)
	prevEnd := parent.Start
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		sp := syntax.NodeSpan(node.Child(i))
		if sp.Start < parent.Start || sp.End > parent.End {
			return fmt.Errorf("%s %v is outside parent %s %v", node.Child(i).Type(), sp, node.Type(), parent)
		}
		if sp.Start < prevEnd {
			return fmt.Errorf("%s %v overlaps its previous sibling ending at %d", node.Child(i).Type(), sp, prevEnd)
		}
		prevEnd = sp.End
	}
	return nil
}

// CheckPlan verifies that plan is applicable to buf: edits are in range,
// stamped for buf's generation, sorted descending and non-overlapping.
func CheckPlan(buf *source.Buffer, plan edit.Plan) error {
	for _, e := range plan {
		if e.Generation != 0 && e.Generation != buf.Generation() {
			return fmt.Errorf("%v computed for generation %d, buffer is %d", e, e.Generation, buf.Generation())
		}
		if !buf.Index().Aligned(e.Start) || !buf.Index().Aligned(e.OldEnd) {
			return fmt.Errorf("%v splits a character", e)
		}
	}
	return edit.CheckPlan(buf.Len(), plan)
}

// CheckDiagnostics verifies that every diagnostic range fits text.
func CheckDiagnostics(text string, diags []diag.Diagnostic) error {
	for _, d := range diags {
		if d.Range.Start < 0 || d.Range.Start > d.Range.End || d.Range.End > len(text) {
			return fmt.Errorf("%s: range %v outside input of %d bytes", d.Code, d.Range, len(text))
		}
		for _, n := range d.Notes {
			if n.Span.Start < 0 || n.Span.Start > n.Span.End || n.Span.End > len(text) {
				return fmt.Errorf("%s: note range %v outside input of %d bytes", d.Code, n.Span, len(text))
			}
		}
	}
	return nil
}

// Parse parses text with the bundled grammar for lang or fails the test.
func Parse(tb testing.TB, lang, text string) *syntax.Tree {
	tb.Helper()
	l, err := syntax.DefaultRegistry().Lookup(lang)
	if err != nil {
		tb.Fatal(err)
	}
	p, err := syntax.NewParser(l, 0)
	if err != nil {
		tb.Fatal(err)
	}
	defer p.Release()
	tree, err := p.Parse(context.Background(), source.NewBuffer(text))
	if err != nil {
		tb.Fatalf("parse %s: %v", lang, err)
	}
	return tree
}
