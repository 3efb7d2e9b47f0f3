package edit

import (
	"context"
	"slices"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"passfmt/internal/source"
	"passfmt/internal/syntax"
)

type nodeShape struct {
	typ        string
	start, end uint32
	from, to   sitter.Point
}

func shapes(tree *syntax.Tree) []nodeShape {
	var out []nodeShape
	syntax.Walk(tree.Root(), func(n *sitter.Node) bool {
		out = append(out, nodeShape{n.Type(), n.StartByte(), n.EndByte(), n.StartPoint(), n.EndPoint()})
		return true
	})
	return out
}

// Several edits spread over several lines, each adding line breaks, so every
// change after the first shifts rows as well as bytes.
func TestMultiLinePlanKeepsTreeInSync(t *testing.T) {
	text := "package main\n\nfunc a() { x := 1; y := 2 }\n\nfunc b() { return }\n"
	at := func(marker string, skip int) int {
		i := strings.Index(text, marker)
		if i < 0 {
			t.Fatalf("marker %q not found", marker)
		}
		return i + skip
	}
	edits := []Edit{
		Replace(at("{ x", 1), at("{ x", 2), "\n\t"),
		Replace(at("; y", 1), at("; y", 2), "\n\t"),
		Replace(at("2 }", 1), at("2 }", 2), "\n"),
		Replace(at("{ return", 1), at("{ return", 2), "\n\t"),
		Replace(at("return }", 6), at("return }", 7), "\n"),
	}

	l, err := syntax.DefaultRegistry().Lookup("go")
	if err != nil {
		t.Fatal(err)
	}
	p, err := syntax.NewParser(l, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	buf := source.NewBuffer(text)
	tree, err := p.Parse(context.Background(), buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := Resolver{}.Resolve(buf, edits)
	if err != nil || len(res.Plan) != len(edits) {
		t.Fatalf("Resolve: %v, plan %v", err, res.Plan)
	}

	edited := tree.Fork()
	next, _, err := Apply(buf, res.Plan, func(ch source.Change, _, _ *source.Buffer) error {
		return edited.Edit(ch)
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := "package main\n\nfunc a() {\n\tx := 1;\n\ty := 2\n}\n\nfunc b() {\n\treturn\n}\n"
	if next.Text() != want {
		t.Fatalf("text = %q, want %q", next.Text(), want)
	}

	incremental, err := p.Reparse(context.Background(), edited, next)
	if err != nil {
		t.Fatalf("Reparse: %v", err)
	}
	full, err := p.Parse(context.Background(), next)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, exp := shapes(incremental), shapes(full)
	if !slices.Equal(got, exp) {
		t.Fatalf("incremental tree differs from a full parse:\n%v\n%v", got, exp)
	}
	if tree.Stale() || tree.Root().String() != fullParseString(t, p, buf) {
		t.Fatalf("the original tree must not be touched by edits on its fork")
	}
}

func fullParseString(t *testing.T, p *syntax.Parser, buf *source.Buffer) string {
	t.Helper()
	tree, err := p.Parse(context.Background(), buf)
	if err != nil {
		t.Fatal(err)
	}
	return tree.Root().String()
}
