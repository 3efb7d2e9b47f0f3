package syntax

import (
	"context"
	"errors"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"passfmt/internal/source"
)

func parse(t *testing.T, lang, text string) (*Parser, *Tree) {
	t.Helper()
	reg := DefaultRegistry()
	l, err := reg.Lookup(lang)
	if err != nil {
		t.Fatalf("Lookup(%s): %v", lang, err)
	}
	p, err := NewParser(l, 0)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	t.Cleanup(p.Release)
	tree, err := p.Parse(context.Background(), source.NewBuffer(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return p, tree
}

func TestRegistryLookup(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"lib.RS", "rust"},
		{"a/b/c.mjs", "javascript"},
		{"script.sh", "bash"},
	}
	for _, tt := range tests {
		l, err := reg.ForPath(tt.path)
		if err != nil {
			t.Fatalf("ForPath(%s): %v", tt.path, err)
		}
		if l.Name != tt.want {
			t.Errorf("ForPath(%s) = %s, want %s", tt.path, l.Name, tt.want)
		}
	}

	if _, err := reg.ForPath("notes.txt"); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected ErrUnknownLanguage, got %v", err)
	}
	if _, err := reg.Lookup("cobol"); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected ErrUnknownLanguage, got %v", err)
	}

	ext, err := reg.WithExtensions(map[string]string{"tmpl": "go"})
	if err != nil {
		t.Fatalf("WithExtensions: %v", err)
	}
	if l, err := ext.ForPath("x.tmpl"); err != nil || l.Name != "go" {
		t.Fatalf("extra extension not mapped: %v", err)
	}
	if _, err := reg.ForPath("x.tmpl"); err == nil {
		t.Fatalf("WithExtensions must not modify the original registry")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	a := NewLanguage("a", nil, ".x")
	b := NewLanguage("b", nil, ".x")
	if _, err := NewRegistry(a, b); err == nil {
		t.Fatalf("expected duplicate extension error")
	}
}

func TestGrammarUnavailable(t *testing.T) {
	l := NewLanguage("ghost", nil, ".ghost")
	if _, err := NewParser(l, 0); !errors.Is(err, ErrGrammarUnavailable) {
		t.Fatalf("expected ErrGrammarUnavailable, got %v", err)
	}
	broken := NewLanguage("broken", func() *sitter.Language { panic("no symbols") })
	if _, err := broken.Grammar(); !errors.Is(err, ErrGrammarUnavailable) {
		t.Fatalf("expected ErrGrammarUnavailable from panicking grammar, got %v", err)
	}
}

func TestTreeRangeCoversWholeBuffer(t *testing.T) {
	text := "\n\npackage main\n\n"
	_, tree := parse(t, "go", text)
	if got := tree.Range(); got != (source.Span{Start: 0, End: len(text)}) {
		t.Fatalf("Range() = %v", got)
	}
	if tree.HasErrors() {
		t.Fatalf("unexpected syntax errors")
	}
}

func TestFirstError(t *testing.T) {
	_, tree := parse(t, "go", "package main\n\nfunc f( {\n")
	if !tree.HasErrors() {
		t.Fatalf("expected syntax errors")
	}
	sp, ok := tree.FirstError()
	if !ok {
		t.Fatalf("FirstError found nothing")
	}
	if sp.Start < len("package main\n") {
		t.Fatalf("error reported before the broken declaration: %v", sp)
	}
	if tree.ErrorCount() == 0 {
		t.Fatalf("ErrorCount = 0")
	}
}

func TestIncrementalReparseMatchesFullParse(t *testing.T) {
	before := source.NewBuffer("fn f(){x;}")
	p, tree := parse(t, "rust", before.Text())

	ch, err := source.MakeChange(before, 7, 7, " ")
	if err != nil {
		t.Fatal(err)
	}
	after := before.Derive("fn f(){ x;}")
	if err := tree.Edit(ch); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if !tree.Stale() {
		t.Fatalf("edited tree must be stale")
	}
	next, err := p.Reparse(context.Background(), tree, after)
	if err != nil {
		t.Fatalf("Reparse: %v", err)
	}

	full, err := p.Parse(context.Background(), after)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if next.Root().String() != full.Root().String() {
		t.Fatalf("incremental tree differs:\n%s\n%s", next.Root().String(), full.Root().String())
	}
	if next.Buffer() != after || next.Range().End != after.Len() {
		t.Fatalf("reparsed tree is not paired with the new buffer")
	}
}

func TestApplySingleEdit(t *testing.T) {
	before := source.NewBuffer("package main\n\nvar x = 1\n")
	p, tree := parse(t, "go", before.Text())
	after := before.Derive("package main\n\nvar xy = 1\n")

	next, err := p.ApplySingleEdit(context.Background(), tree, before, after, 19, 19)
	if err != nil {
		t.Fatalf("ApplySingleEdit: %v", err)
	}
	var names []string
	Walk(next.Root(), func(n *sitter.Node) bool {
		if n.Type() == "identifier" {
			names = append(names, n.Content(after.Bytes()))
		}
		return true
	})
	if len(names) != 1 || names[0] != "xy" {
		t.Fatalf("unexpected identifiers %v", names)
	}
	if tree.Stale() || tree.Buffer() != before {
		t.Fatalf("ApplySingleEdit must leave the previous tree usable")
	}
}

func TestQueryCompiledOnce(t *testing.T) {
	l, err := DefaultRegistry().Lookup("go")
	if err != nil {
		t.Fatal(err)
	}
	q1, err := l.Query("imports")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	q2, _ := l.Query("imports")
	if q1 != q2 {
		t.Fatalf("query must be cached")
	}
	if _, err := l.Query("nope"); !errors.Is(err, ErrNoQuery) {
		t.Fatalf("expected ErrNoQuery, got %v", err)
	}
}
