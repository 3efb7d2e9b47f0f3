package pass

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"passfmt/internal/diag"
	"passfmt/internal/edit"
	"passfmt/internal/source"
	"passfmt/internal/syntax"
)

func goTree(t *testing.T, text string) *syntax.Tree {
	t.Helper()
	l, err := syntax.DefaultRegistry().Lookup("go")
	if err != nil {
		t.Fatal(err)
	}
	p, err := syntax.NewParser(l, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()
	tree, err := p.Parse(context.Background(), source.NewBuffer(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return tree
}

type options struct{ Word string }

func TestRunStampsEdits(t *testing.T) {
	tree := goTree(t, "package main\n")
	p := NewFunc("upper", func(ctx *Context[options]) ([]edit.Edit, error) {
		return []edit.Edit{
			ctx.Replace(0, 7, ctx.Config.Word),
			edit.Insert(ctx.Buffer.Len(), "\n"),
			{Start: 8, OldEnd: 8, NewText: " ", Pass: "someone_else"},
		}, nil
	})
	ctx := NewContext("upper", options{Word: "PACKAGE"}, tree, 1)

	edits, err := Run[options](p, ctx, 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(edits) != 3 {
		t.Fatalf("expected 3 edits, got %d", len(edits))
	}
	for i, e := range edits {
		if e.Pass != "upper" || e.Order != 3 || e.Seq != i || e.Generation != tree.Buffer().Generation() {
			t.Errorf("edit %d not stamped: %+v", i, e)
		}
	}
}

func TestRunRecoversPanics(t *testing.T) {
	tree := goTree(t, "package main\n")
	p := NewFunc("boom", func(ctx *Context[options]) ([]edit.Edit, error) {
		var m map[string]int
		m["x"] = 1
		return nil, nil
	})
	edits, err := Run[options](p, NewContext("boom", options{}, tree, 1), 0)
	var pe *Error
	if !errors.As(err, &pe) || !errors.Is(err, ErrPanic) {
		t.Fatalf("expected *Error wrapping ErrPanic, got %v", err)
	}
	if pe.Pass != "boom" || edits != nil {
		t.Fatalf("unexpected failure %+v / %v", pe, edits)
	}
}

func TestRunWrapsPlainErrors(t *testing.T) {
	tree := goTree(t, "package main\n")
	p := NewFunc("picky", func(ctx *Context[options]) ([]edit.Edit, error) {
		return []edit.Edit{ctx.Insert(0, "x")}, ErrUnsupported
	})
	edits, err := Run[options](p, NewContext("picky", options{}, tree, 1), 0)
	var pe *Error
	if !errors.As(err, &pe) || !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected *Error wrapping ErrUnsupported, got %v", err)
	}
	if edits != nil {
		t.Fatalf("failed pass output must be discarded")
	}
}

func TestContextReports(t *testing.T) {
	tree := goTree(t, "package main\n")
	ctx := NewContext("reporter", options{}, tree, 2)
	ctx.Warn(source.Span{Start: 0, End: 7}, "found %d things", 3)
	ctx.Info(source.Span{}, "fine")

	ds := ctx.Diagnostics()
	if len(ds) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(ds))
	}
	if ds[0].Code != diag.PassReport || ds[0].Severity != diag.SevWarning || ds[0].Pass != "reporter" || ds[0].Message != "found 3 things" {
		t.Fatalf("unexpected diagnostic %+v", ds[0])
	}
}

// words sorts space separated words on the first line.
type words struct{}

func (words) Name() string { return "words" }

func (words) Extract(ctx *Context[options]) ([]Target[string], error) {
	end := strings.IndexByte(ctx.Text(), '\n')
	if end < 0 {
		return nil, ErrMalformed
	}
	line := ctx.Text()[:end]
	return []Target[string]{{Range: source.Span{Start: 0, End: end}, Items: strings.Fields(line)}}, nil
}

func (words) Transform(_ *Context[options], items []string) ([]string, error) {
	out := append([]string(nil), items...)
	sort.Strings(out)
	return out, nil
}

func (words) Build(_ *Context[options], items []string) (string, error) {
	return strings.Join(items, " "), nil
}

func TestStructuredPass(t *testing.T) {
	tree := goTree(t, "package main\n")
	p := FromStructured[options, string](words{})
	edits, err := Run(p, NewContext(p.Name(), options{}, tree, 1), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(edits) != 1 || edits[0].NewText != "main package" || edits[0].Start != 0 || edits[0].OldEnd != 12 {
		t.Fatalf("unexpected edits %v", edits)
	}
}
