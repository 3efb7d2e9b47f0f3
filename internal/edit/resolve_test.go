package edit

import (
	"errors"
	"testing"

	"passfmt/internal/diag"
	"passfmt/internal/source"
)

func from(pass string, order int, e Edit) Edit {
	return e.Stamp(pass, order, 0, 0)
}

func TestResolveDeduplicatesIdenticalInserts(t *testing.T) {
	buf := source.NewBuffer("f(a b)")
	edits := []Edit{
		from("first", 0, Insert(5, ",")),
		from("second", 1, Insert(5, ",")),
	}

	res, err := Resolver{}.Resolve(buf, edits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Plan) != 1 {
		t.Fatalf("expected 1 planned edit, got %d", len(res.Plan))
	}
	if res.Plan[0].Pass != "first" {
		t.Fatalf("expected the earliest pass to win, got %q", res.Plan[0].Pass)
	}
	if res.Duplicates != 1 {
		t.Fatalf("expected 1 duplicate, got %d", res.Duplicates)
	}
}

func TestResolveOverlappingEditsConflict(t *testing.T) {
	buf := source.NewBuffer("0123456789")
	edits := []Edit{
		from("a", 0, Replace(2, 5, "foo")),
		from("b", 1, Replace(4, 6, "bar")),
		from("c", 2, Insert(8, "!")),
	}

	res, err := Resolver{}.Resolve(buf, edits)
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if len(ce.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(ce.Conflicts))
	}
	c := ce.Conflicts[0]
	if c.PassA != "a" || c.PassB != "b" || c.Range != (source.Span{Start: 2, End: 6}) {
		t.Fatalf("unexpected conflict %+v", c)
	}
	if len(res.Plan) != 1 || res.Plan[0].Pass != "c" {
		t.Fatalf("expected only the unrelated edit to survive, got %v", res.Plan)
	}

	diags := res.Diagnostics()
	if len(diags) != 1 || diags[0].Severity != diag.SevError || diags[0].Code != diag.EditConflict {
		t.Fatalf("expected one EditConflict error diagnostic, got %+v", diags)
	}
}

func TestResolveStrictDropsWholeBatch(t *testing.T) {
	buf := source.NewBuffer("0123456789")
	edits := []Edit{
		from("a", 0, Replace(2, 5, "foo")),
		from("b", 1, Replace(4, 6, "bar")),
		from("c", 2, Insert(8, "!")),
	}
	res, err := Resolver{Strict: true}.Resolve(buf, edits)
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if !res.Plan.Empty() {
		t.Fatalf("strict mode must return an empty plan, got %v", res.Plan)
	}
}

func TestResolveRejectsMisalignedOffset(t *testing.T) {
	// a two-byte character occupies [3,5)
	buf := source.NewBuffer("abcé!")
	res, err := Resolver{}.Resolve(buf, []Edit{from("p", 0, Insert(4, " "))})
	if err != nil {
		t.Fatalf("rejections are not conflicts: %v", err)
	}
	if len(res.Rejected) != 1 || !errors.Is(res.Rejected[0].Err, ErrMisalignedOffset) {
		t.Fatalf("expected a misaligned rejection, got %+v", res.Rejected)
	}
	if res.Rejected[0].Code() != diag.EditMisalignedOffset {
		t.Fatalf("unexpected code %v", res.Rejected[0].Code())
	}
	if !res.Plan.Empty() {
		t.Fatalf("rejected edit must not be planned")
	}
}

func TestResolveRejections(t *testing.T) {
	buf := source.NewBuffer("hello")
	next := buf.Derive("hello!")

	tests := []struct {
		name string
		buf  *source.Buffer
		e    Edit
		want error
		code diag.Code
	}{
		{"past end", buf, Replace(3, 9, "x"), ErrInvalidRange, diag.EditInvalidRange},
		{"negative", buf, Insert(-1, "x"), ErrInvalidRange, diag.EditInvalidRange},
		{"reversed", buf, Edit{Start: 4, OldEnd: 2}, ErrInvalidRange, diag.EditInvalidRange},
		{"stale", next, Edit{Start: 0, OldEnd: 1, NewText: "H", Generation: buf.Generation()}, ErrStaleEdit, diag.EditStale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolver{}.Resolve(tt.buf, []Edit{tt.e})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(res.Rejected) != 1 {
				t.Fatalf("expected 1 rejection, got %d", len(res.Rejected))
			}
			if !errors.Is(res.Rejected[0].Err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, res.Rejected[0].Err)
			}
			if got := res.Diagnostics()[0]; got.Code != tt.code || got.Severity != diag.SevWarning {
				t.Fatalf("unexpected diagnostic %+v", got)
			}
		})
	}
}

func TestResolveDropsNoOps(t *testing.T) {
	buf := source.NewBuffer("x = 1")
	res, err := Resolver{}.Resolve(buf, []Edit{
		from("p", 0, Replace(0, 1, "x")),
		from("p", 0, Insert(5, "")),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Plan.Empty() || res.NoOps != 2 {
		t.Fatalf("expected 2 no-ops and an empty plan, got %d / %v", res.NoOps, res.Plan)
	}
}

func TestResolveNoOpStillConflicts(t *testing.T) {
	tests := []struct {
		name  string
		other Edit
	}{
		{"same range", Replace(2, 5, "xyz")},
		{"partial overlap", Replace(4, 6, "bar")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := source.NewBuffer("0123456789")
			res, err := Resolver{}.Resolve(buf, []Edit{
				from("keep", 0, Replace(2, 5, "234")),
				from("rewrite", 1, tt.other),
			})
			var ce *ConflictError
			if !errors.As(err, &ce) || len(ce.Conflicts) != 1 {
				t.Fatalf("expected one conflict, got %v", err)
			}
			if !res.Plan.Empty() || res.NoOps != 0 {
				t.Fatalf("conflicting edits must not be planned: plan=%v noops=%d", res.Plan, res.NoOps)
			}
		})
	}
}

func TestResolveTouchingEditsAreNotConflicts(t *testing.T) {
	buf := source.NewBuffer("abcdef")
	edits := []Edit{
		from("a", 0, Replace(1, 3, "X")),
		from("b", 1, Replace(3, 4, "Y")),
		from("c", 2, Insert(3, "+")),
		from("d", 3, Insert(0, ">")),
	}
	res, err := Resolver{}.Resolve(buf, edits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Plan) != 4 {
		t.Fatalf("expected 4 planned edits, got %v", res.Plan)
	}
	if err := CheckPlan(buf.Len(), res.Plan); err != nil {
		t.Fatalf("plan invalid: %v", err)
	}
	next, _, err := Apply(buf, res.Plan, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if next.Text() != ">aX+Yef" {
		t.Fatalf("unexpected text %q", next.Text())
	}
}

func TestResolveDistinctInsertsAtSamePointConflict(t *testing.T) {
	buf := source.NewBuffer("ab")
	_, err := Resolver{}.Resolve(buf, []Edit{
		from("a", 0, Insert(1, " ")),
		from("b", 1, Insert(1, "\t")),
	})
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestResolvePlanIsDescendingAndDisjoint(t *testing.T) {
	buf := source.NewBuffer("a,b,c,d,e")
	var edits []Edit
	for i, off := range []int{8, 2, 6, 4} {
		edits = append(edits, from("comma", 0, Insert(off, " ")).Stamp("comma", 0, i, 0))
	}
	res, err := Resolver{}.Resolve(buf, edits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(res.Plan); i++ {
		if res.Plan[i-1].Start <= res.Plan[i].Start {
			t.Fatalf("plan not descending: %v", res.Plan)
		}
	}
	if err := CheckPlan(buf.Len(), res.Plan); err != nil {
		t.Fatalf("plan invalid: %v", err)
	}
}
