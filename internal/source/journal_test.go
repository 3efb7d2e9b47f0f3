package source

import (
	"testing"
)

func mustChange(t *testing.T, buf *Buffer, start, end int, text string) Change {
	t.Helper()
	c, err := MakeChange(buf, start, end, text)
	if err != nil {
		t.Fatalf("MakeChange(%d,%d): %v", start, end, err)
	}
	return c
}

func TestMakeChangePoints(t *testing.T) {
	buf := NewBuffer("ab\ncd\nef")
	c := mustChange(t, buf, 4, 7, "X\nYZ")

	if c.StartPoint != (Point{1, 1}) {
		t.Errorf("start point %v", c.StartPoint)
	}
	if c.OldEndPoint != (Point{2, 1}) {
		t.Errorf("old end point %v", c.OldEndPoint)
	}
	if c.NewEndPoint != (Point{2, 2}) {
		t.Errorf("new end point %v", c.NewEndPoint)
	}

	// the advanced point must equal what the edited buffer reports
	after := buf.Derive("ab\ncX\nYZf")
	p, err := after.Point(c.NewEnd)
	if err != nil {
		t.Fatal(err)
	}
	if p != c.NewEndPoint {
		t.Fatalf("new end point %v, edited buffer says %v", c.NewEndPoint, p)
	}
}

func TestJournalMapsBackThroughRounds(t *testing.T) {
	// round 1: "fn f(){x;}" -> "fn f(){ x;}"
	b1 := NewBuffer("fn f(){x;}")
	var j Journal
	j.Record([]Change{mustChange(t, b1, 7, 7, " ")})

	// round 2: "fn f(){ x;}" -> "fn f(){ x; }"
	b2 := b1.Derive("fn f(){ x;}")
	j.Record([]Change{mustChange(t, b2, 10, 10, " ")})

	tests := []struct {
		off  int
		want int
	}{
		{0, 0},
		{7, 7},  // inserted space maps to its insertion point
		{8, 7},  // 'x'
		{10, 9}, // inserted space of round 2
		{11, 9}, // '}'
		{12, 10},
	}
	for _, tt := range tests {
		if got := j.ToOriginal(tt.off, BiasStart); got != tt.want {
			t.Errorf("ToOriginal(%d) = %d, want %d", tt.off, got, tt.want)
		}
	}
	if j.Rounds() != 2 {
		t.Fatalf("expected 2 rounds, got %d", j.Rounds())
	}
}

func TestJournalReplacementBias(t *testing.T) {
	buf := NewBuffer("0123456789")
	var j Journal
	// [2,5) -> "ab" and [7,8) -> "XYZ"
	j.Record([]Change{
		mustChange(t, buf, 2, 5, "ab"),
		mustChange(t, buf, 7, 8, "XYZ"),
	})
	// new text: "01ab56XYZ89"
	if got := j.ToOriginal(3, BiasStart); got != 2 {
		t.Errorf("inside first replacement, start bias: %d", got)
	}
	if got := j.ToOriginal(3, BiasEnd); got != 5 {
		t.Errorf("inside first replacement, end bias: %d", got)
	}
	if got := j.ToOriginal(5, BiasStart); got != 6 {
		t.Errorf("between replacements: %d", got)
	}
	if got := j.ToOriginal(9, BiasStart); got != 8 {
		t.Errorf("end of second replacement: %d", got)
	}
	if got := j.ToOriginal(10, BiasStart); got != 9 {
		t.Errorf("after both: %d", got)
	}

	s := j.SpanToOriginal(Span{Start: 3, End: 8})
	if s != (Span{Start: 2, End: 8}) {
		t.Errorf("SpanToOriginal = %v", s)
	}
}

func TestBufferGenerations(t *testing.T) {
	b := NewBuffer("x")
	if b.Generation() != 1 {
		t.Fatalf("first generation must be 1, got %d", b.Generation())
	}
	n := b.Derive("xy")
	if n.Generation() != 2 || b.Text() != "x" || n.Text() != "xy" {
		t.Fatalf("derive mutated or misnumbered buffers: %d %q %q", n.Generation(), b.Text(), n.Text())
	}
	if got := n.Slice(Span{Start: 1, End: 2}); got != "y" {
		t.Fatalf("Slice = %q", got)
	}
	if got := n.Slice(Span{Start: 1, End: 5}); got != "" {
		t.Fatalf("out of range Slice = %q", got)
	}
}
