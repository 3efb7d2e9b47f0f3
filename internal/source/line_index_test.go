package source

import (
	"errors"
	"testing"
)

func TestPointAndOffset(t *testing.T) {
	idx := BuildLineIndex("ab\ncde\n\nf")

	tests := []struct {
		off  int
		want Point
	}{
		{0, Point{0, 0}},
		{2, Point{0, 2}}, // the '\n' belongs to the line it terminates
		{3, Point{1, 0}},
		{6, Point{1, 3}},
		{7, Point{2, 0}},
		{8, Point{3, 0}},
		{9, Point{3, 1}},
	}
	for _, tt := range tests {
		got, err := idx.Point(tt.off)
		if err != nil {
			t.Fatalf("Point(%d): unexpected error %v", tt.off, err)
		}
		if got != tt.want {
			t.Errorf("Point(%d) = %v, want %v", tt.off, got, tt.want)
		}
		back, err := idx.Offset(got)
		if err != nil {
			t.Fatalf("Offset(%v): unexpected error %v", got, err)
		}
		if back != tt.off {
			t.Errorf("Offset(%v) = %d, want %d", got, back, tt.off)
		}
	}
}

func TestEmptyTextHasOneLine(t *testing.T) {
	idx := BuildLineIndex("")
	if idx.LineCount() != 1 {
		t.Fatalf("expected 1 line, got %d", idx.LineCount())
	}
	p, err := idx.Point(0)
	if err != nil || p != (Point{}) {
		t.Fatalf("Point(0) = %v, %v", p, err)
	}
	if _, err := idx.Point(1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestPointErrors(t *testing.T) {
	idx := BuildLineIndex("héllo") // é occupies bytes 1..2

	if _, err := idx.Point(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Point(-1): expected ErrOutOfRange, got %v", err)
	}
	if _, err := idx.Point(7); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Point(7): expected ErrOutOfRange, got %v", err)
	}
	if _, err := idx.Point(2); !errors.Is(err, ErrMisalignedOffset) {
		t.Errorf("Point(2): expected ErrMisalignedOffset, got %v", err)
	}
	if _, err := idx.Point(6); err != nil {
		t.Errorf("Point(len): unexpected error %v", err)
	}
}

func TestOffsetErrors(t *testing.T) {
	idx := BuildLineIndex("ab\nxé\n")

	tests := []struct {
		name string
		p    Point
		want error
	}{
		{"negative row", Point{-1, 0}, ErrInvalidPoint},
		{"row past end", Point{3, 0}, ErrInvalidPoint},
		{"column past line", Point{0, 3}, ErrInvalidPoint},
		{"column inside rune", Point{1, 2}, ErrMisalignedOffset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := idx.Offset(tt.p); !errors.Is(err, tt.want) {
				t.Fatalf("Offset(%v): expected %v, got %v", tt.p, tt.want, err)
			}
		})
	}

	// column equal to the line length addresses the newline itself
	off, err := idx.Offset(Point{0, 2})
	if err != nil || off != 2 {
		t.Fatalf("Offset(0:2) = %d, %v; want 2", off, err)
	}
}

func TestMultiByteCharacterBoundaries(t *testing.T) {
	// "abc" then a two-byte rune at [3,5)
	text := "abcé!"
	idx := BuildLineIndex(text)
	if idx.Aligned(4) {
		t.Fatalf("offset 4 splits the rune and must not be aligned")
	}
	if _, err := idx.Point(4); !errors.Is(err, ErrMisalignedOffset) {
		t.Fatalf("expected ErrMisalignedOffset, got %v", err)
	}
	for _, off := range []int{3, 5} {
		if !idx.Aligned(off) {
			t.Errorf("offset %d should be aligned", off)
		}
	}
}

func TestLineCol(t *testing.T) {
	idx := BuildLineIndex("one\ntwo\n")
	tests := []struct {
		off  int
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{3, LineCol{1, 4}},
		{4, LineCol{2, 1}},
		{8, LineCol{3, 1}},
		{100, LineCol{3, 1}},
		{-5, LineCol{1, 1}},
	}
	for _, tt := range tests {
		if got := idx.LineCol(tt.off); got != tt.want {
			t.Errorf("LineCol(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}
	if got := idx.Line(1); got != "two" {
		t.Errorf("Line(1) = %q", got)
	}
}

func FuzzPointRoundTrip(f *testing.F) {
	for _, seed := range []string{"", "a", "a\nb", "\n\n", "héllo\nwörld\n", "日本語\r\n"} {
		f.Add(seed, 0)
	}
	f.Fuzz(func(t *testing.T, text string, off int) {
		idx := BuildLineIndex(text)
		p, err := idx.Point(off)
		if err != nil {
			if off >= 0 && off <= len(text) && idx.Aligned(off) {
				t.Fatalf("Point(%d) failed on aligned offset: %v", off, err)
			}
			return
		}
		back, err := idx.Offset(p)
		if err != nil {
			t.Fatalf("Offset(%v) failed: %v", p, err)
		}
		if back != off {
			t.Fatalf("round trip %d -> %v -> %d", off, p, back)
		}
	})
}
