package source

import (
	"fmt"
	"strings"
)

// Change describes one applied byte-range replacement in the shape the
// incremental parser expects: text in [Start, OldEnd) became text in
// [Start, NewEnd). Points are zero-based row/byte-column positions.
type Change struct {
	Start  int
	OldEnd int
	NewEnd int

	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

func (c Change) Delta() int {
	return c.NewEnd - c.OldEnd
}

func (c Change) String() string {
	return fmt.Sprintf("[%d,%d)->[%d,%d)", c.Start, c.OldEnd, c.Start, c.NewEnd)
}

// MakeChange builds a Change for replacing before[start:oldEnd] with text.
// Start and old-end points come from the pre-edit buffer; the new-end point is
// the start point advanced over the inserted text, which is the point the
// post-edit buffer would report for the same byte.
func MakeChange(before *Buffer, start, oldEnd int, text string) (Change, error) {
	idx := before.Index()
	sp, err := idx.Point(start)
	if err != nil {
		return Change{}, fmt.Errorf("change start: %w", err)
	}
	op, err := idx.Point(oldEnd)
	if err != nil {
		return Change{}, fmt.Errorf("change end: %w", err)
	}
	return Change{
		Start:       start,
		OldEnd:      oldEnd,
		NewEnd:      start + len(text),
		StartPoint:  sp,
		OldEndPoint: op,
		NewEndPoint: Advance(sp, text),
	}, nil
}

// Advance returns the point reached after writing text at p.
func Advance(p Point, text string) Point {
	nl := strings.Count(text, "\n")
	if nl == 0 {
		return Point{Row: p.Row, Column: p.Column + len(text)}
	}
	return Point{Row: p.Row + nl, Column: len(text) - strings.LastIndexByte(text, '\n') - 1}
}
