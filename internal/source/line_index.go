package source

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

var (
	// ErrOutOfRange is returned for byte offsets outside [0, len(text)].
	ErrOutOfRange = errors.New("offset out of range")
	// ErrInvalidPoint is returned when a row or column does not exist in the text.
	ErrInvalidPoint = errors.New("invalid point")
	// ErrMisalignedOffset is returned when an offset splits a multi-byte character.
	ErrMisalignedOffset = errors.New("offset splits a multi-byte character")
)

// Point is a zero-based (row, column) position; Column counts bytes since the line start.
type Point struct {
	Row    int
	Column int
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Column)
}

// LineCol is the 1-based human facing variant of Point.
type LineCol struct {
	Line int
	Col  int
}

// LineIndex maps byte offsets to points and back for one immutable text.
type LineIndex struct {
	text   string
	starts []int // starts[i] is the byte offset where row i begins
}

// BuildLineIndex scans text once and records every line start.
// An empty text still has one line starting at 0.
func BuildLineIndex(text string) *LineIndex {
	starts := make([]int, 1, 1+len(text)/32)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, starts: starts}
}

// LineCount returns the number of rows (a trailing newline opens an empty last row).
func (idx *LineIndex) LineCount() int {
	return len(idx.starts)
}

// LineStart returns the byte offset of the first byte of row.
func (idx *LineIndex) LineStart(row int) (int, error) {
	if row < 0 || row >= len(idx.starts) {
		return 0, fmt.Errorf("row %d of %d: %w", row, len(idx.starts), ErrInvalidPoint)
	}
	return idx.starts[row], nil
}

// LineLen returns the byte length of row excluding its terminating newline.
func (idx *LineIndex) LineLen(row int) (int, error) {
	start, err := idx.LineStart(row)
	if err != nil {
		return 0, err
	}
	if row+1 < len(idx.starts) {
		return idx.starts[row+1] - 1 - start, nil
	}
	return len(idx.text) - start, nil
}

// Point converts a byte offset into a zero-based row/column.
// An offset sitting on a '\n' belongs to the row that newline terminates.
func (idx *LineIndex) Point(off int) (Point, error) {
	if off < 0 || off > len(idx.text) {
		return Point{}, fmt.Errorf("byte %d (len %d): %w", off, len(idx.text), ErrOutOfRange)
	}
	if !idx.aligned(off) {
		return Point{}, fmt.Errorf("byte %d: %w", off, ErrMisalignedOffset)
	}
	// бинпоиск: наибольший starts[row] <= off
	row := sort.Search(len(idx.starts), func(i int) bool { return idx.starts[i] > off }) - 1
	return Point{Row: row, Column: off - idx.starts[row]}, nil
}

// Offset converts a point back into a byte offset.
func (idx *LineIndex) Offset(p Point) (int, error) {
	if p.Row < 0 || p.Row >= len(idx.starts) {
		return 0, fmt.Errorf("row %d of %d: %w", p.Row, len(idx.starts), ErrInvalidPoint)
	}
	lineLen, err := idx.LineLen(p.Row)
	if err != nil {
		return 0, err
	}
	if p.Column < 0 || p.Column > lineLen {
		return 0, fmt.Errorf("column %d exceeds line %d length %d: %w", p.Column, p.Row, lineLen, ErrInvalidPoint)
	}
	off := idx.starts[p.Row] + p.Column
	if !idx.aligned(off) {
		return 0, fmt.Errorf("point %s: %w", p, ErrMisalignedOffset)
	}
	return off, nil
}

// LineCol returns the 1-based line and column for off, clamping invalid offsets.
func (idx *LineIndex) LineCol(off int) LineCol {
	if off < 0 {
		off = 0
	}
	if off > len(idx.text) {
		off = len(idx.text)
	}
	row := sort.Search(len(idx.starts), func(i int) bool { return idx.starts[i] > off }) - 1
	return LineCol{Line: row + 1, Col: off - idx.starts[row] + 1}
}

// Line returns the text of row without its newline.
func (idx *LineIndex) Line(row int) string {
	start, err := idx.LineStart(row)
	if err != nil {
		return ""
	}
	n, _ := idx.LineLen(row)
	return idx.text[start : start+n]
}

// Aligned reports whether off is a valid character boundary of the indexed text.
func (idx *LineIndex) Aligned(off int) bool {
	return off >= 0 && off <= len(idx.text) && idx.aligned(off)
}

func (idx *LineIndex) aligned(off int) bool {
	if off == len(idx.text) {
		return true
	}
	return utf8.RuneStart(idx.text[off])
}
