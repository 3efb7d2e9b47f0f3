package edit

import (
	"fmt"
	"strconv"

	"passfmt/internal/source"
)

// Edit replaces the bytes [Start, OldEnd) of one buffer generation with NewText.
// Insertions have Start == OldEnd, deletions an empty NewText.
type Edit struct {
	Start   int
	OldEnd  int
	NewText string

	// Provenance. Order is the registration index of the emitting pass, Seq the
	// index of the edit in that pass' output. Generation 0 means "not stamped yet".
	Pass       string
	Order      int
	Seq        int
	Generation source.Generation
}

// Insert creates an edit inserting text at offset at.
func Insert(at int, text string) Edit {
	return Edit{Start: at, OldEnd: at, NewText: text}
}

// Delete creates an edit removing [start, end).
func Delete(start, end int) Edit {
	return Edit{Start: start, OldEnd: end}
}

// Replace creates an edit replacing [start, end) with text.
func Replace(start, end int, text string) Edit {
	return Edit{Start: start, OldEnd: end, NewText: text}
}

// Span returns the replaced range.
func (e Edit) Span() source.Span {
	return source.Span{Start: e.Start, End: e.OldEnd}
}

// Delta is the change in buffer length after applying e.
func (e Edit) Delta() int {
	return len(e.NewText) - (e.OldEnd - e.Start)
}

// IsInsert reports whether e replaces nothing.
func (e Edit) IsInsert() bool {
	return e.Start == e.OldEnd
}

// IsNoOp reports whether applying e to text would leave it unchanged.
func (e Edit) IsNoOp(text string) bool {
	if e.Start < 0 || e.Start > e.OldEnd || e.OldEnd > len(text) {
		return false
	}
	return text[e.Start:e.OldEnd] == e.NewText
}

// Stamp records which pass emitted e, its registration order and its index
// in that pass' output. Generation is set only when e does not carry one.
func (e Edit) Stamp(pass string, order, seq int, gen source.Generation) Edit {
	e.Pass = pass
	e.Order = order
	e.Seq = seq
	if e.Generation == 0 {
		e.Generation = gen
	}
	return e
}

func (e Edit) String() string {
	who := e.Pass
	if who == "" {
		who = "?"
	}
	return fmt.Sprintf("%s: [%d,%d) -> %s", who, e.Start, e.OldEnd, strconv.Quote(e.NewText))
}

// key identifies an edit's effect regardless of who proposed it.
type key struct {
	start, end int
	text       string
}

func (e Edit) key() key {
	return key{start: e.Start, end: e.OldEnd, text: e.NewText}
}
