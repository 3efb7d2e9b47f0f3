package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) into a buffer.
type Span struct {
	Start int // в байтах включительно
	End   int // в байтах не включительно
}

// SpanOf builds a span, swapping the bounds if they are reversed.
func SpanOf(start, end int) Span {
	if end < start {
		start, end = end, start
	}
	return Span{Start: start, End: end}
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Contains reports whether off lies inside [Start, End).
func (s Span) Contains(off int) bool {
	return s.Start <= off && off < s.End
}

// Within reports whether the span fits into a buffer of length n.
func (s Span) Within(n int) bool {
	return s.Start >= 0 && s.Start <= s.End && s.End <= n
}

// Overlaps reports whether two spans share at least one byte.
// Spans that merely touch do not overlap.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

func (s Span) Shift(delta int) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}
