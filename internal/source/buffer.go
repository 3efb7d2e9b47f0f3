package source

import (
	"sync"
)

// Generation identifies one version of a buffer within a formatting run.
// Zero means "unknown"; the first buffer of a run is generation 1.
type Generation uint64

// Buffer is an immutable text snapshot plus its lazily built LineIndex.
// A new Buffer is derived after every applied batch; old ones are never mutated.
type Buffer struct {
	text string
	gen  Generation

	once  sync.Once
	index *LineIndex
}

// NewBuffer creates the first generation of a buffer.
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text, gen: 1}
}

// Derive returns the next generation holding text.
func (b *Buffer) Derive(text string) *Buffer {
	return &Buffer{text: text, gen: b.gen + 1}
}

func (b *Buffer) Text() string { return b.text }

// Bytes returns a fresh copy of the text.
func (b *Buffer) Bytes() []byte { return []byte(b.text) }

func (b *Buffer) Len() int { return len(b.text) }

func (b *Buffer) Generation() Generation { return b.gen }

// Index returns the coordinate index, building it on first use.
func (b *Buffer) Index() *LineIndex {
	b.once.Do(func() {
		b.index = BuildLineIndex(b.text)
	})
	return b.index
}

// Point is shorthand for Index().Point(off).
func (b *Buffer) Point(off int) (Point, error) {
	return b.Index().Point(off)
}

// Slice returns text[s.Start:s.End], or "" when s does not fit.
func (b *Buffer) Slice(s Span) string {
	if !s.Within(len(b.text)) {
		return ""
	}
	return b.text[s.Start:s.End]
}
