package diag

import "sort"

// Bag collects the diagnostics of one file. A positive limit caps how many
// are kept; the rest are only counted.
type Bag struct {
	items   []Diagnostic
	limit   int
	dropped int
}

func NewBag(limit int) *Bag {
	return &Bag{limit: limit}
}

// Add reports false when the limit was reached and d was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if b.limit > 0 && len(b.items) >= b.limit {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Len() int { return len(b.items) }

// Dropped counts diagnostics rejected by the limit.
func (b *Bag) Dropped() int { return b.dropped }

// Items shares the backing array; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

func (b *Bag) HasErrors() bool { return HasErrors(b.items) }

func (b *Bag) Sort() { Sort(b.items) }

// HasErrors reports whether any diagnostic is an Error.
func HasErrors(items []Diagnostic) bool {
	for _, d := range items {
		if d.Severity == SevError {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by span, then most severe first, then code.
func Sort(items []Diagnostic) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Range, items[j].Range
		switch {
		case a.Start != b.Start:
			return a.Start < b.Start
		case a.End != b.End:
			return a.End < b.End
		case items[i].Severity != items[j].Severity:
			return items[i].Severity > items[j].Severity
		}
		return items[i].Code < items[j].Code
	})
}
