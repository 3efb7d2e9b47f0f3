package source

// Bias selects where an offset that falls inside replaced text is mapped to.
type Bias uint8

const (
	// BiasStart is used for range starts: offsets inside inserted text map to
	// the start of the replaced range, the offset right after it to its end.
	BiasStart Bias = iota
	// BiasEnd is used for range ends: the offset where inserted text begins
	// maps to the start of the replaced range, anything up to its end to the end.
	BiasEnd
)

// Journal remembers every round's changes so that offsets in the current
// buffer can be translated back into the original input.
type Journal struct {
	rounds [][]Change
}

// Record appends the changes of one applied batch.
// Changes must be in ascending Start order and non-overlapping, with
// Start/OldEnd expressed against the buffer the batch was applied to.
func (j *Journal) Record(changes []Change) {
	if len(changes) == 0 {
		return
	}
	cp := make([]Change, len(changes))
	copy(cp, changes)
	j.rounds = append(j.rounds, cp)
}

// Rounds returns how many non-empty batches were recorded.
func (j *Journal) Rounds() int {
	return len(j.rounds)
}

// ToOriginal maps an offset in the latest buffer to the original input.
func (j *Journal) ToOriginal(off int, bias Bias) int {
	for i := len(j.rounds) - 1; i >= 0; i-- {
		off = mapBack(j.rounds[i], off, bias)
	}
	return off
}

// SpanToOriginal maps a span of the latest buffer to the original input.
func (j *Journal) SpanToOriginal(s Span) Span {
	if len(j.rounds) == 0 {
		return s
	}
	start := j.ToOriginal(s.Start, BiasStart)
	end := j.ToOriginal(s.End, BiasEnd)
	if end < start {
		end = start
	}
	return Span{Start: start, End: end}
}

func mapBack(changes []Change, off int, bias Bias) int {
	delta := 0
	for _, c := range changes {
		newStart := c.Start + delta
		newEnd := c.NewEnd + delta
		if off < newStart {
			return off - delta
		}
		switch bias {
		case BiasEnd:
			if off == newStart {
				return c.Start
			}
			if off <= newEnd {
				return c.OldEnd
			}
		default:
			if off < newEnd {
				return c.Start
			}
			if off == newEnd {
				return c.OldEnd
			}
		}
		delta += c.Delta()
	}
	return off - delta
}
