package edit

import (
	"fmt"
	"strings"

	"passfmt/internal/source"
)

// StepFunc observes one applied edit. before is the buffer the plan was
// resolved against and after the buffer produced by the whole plan. Steps are
// called in application order (highest offset first), so ch is valid against
// the tree state left by the previous step.
type StepFunc func(ch source.Change, before, after *source.Buffer) error

// Apply executes plan against buf and returns the next generation buffer plus
// the applied changes in ascending Start order.
func Apply(buf *source.Buffer, plan Plan, step StepFunc) (*source.Buffer, []source.Change, error) {
	if len(plan) == 0 {
		return buf, nil, nil
	}
	if err := CheckPlan(buf.Len(), plan); err != nil {
		return buf, nil, err
	}

	text := buf.Text()
	changes := make([]source.Change, len(plan))
	growth := 0
	for i, e := range plan {
		ch, err := source.MakeChange(buf, e.Start, e.OldEnd, e.NewText)
		if err != nil {
			return buf, nil, fmt.Errorf("%w: %s: %w", ErrInvalidPlan, e, err)
		}
		changes[len(plan)-1-i] = ch
		growth += e.Delta()
	}

	var sb strings.Builder
	if growth > 0 {
		sb.Grow(len(text) + growth)
	} else {
		sb.Grow(len(text))
	}
	last := 0
	for i := len(plan) - 1; i >= 0; i-- {
		e := plan[i]
		sb.WriteString(text[last:e.Start])
		sb.WriteString(e.NewText)
		last = e.OldEnd
	}
	sb.WriteString(text[last:])
	next := buf.Derive(sb.String())

	if step != nil {
		for i := len(changes) - 1; i >= 0; i-- {
			if err := step(changes[i], buf, next); err != nil {
				return buf, nil, err
			}
		}
	}
	return next, changes, nil
}

// CheckPlan verifies that plan is sorted by Start descending, fits a buffer of
// n bytes and holds no overlapping edits.
func CheckPlan(n int, plan Plan) error {
	for i, e := range plan {
		if e.Start < 0 || e.OldEnd < e.Start || e.OldEnd > n {
			return fmt.Errorf("%w: %s out of bounds", ErrInvalidPlan, e)
		}
		if i == 0 {
			continue
		}
		prev := plan[i-1] // starts at or after e
		if prev.Start < e.Start || (prev.Start == e.Start && prev.OldEnd < e.OldEnd) {
			return fmt.Errorf("%w: %s and %s out of order", ErrInvalidPlan, prev, e)
		}
		if e.OldEnd > prev.Start {
			return fmt.Errorf("%w: %s overlaps %s", ErrInvalidPlan, e, prev)
		}
		if e.IsInsert() && prev.IsInsert() && e.Start == prev.Start {
			return fmt.Errorf("%w: two inserts at byte %d", ErrInvalidPlan, e.Start)
		}
	}
	return nil
}
