package edit

import (
	"fmt"
	"sort"

	"passfmt/internal/diag"
	"passfmt/internal/source"
)

// Plan is a set of non-overlapping edits sorted by Start descending, ready to
// be applied from the end of the buffer towards its beginning.
type Plan []Edit

func (p Plan) Empty() bool { return len(p) == 0 }

// Resolution is the outcome of resolving one batch.
type Resolution struct {
	Plan       Plan
	Rejected   []Rejection
	Conflicts  []Conflict
	Duplicates int // edits collapsed into an identical one
	NoOps      int // edits that would not change the text
}

// Diagnostics converts rejections and conflicts into diagnostics whose ranges
// are expressed against the buffer the batch was resolved for.
func (r *Resolution) Diagnostics() []diag.Diagnostic {
	if r == nil {
		return nil
	}
	out := make([]diag.Diagnostic, 0, len(r.Rejected)+len(r.Conflicts))
	for _, rej := range r.Rejected {
		rng := rej.Edit.Span()
		if rng.Start < 0 || rng.End < rng.Start {
			rng = source.Span{}
		}
		out = append(out, diag.New(diag.SevWarning, rej.Code(), rng,
			fmt.Sprintf("edit dropped: %v", rej.Err)).WithPass(rej.Edit.Pass))
	}
	for _, c := range r.Conflicts {
		d := diag.New(diag.SevError, diag.EditConflict, c.Range,
			fmt.Sprintf("conflicting edits from %s and %s were not applied", c.PassA, c.PassB)).WithPass(c.PassA)
		for _, e := range c.Edits {
			d = d.WithNote(e.Span(), e.String())
		}
		out = append(out, d)
	}
	return out
}

// Resolver turns the edits proposed in one round into an applicable Plan.
type Resolver struct {
	// Strict makes any conflict discard the whole batch.
	Strict bool
}

// Resolve validates, deduplicates and orders edits proposed against buf.
// When conflicts are found the returned error is a *ConflictError; the
// Resolution is always non-nil and in non-strict mode still carries the
// conflict-free part of the batch.
func (r Resolver) Resolve(buf *source.Buffer, edits []Edit) (*Resolution, error) {
	res := &Resolution{}
	valid := make([]Edit, 0, len(edits))
	for _, e := range edits {
		if err := validate(buf, e); err != nil {
			res.Rejected = append(res.Rejected, Rejection{Edit: e, Err: err})
			continue
		}
		valid = append(valid, e)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		a, b := valid[i], valid[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.OldEnd != b.OldEnd {
			return a.OldEnd < b.OldEnd
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Seq < b.Seq
	})

	accepted := make([]Edit, 0, len(valid))
	for i := 0; i < len(valid); {
		j := i + 1
		end := valid[i].OldEnd
		insertAtEnd := valid[i].IsInsert()
		for j < len(valid) && overlapsCluster(valid[j], end, insertAtEnd) {
			if valid[j].OldEnd > end {
				end = valid[j].OldEnd
				insertAtEnd = false
			}
			if valid[j].IsInsert() && valid[j].Start == end {
				insertAtEnd = true
			}
			j++
		}
		cluster := valid[i:j]
		i = j

		// no-op edits take part in conflict detection and are only
		// dropped once their cluster agrees on a single edit
		if c, ok := conflictIn(cluster); ok {
			res.Conflicts = append(res.Conflicts, c)
			continue
		}
		if cluster[0].IsNoOp(buf.Text()) {
			res.NoOps += len(cluster)
			continue
		}
		accepted = append(accepted, cluster[0])
		res.Duplicates += len(cluster) - 1
	}

	if len(res.Conflicts) > 0 && r.Strict {
		return res, &ConflictError{Conflicts: res.Conflicts}
	}

	res.Plan = make(Plan, len(accepted))
	for i, e := range accepted {
		res.Plan[len(accepted)-1-i] = e
	}
	if len(res.Conflicts) > 0 {
		return res, &ConflictError{Conflicts: res.Conflicts}
	}
	return res, nil
}

func validate(buf *source.Buffer, e Edit) error {
	if e.Generation != 0 && e.Generation != buf.Generation() {
		return fmt.Errorf("%w: computed for generation %d, buffer is at %d", ErrStaleEdit, e.Generation, buf.Generation())
	}
	if e.Start < 0 || e.OldEnd < e.Start || e.OldEnd > buf.Len() {
		return fmt.Errorf("%w: [%d,%d) in buffer of %d bytes", ErrInvalidRange, e.Start, e.OldEnd, buf.Len())
	}
	idx := buf.Index()
	if !idx.Aligned(e.Start) {
		return fmt.Errorf("%w: start byte %d", ErrMisalignedOffset, e.Start)
	}
	if !idx.Aligned(e.OldEnd) {
		return fmt.Errorf("%w: end byte %d", ErrMisalignedOffset, e.OldEnd)
	}
	return nil
}

// overlapsCluster reports whether next belongs to a cluster ending at end.
// Zero-length inserts at the same point overlap each other; edits that only
// touch the cluster do not.
func overlapsCluster(next Edit, end int, insertAtEnd bool) bool {
	if next.Start < end {
		return true
	}
	return next.Start == end && next.IsInsert() && insertAtEnd
}

// conflictIn reports a conflict when the cluster holds more than one distinct edit.
func conflictIn(cluster []Edit) (Conflict, bool) {
	first := cluster[0]
	for _, e := range cluster[1:] {
		if e.key() == first.key() {
			continue
		}
		rng := first.Span()
		for _, o := range cluster[1:] {
			rng = rng.Cover(o.Span())
		}
		return Conflict{
			PassA: first.Pass,
			PassB: e.Pass,
			Range: rng,
			Edits: append([]Edit(nil), cluster...),
		}, true
	}
	return Conflict{}, false
}
