package edit

import (
	"errors"
	"fmt"
	"strings"

	"passfmt/internal/diag"
	"passfmt/internal/source"
)

var (
	// ErrStaleEdit marks an edit computed against an older buffer generation.
	ErrStaleEdit = errors.New("stale edit")
	// ErrInvalidRange marks an edit whose range does not fit the buffer.
	ErrInvalidRange = errors.New("edit range out of bounds")
	// ErrMisalignedOffset marks an edit boundary that splits a multi-byte character.
	ErrMisalignedOffset = source.ErrMisalignedOffset
	// ErrInvalidPlan is returned by Apply for plans that overlap or are out of order.
	ErrInvalidPlan = errors.New("invalid edit plan")
)

// Rejection is an edit dropped during validation.
type Rejection struct {
	Edit Edit
	Err  error
}

// Code maps the rejection reason to its diagnostic code.
func (r Rejection) Code() diag.Code {
	switch {
	case errors.Is(r.Err, ErrStaleEdit):
		return diag.EditStale
	case errors.Is(r.Err, ErrMisalignedOffset):
		return diag.EditMisalignedOffset
	default:
		return diag.EditInvalidRange
	}
}

// Conflict is a cluster of overlapping edits that disagree about the result.
type Conflict struct {
	PassA string
	PassB string
	Range source.Span
	Edits []Edit
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s and %s disagree on bytes %s", c.PassA, c.PassB, c.Range)
}

// ConflictError reports every conflict found in one batch.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 1 {
		return "edit conflict: " + e.Conflicts[0].String()
	}
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%d edit conflicts: %s", len(e.Conflicts), strings.Join(parts, "; "))
}
