package diag

import (
	"passfmt/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Pass     string
	Message  string
	Range    source.Span
	Notes    []Note
}

func New(sev Severity, code Code, rng source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Range:    rng,
		Message:  msg,
	}
}

func NewError(code Code, rng source.Span, msg string) Diagnostic {
	return New(SevError, code, rng, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithPass(name string) Diagnostic {
	d.Pass = name
	return d
}

// MapRanges returns a copy of d with every span passed through fn.
func (d Diagnostic) MapRanges(fn func(source.Span) source.Span) Diagnostic {
	d.Range = fn(d.Range)
	if len(d.Notes) > 0 {
		notes := make([]Note, len(d.Notes))
		for i, n := range d.Notes {
			notes[i] = Note{Span: fn(n.Span), Msg: n.Msg}
		}
		d.Notes = notes
	}
	return d
}
