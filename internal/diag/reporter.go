package diag

import "passfmt/internal/source"

// Reporter принимает диагностики от движка и проходов.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// BagReporter stores into Bag; a nil Bag discards.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// Pending is a diagnostic under construction. Nothing reaches the
// reporter until Emit.
type Pending struct {
	to   Reporter
	d    Diagnostic
	sent bool
}

func report(r Reporter, sev Severity, code Code, rng source.Span, msg string) *Pending {
	return &Pending{to: r, d: New(sev, code, rng, msg)}
}

func ReportError(r Reporter, code Code, rng source.Span, msg string) *Pending {
	return report(r, SevError, code, rng, msg)
}

func ReportWarning(r Reporter, code Code, rng source.Span, msg string) *Pending {
	return report(r, SevWarning, code, rng, msg)
}

func ReportInfo(r Reporter, code Code, rng source.Span, msg string) *Pending {
	return report(r, SevInfo, code, rng, msg)
}

func (p *Pending) WithNote(sp source.Span, msg string) *Pending {
	p.d = p.d.WithNote(sp, msg)
	return p
}

func (p *Pending) WithPass(name string) *Pending {
	p.d.Pass = name
	return p
}

// Emit is idempotent: a second call is ignored.
func (p *Pending) Emit() {
	if p.sent || p.to == nil {
		return
	}
	p.sent = true
	p.to.Report(p.d)
}

// identity is what makes two reports the same finding. Notes are left out:
// a pass that re-reports each round attaches the same context anyway.
type identity struct {
	sev        Severity
	code       Code
	pass       string
	start, end int
	msg        string
}

func identityOf(d Diagnostic) identity {
	return identity{d.Severity, d.Code, d.Pass, d.Range.Start, d.Range.End, d.Message}
}

// DedupReporter forwards each distinct finding once. The engine wraps its
// bag with one so a pass warning on every round is recorded a single time.
type DedupReporter struct {
	next Reporter
	seen map[identity]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: map[identity]struct{}{}}
}

func (r *DedupReporter) Report(d Diagnostic) {
	id := identityOf(d)
	if _, dup := r.seen[id]; dup {
		return
	}
	r.seen[id] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}
