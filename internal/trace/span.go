package trace

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns the next global event sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// running tracks the file spans still open, for the heartbeat.
var running sync.Map // span id -> label

// Running lists the labels of file spans that have begun but not ended.
func Running() []string {
	var out []string
	running.Range(func(_, v any) bool {
		out = append(out, v.(string))
		return true
	})
	sort.Strings(out)
	return out
}

// Span is an open interval of work. A Span returned for a filtered scope is
// inert: End and WithExtra do nothing.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	file    string
	started time.Time
	extra   map[string]string
}

var inert = &Span{tracer: Nop}

// Begin opens a span on t and emits its begin event.
func Begin(t Tracer, scope Scope, name string, parent uint64, file string) *Span {
	if t == nil || !t.Level().ShouldEmit(scope) {
		return inert
	}
	s := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		file:    file,
		started: time.Now(),
	}
	if scope == ScopeFile {
		label := file
		if label == "" {
			label = name
		}
		running.Store(s.id, label)
	}
	s.emit(KindSpanBegin, s.started, "", nil)
	return s
}

func (s *Span) emit(kind Kind, at time.Time, detail string, extra map[string]string) {
	s.tracer.Emit(&Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		File:     s.file,
		Name:     s.name,
		Detail:   detail,
		Extra:    extra,
	})
}

// End emits the end event with detail and the collected extras and returns
// the span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 {
		return 0
	}
	now := time.Now()
	if s.scope == ScopeFile {
		running.Delete(s.id)
	}
	s.emit(KindSpanEnd, now, detail, s.extra)
	return now.Sub(s.started)
}

// WithExtra records a key/value pair for the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 4)
	}
	s.extra[key] = value
	return s
}

// ID returns the span id, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// BeginCtx opens a span under the one active in ctx and returns a context
// in which the new span is active. Filtered spans leave ctx unchanged.
func BeginCtx(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	f := frameFrom(ctx)
	s := Begin(f.tracer, scope, name, f.span, f.file)
	if s.id == 0 {
		return s, ctx
	}
	f.span = s.id
	return s, withFrame(ctx, f)
}

// Point emits an instant event under the span active in ctx.
func Point(ctx context.Context, scope Scope, name, detail string, extra map[string]string) {
	f := frameFrom(ctx)
	if !f.tracer.Level().ShouldEmit(scope) {
		return
	}
	f.tracer.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: f.span,
		File:     f.file,
		Name:     name,
		Detail:   detail,
		Extra:    extra,
	})
}
