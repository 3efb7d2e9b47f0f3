package trace

import (
	"io"
	"sync"
)

// DefaultRingSize is the ring capacity used when none is configured.
const DefaultRingSize = 4096

// RingTracer keeps the most recent events in memory so a run can be
// inspected after the fact, e.g. when a file never converges.
type RingTracer struct {
	mu     sync.Mutex
	buf    []Event
	total  uint64 // events ever stored; the next slot is total % len(buf)
	level  Level
}

func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingTracer{buf: make([]Event, size), level: level}
}

// RingOf returns the ring t stores into, directly or as part of a Multi.
func RingOf(t Tracer) *RingTracer {
	switch t := t.(type) {
	case *RingTracer:
		return t
	case multiTracer:
		return t.ring()
	}
	return nil
}

func (r *RingTracer) Emit(ev *Event) {
	if !accepts(r.level, ev) {
		return
	}
	r.mu.Lock()
	slot := &r.buf[r.total%uint64(len(r.buf))]
	*slot = *ev
	slot.Seq = NextSeq()
	r.total++
	r.mu.Unlock()
}

// Snapshot copies the stored events, oldest first.
func (r *RingTracer) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	size := uint64(len(r.buf))
	n := min(r.total, size)
	out := make([]Event, 0, n)
	for i := r.total - n; i < r.total; i++ {
		out = append(out, r.buf[i%size])
	}
	return out
}

// Dump writes the stored events to w, oldest first.
func (r *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range r.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (r *RingTracer) Flush() error  { return nil }
func (r *RingTracer) Close() error  { return nil }
func (r *RingTracer) Level() Level  { return r.level }
func (r *RingTracer) Enabled() bool { return r.level > LevelOff }
