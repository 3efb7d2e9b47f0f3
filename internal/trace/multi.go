package trace

import "errors"

// multiTracer forwards every event to each of its tracers.
type multiTracer []Tracer

// Multi combines tracers; its level is the most verbose of theirs.
func Multi(tracers ...Tracer) Tracer {
	switch len(tracers) {
	case 0:
		return Nop
	case 1:
		return tracers[0]
	}
	return multiTracer(tracers)
}

func (m multiTracer) Emit(ev *Event) {
	for _, t := range m {
		// копия на каждого: ring переписывает Seq
		cp := *ev
		t.Emit(&cp)
	}
}

func (m multiTracer) Flush() error {
	errs := make([]error, 0, len(m))
	for _, t := range m {
		errs = append(errs, t.Flush())
	}
	return errors.Join(errs...)
}

func (m multiTracer) Close() error {
	errs := make([]error, 0, len(m))
	for _, t := range m {
		errs = append(errs, t.Close())
	}
	return errors.Join(errs...)
}

func (m multiTracer) Level() Level {
	var l Level
	for _, t := range m {
		l = max(l, t.Level())
	}
	return l
}

func (m multiTracer) Enabled() bool { return m.Level() > LevelOff }

// ring returns the first ring tracer among m, if any.
func (m multiTracer) ring() *RingTracer {
	for _, t := range m {
		if r, ok := t.(*RingTracer); ok {
			return r
		}
	}
	return nil
}
