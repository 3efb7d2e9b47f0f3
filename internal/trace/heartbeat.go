package trace

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Heartbeat periodically emits an event naming the files still being
// formatted. A file that keeps showing up is stuck in its rounds or parse.
type Heartbeat struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartHeartbeat starts beating on t every interval. It returns nil when t
// is disabled or interval is not positive; Stop on nil is a no-op.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{stop: make(chan struct{}), done: make(chan struct{})}
	go h.loop(t, interval)
	return h
}

func (h *Heartbeat) loop(t Tracer, interval time.Duration) {
	defer close(h.done)
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for beat := 1; ; beat++ {
		select {
		case <-h.stop:
			return
		case now := <-tick.C:
			t.Emit(beatEvent(now, beat, Running()))
		}
	}
}

func beatEvent(now time.Time, beat int, files []string) *Event {
	detail := "idle"
	if len(files) > 0 {
		detail = "running: " + strings.Join(files, ", ")
	}
	return &Event{
		Time:   now,
		Seq:    NextSeq(),
		Kind:   KindHeartbeat,
		Scope:  ScopeDriver,
		Name:   "heartbeat #" + strconv.Itoa(beat),
		Detail: detail,
	}
}

// Stop ends the heartbeat and waits for its goroutine.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
