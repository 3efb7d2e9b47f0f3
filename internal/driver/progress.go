package driver

import "time"

// Stage is the step a file is in.
type Stage uint8

const (
	StageRead   Stage = iota // load and normalise
	StageFormat              // engine run or cache lookup
	StageWrite               // write back to disk
)

var stageNames = [...]string{StageRead: "read", StageFormat: "format", StageWrite: "write"}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "stage?"
}

// Status is the state of a file within its Stage.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

var statusNames = [...]string{
	StatusQueued:  "queued",
	StatusWorking: "working",
	StatusDone:    "done",
	StatusError:   "error",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "status?"
}

// Event reports progress for a file. Every file gets one StatusQueued event
// and ends with exactly one StatusDone or StatusError event.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Changed bool
	Cached  bool
	Rounds  int // engine rounds, set on StatusDone
	Err     error
	Elapsed time.Duration
}

// Final reports whether no more events follow for ev.File.
func (ev Event) Final() bool {
	return ev.Status == StatusDone || ev.Status == StatusError
}

// ProgressSink receives events from worker goroutines concurrently.
type ProgressSink interface {
	OnEvent(Event)
}

// ChanSink sends every event to the channel, blocking when it is full.
type ChanSink chan<- Event

func (c ChanSink) OnEvent(ev Event) { c <- ev }

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(ev Event) { f(ev) }

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
