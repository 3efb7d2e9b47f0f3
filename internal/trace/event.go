package trace

import "time"

// Kind is what an event marks.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; smaller values are coarser.
type Scope uint8

const (
	// ScopeDriver covers a whole invocation: collecting, scheduling, writing.
	ScopeDriver Scope = iota + 1
	// ScopeFile covers one engine run over a single file.
	ScopeFile
	// ScopeRound covers one fixed-point round.
	ScopeRound
	// ScopePass covers a single pass inside a round.
	ScopePass
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopeFile:   "file",
	ScopeRound:  "round",
	ScopePass:   "pass",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record. File is inherited from the context the event
// was emitted under, so events of files formatted in parallel can be told
// apart.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	File     string
	Name     string // "format go", "round 2", "pass:final_newline"
	Detail   string
	Extra    map[string]string
}
