package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // nothing is streamed; a ring is dumped on exit
	LevelPhase        // driver and file boundaries
	LevelDetail       // plus rounds
	LevelDebug        // plus single passes
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// finest is the most detailed scope each level lets through; 0 lets nothing.
var finest = [...]Scope{
	LevelOff:    0,
	LevelError:  0,
	LevelPhase:  ScopeFile,
	LevelDetail: ScopeRound,
	LevelDebug:  ScopePass,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by String; empty means off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(finest) {
		return false
	}
	return scope != 0 && scope <= finest[l]
}

// accepts is the filter shared by the storing tracers: heartbeats always
// pass, everything else by scope.
func accepts(l Level, ev *Event) bool {
	if l == LevelOff {
		return false
	}
	return ev.Kind == KindHeartbeat || l.ShouldEmit(ev.Scope)
}
