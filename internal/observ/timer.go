// Package observ records how long the phases of a formatting run take.
package observ

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RoundPrefix starts the name of every fixed-point round phase.
const RoundPrefix = "round "

// Phase is one timed step of a run: "parse" or "round N".
type Phase struct {
	Name  string
	Note  string
	Start time.Time
	Dur   time.Duration
}

func (p Phase) round() bool { return strings.HasPrefix(p.Name, RoundPrefix) }

// Timer collects the phases of one file's run. A nil *Timer ignores every
// call, so the engine records unconditionally. Not safe for concurrent use:
// each file gets its own.
type Timer struct {
	phases []Phase
}

func NewTimer() *Timer { return &Timer{} }

// Begin opens a phase and returns the handle End expects.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase opened by Begin; unknown handles are ignored.
func (t *Timer) End(handle int, note string) {
	if t == nil || handle < 0 || handle >= len(t.phases) {
		return
	}
	p := &t.phases[handle]
	p.Dur, p.Note = time.Since(p.Start), note
}

func (t *Timer) Phases() []Phase {
	if t == nil {
		return nil
	}
	return t.phases
}

// PhaseReport is the serialisable form of a Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates a run: the round phases are summed separately so a file
// that needs many rounds stands out from one that is slow to parse.
type Report struct {
	TotalMS  float64       `json:"total_ms"`
	RoundsMS float64       `json:"rounds_ms"`
	Rounds   int           `json:"rounds"`
	Slowest  string        `json:"slowest,omitempty"`
	Phases   []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	var r Report
	if t == nil || len(t.phases) == 0 {
		return r
	}
	r.Phases = make([]PhaseReport, 0, len(t.phases))
	var total, rounds, slowest time.Duration
	for _, p := range t.phases {
		r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note})
		total += p.Dur
		if p.round() {
			r.Rounds++
			rounds += p.Dur
		}
		if p.Dur >= slowest {
			slowest, r.Slowest = p.Dur, p.Name
		}
	}
	r.TotalMS, r.RoundsMS = millis(total), millis(rounds)
	return r
}

// Summary renders the report as an indented table.
func (t *Timer) Summary() string {
	r := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-12s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-12s %8.2f ms in %d round(s)\n", "rounds", r.RoundsMS, r.Rounds)
	fmt.Fprintf(&sb, "  %-12s %8.2f ms, slowest %s\n", "total", r.TotalMS, r.Slowest)
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type timerKey struct{}

// WithTimer attaches t to ctx for the engine to record into.
func WithTimer(ctx context.Context, t *Timer) context.Context {
	return context.WithValue(ctx, timerKey{}, t)
}

// TimerFrom returns the timer stored in ctx, or nil.
func TimerFrom(ctx context.Context) *Timer {
	t, _ := ctx.Value(timerKey{}).(*Timer)
	return t
}
