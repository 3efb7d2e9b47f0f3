// Package engine drives a pipeline of passes over one text until it stops
// changing: parse, run every pass, resolve the proposed edits into a plan,
// apply the plan, reparse incrementally and repeat.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"passfmt/internal/diag"
	"passfmt/internal/edit"
	"passfmt/internal/observ"
	"passfmt/internal/pipeline"
	"passfmt/internal/source"
	"passfmt/internal/syntax"
	"passfmt/internal/trace"
)

// DefaultMaxRounds bounds a run when Options.MaxRounds is not set.
const DefaultMaxRounds = 10

// oscillationWindow is how many final rounds are searched for recurring
// edits when the round limit is hit.
const oscillationWindow = 4

// Options tune a run.
type Options struct {
	MaxRounds    int
	Strict       bool
	ParseTimeout time.Duration
}

// Result is the outcome of one run. Diagnostic ranges refer to the input text.
type Result struct {
	Text        string
	Changed     bool
	Rounds      int
	State       State
	Diagnostics []diag.Diagnostic
}

// Engine formats text with a fixed pipeline. It holds no per-run state and
// may be shared between goroutines.
type Engine[C any] struct {
	registry *syntax.Registry
	pipeline *pipeline.Pipeline[C]
	opts     Options
	// editTree tells a forked tree about one applied change; nil means
	// (*syntax.Tree).Edit. Tests swap it to fail a round on purpose.
	editTree func(*syntax.Tree, source.Change) error
}

func New[C any](registry *syntax.Registry, p *pipeline.Pipeline[C], opts Options) *Engine[C] {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	return &Engine[C]{registry: registry, pipeline: p, opts: opts}
}

func (e *Engine[C]) Options() Options { return e.opts }

// Format runs the pipeline over text until a fixed point or the round limit.
// The error is non-nil only when the run aborted; it wraps the cause
// (syntax.ErrGrammarUnavailable, syntax.ErrParseTimeout, syntax.ErrReparse,
// syntax.ErrUnknownLanguage or *edit.ConflictError in strict mode) and the
// result still holds the last consistent text.
func (e *Engine[C]) Format(ctx context.Context, text, language string, cfg C) (*Result, error) {
	r := &run[C]{
		engine: e,
		input:  text,
		timer:  observ.TimerFrom(ctx),
		bag:    diag.NewBag(0),
	}
	r.out = diag.NewDedupReporter(diag.BagReporter{Bag: r.bag})
	r.in = diag.ReporterFunc(func(d diag.Diagnostic) {
		r.out.Report(d.MapRanges(r.journal.SpanToOriginal))
	})
	span, ctx := trace.BeginCtx(ctx, trace.ScopeFile, "format "+language)
	res, err := r.execute(ctx, language, cfg)
	span.WithExtra("rounds", strconv.Itoa(res.Rounds)).
		WithExtra("diagnostics", strconv.Itoa(len(res.Diagnostics))).
		End(res.State.String())
	return res, err
}

// Check reports whether text is already formatted.
func (e *Engine[C]) Check(ctx context.Context, text, language string, cfg C) (bool, error) {
	res, err := e.Format(ctx, text, language, cfg)
	if err != nil {
		return false, err
	}
	return !res.Changed, nil
}

// run is the state of one Format call.
type run[C any] struct {
	engine  *Engine[C]
	input   string
	timer   *observ.Timer
	state   State
	rounds  int
	journal source.Journal
	bag     *diag.Bag
	// in maps ranges from the current buffer to the input; out expects
	// input ranges and drops repeats of a diagnostic seen in an earlier round.
	in, out diag.Reporter
	tree    *syntax.Tree
	// recent holds, per applied round, what each plan entry did.
	recent [][]recurrence
}

type recurrence struct {
	pass, old, new string
	rng            source.Span // in input coordinates
}

func (r *run[C]) enter(ctx context.Context, s State) {
	r.state = s
	trace.Point(ctx, trace.ScopePass, "state", s.String(), nil)
}

// report maps d from the current buffer to the input and records it.
func (r *run[C]) report(ds ...diag.Diagnostic) {
	for _, d := range ds {
		r.in.Report(d)
	}
}

func (r *run[C]) result() *Result {
	text := r.input
	if r.tree != nil {
		text = r.tree.Buffer().Text()
	}
	r.bag.Sort()
	return &Result{
		Text:        text,
		Changed:     text != r.input,
		Rounds:      r.rounds,
		State:       r.state,
		Diagnostics: r.bag.Items(),
	}
}

func (r *run[C]) abort(ctx context.Context, code diag.Code, rng source.Span, err error) (*Result, error) {
	diag.ReportError(r.in, code, rng, err.Error()).Emit()
	r.enter(ctx, StateAborted)
	return r.result(), err
}

func (r *run[C]) execute(ctx context.Context, language string, cfg C) (*Result, error) {
	e := r.engine
	r.enter(ctx, StateParsing)

	lang, err := e.registry.Lookup(language)
	if err != nil {
		return r.abort(ctx, diag.IOUnknownLanguage, source.Span{}, err)
	}
	parser, err := syntax.NewParser(lang, e.opts.ParseTimeout)
	if err != nil {
		return r.abort(ctx, fatalCode(err), source.Span{}, err)
	}
	defer parser.Release()

	phase := r.timer.Begin("parse")
	tree, err := parser.Parse(ctx, source.NewBuffer(r.input))
	r.timer.End(phase, language)
	if err != nil {
		return r.abort(ctx, fatalCode(err), source.Span{}, err)
	}
	r.tree = tree
	clean := r.checkSyntax(diag.EngSyntaxErrors, "input has %d syntax error(s)")

	resolver := edit.Resolver{Strict: e.opts.Strict}
	for round := 1; ; round++ {
		if round > e.opts.MaxRounds {
			r.roundLimit()
			break
		}
		done, err := r.round(ctx, parser, &resolver, cfg, round, &clean)
		if err != nil {
			return r.result(), err
		}
		if done {
			break
		}
	}
	r.enter(ctx, StateDone)
	return r.result(), nil
}

// round executes one pipeline round; it reports true once the plan is empty.
func (r *run[C]) round(ctx context.Context, parser *syntax.Parser, resolver *edit.Resolver, cfg C, round int, clean *bool) (bool, error) {
	r.rounds = round
	name := observ.RoundPrefix + strconv.Itoa(round)
	phase := r.timer.Begin(name)
	span, ctx := trace.BeginCtx(ctx, trace.ScopeRound, name)
	note := ""
	defer func() {
		r.timer.End(phase, note)
		span.End(note)
	}()

	r.enter(ctx, StateRoundExecuting)
	edits, passDiags := r.engine.pipeline.RunRound(ctx, cfg, r.tree, round)
	r.report(passDiags...)

	r.enter(ctx, StateBatchResolving)
	buf := r.tree.Buffer()
	res, err := resolver.Resolve(buf, edits)
	r.report(res.Diagnostics()...)
	trace.Point(ctx, trace.ScopeRound, "resolve", "", map[string]string{
		"proposed":   strconv.Itoa(len(edits)),
		"plan":       strconv.Itoa(len(res.Plan)),
		"rejected":   strconv.Itoa(len(res.Rejected)),
		"conflicts":  strconv.Itoa(len(res.Conflicts)),
		"duplicates": strconv.Itoa(res.Duplicates),
		"noops":      strconv.Itoa(res.NoOps),
	})
	if err != nil && resolver.Strict {
		note = "conflict"
		r.enter(ctx, StateAborted)
		return true, fmt.Errorf("round %d: %w", round, err)
	}
	if res.Plan.Empty() {
		note = "converged"
		return true, nil
	}

	r.enter(ctx, StateApplying)
	applied := make([]recurrence, 0, len(res.Plan))
	for _, pe := range res.Plan {
		applied = append(applied, recurrence{
			pass: pe.Pass,
			old:  buf.Slice(pe.Span()),
			new:  pe.NewText,
			rng:  r.journal.SpanToOriginal(pe.Span()),
		})
	}
	// r.tree stays paired with buf until the reparse succeeds
	edited := r.tree.Fork()
	editTree := r.engine.editTree
	if editTree == nil {
		editTree = (*syntax.Tree).Edit
	}
	next, changes, err := edit.Apply(buf, res.Plan, func(ch source.Change, _, _ *source.Buffer) error {
		return editTree(edited, ch)
	})
	if err != nil {
		note = "apply failed"
		_, err = r.abort(ctx, diag.EngReparseFailed, source.Span{}, fmt.Errorf("round %d: %w", round, err))
		return true, err
	}
	tree, err := parser.Reparse(ctx, edited, next)
	if err != nil {
		note = "reparse failed"
		_, err = r.abort(ctx, fatalCode(err), source.Span{}, fmt.Errorf("round %d: %w", round, err))
		return true, err
	}
	r.journal.Record(changes)
	r.tree = tree
	r.recent = append(r.recent, applied)
	trace.Point(ctx, trace.ScopeRound, "apply", "", map[string]string{
		"edits": strconv.Itoa(len(changes)),
		"bytes": strconv.Itoa(next.Len()),
	})

	if *clean {
		*clean = r.checkSyntax(diag.EngSyntaxRegressed, "round "+strconv.Itoa(round)+" introduced %d syntax error(s)")
	}
	return false, nil
}

// checkSyntax reports a warning at the first syntax error of the current
// tree and returns whether the tree is error free.
func (r *run[C]) checkSyntax(code diag.Code, format string) bool {
	rng, ok := r.tree.FirstError()
	if !ok {
		return true
	}
	diag.ReportWarning(r.in, code, rng, fmt.Sprintf(format, r.tree.ErrorCount())).Emit()
	return false
}

// roundLimit reports the exhausted round budget and the edits that kept
// coming back in the final rounds.
func (r *run[C]) roundLimit() {
	limit := r.engine.opts.MaxRounds
	diag.ReportInfo(r.in, diag.RunMaxRounds, source.Span{},
		fmt.Sprintf("no fixed point after %d rounds", limit)).Emit()

	window := min(oscillationWindow, len(r.recent))
	final := r.recent[len(r.recent)-window:]
	type key struct{ pass, old, new string }
	var order []key
	count := make(map[key]int)
	latest := make(map[key]source.Span)
	for _, round := range final {
		inRound := make(map[key]bool)
		for _, rec := range round {
			k := key{rec.pass, rec.old, rec.new}
			latest[k] = rec.rng
			if inRound[k] {
				continue
			}
			inRound[k] = true
			if count[k] == 0 {
				order = append(order, k)
			}
			count[k]++
		}
	}
	for _, k := range order {
		if count[k] < 2 {
			continue
		}
		// ranges were mapped to the input when the round ran
		diag.ReportInfo(r.out, diag.RunOscillation, latest[k],
			fmt.Sprintf("edit recurred in %d of the last %d rounds: %q -> %q", count[k], window, k.old, k.new)).
			WithPass(k.pass).
			Emit()
	}
}

func fatalCode(err error) diag.Code {
	var ce *edit.ConflictError
	switch {
	case errors.Is(err, syntax.ErrParseTimeout):
		return diag.EngParseTimeout
	case errors.Is(err, syntax.ErrGrammarUnavailable):
		return diag.EngGrammarUnavailable
	case errors.Is(err, syntax.ErrUnknownLanguage):
		return diag.IOUnknownLanguage
	case errors.As(err, &ce):
		return diag.EditConflict
	default:
		return diag.EngReparseFailed
	}
}
