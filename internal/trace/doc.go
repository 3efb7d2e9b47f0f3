// Package trace records what the formatter does: driver work, one span per
// file, one per fixed-point round and, at the debug level, one per pass.
// It exists to answer two questions: which file is slow, and which round
// keeps producing edits.
//
// A tracer travels in the context together with the innermost open span and
// the file being formatted:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx = trace.WithFile(ctx, "main.go")
//	span, ctx := trace.BeginCtx(ctx, trace.ScopeRound, "round 1")
//	defer span.End("")
//
// Events are either streamed (text or NDJSON) or kept in a ring that is
// dumped when the process exits, or both. A heartbeat lists the files whose
// spans are still open.
//
//	passfmt fmt --trace=- --trace-level=detail ./src
package trace
