// Package diag defines the diagnostic model shared by the formatter engine,
// its passes and the CLI.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: Info, Warning or Error.
//   - Code: numeric identifier with a stable string form (codes.go).
//   - Pass: the pass that produced the finding, empty for the engine.
//   - Message: short human text.
//   - Range: byte span into the text the diagnostic was produced for.
//   - Notes: optional secondary spans.
//
// Passes see the buffer of the current round, so the ranges they report are in
// that round's coordinates. The engine translates every range back to the
// original input before handing diagnostics to callers; consumers never need
// to know how many rounds ran.
//
// # Emitting diagnostics
//
// Producers hand diagnostics to a Reporter. ReportError, ReportWarning and
// ReportInfo return a Pending that takes WithNote and WithPass before Emit.
// The engine stacks a DedupReporter over a BagReporter, so a finding repeated
// across rounds lands in the Bag once.
//
// Package diag does not perform any formatting or IO; rendering lives in
// internal/diagfmt.
package diag
