// Package diag defines the diagnostic model shared by the lexer, the parser
// and the project layer.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier with a stable string form (codes.go).
//   - Message: short human text.
//   - Primary: the source.Span the diagnostic points at.
//   - Notes: optional secondary spans with extra context.
//   - Fixes: optional text edits that would resolve the problem.
//
// # Emitting diagnostics
//
// Producers report through a Reporter so storage stays decoupled. BagReporter
// collects into a Bag, which supports sorting, deduplication and a size cap.
// ReportBuilder chains notes and fixes before Emit.
//
// Package diag performs no IO. Rendering lives in internal/report.
package diag
