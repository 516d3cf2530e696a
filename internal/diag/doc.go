// Package diag defines the diagnostic model shared by every grammar phase.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced while
//     parsing production rules, registering symbols and resolving references.
//   - Offer light-weight utilities (Reporter, Bag, Collector) that let producers
//     emit diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not format or print anything. Rendering lives in
// internal/diagfmt; pass/fail policy lives in the driver and the CLI.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – compact numeric identifier with a stable string form (codes.go).
//   - Message – short, actionable text.
//   - Primary – the source.Span the finding is about.
//   - Subject – the grammar symbol name involved, when there is one.
//   - Anchors – canonical and conflicting anchors for duplicate definitions.
//   - Notes – secondary spans such as "first defined here".
//
// # Emitting diagnostics
//
// Phases accept a diag.Reporter. ReportError / ReportWarning / ReportInfo build
// a ReportBuilder that can be decorated WithNote / WithSubject / WithAnchors
// before Emit. BagReporter stores into a Bag; DedupReporter filters repeats.
//
// Nothing in the grammar pipeline treats a diagnostic as fatal: producers keep
// going and the Collector aggregates everything after a full pass.
package diag
