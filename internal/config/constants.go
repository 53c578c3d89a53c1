// Package config holds process-wide toggles, the same shape the teacher used
// for IsTestMode/IsLSPMode. Of the toggles, only DeterministicGensym is read
// (by internal/macro).
package config

// Version is the current jlvm version, set at build time via -ldflags.
var Version = "0.1.0"

const SourceFileExt = ".jl"

// IsTestMode is a test-mode flag. No package in this module reads it, and
// cmd/jlvm does not set it; gensym determinism is DeterministicGensym's job.
var IsTestMode = false

// TraceDispatch is a dispatch-tracing toggle. No package reads it and
// cmd/jlvm has no flag that sets it, so dispatch decisions are not logged.
var TraceDispatch = false

// TraceMacroExpand is a macro-expansion tracing toggle. No package reads it
// and cmd/jlvm has no flag that sets it, so expansion steps are not logged.
var TraceMacroExpand = false

// DeterministicGensym replaces the uuid-backed gensym suffix with a simple
// counter so hygienic-macro golden tests get reproducible output.
var DeterministicGensym = false

// MaxEvalDepth bounds recursive Eval/macroexpand nesting to avoid a runaway
// host stack overflow translating into an unrecoverable crash (mirrors the
// teacher's Evaluator.evalDepth guard in internal/evaluator/evaluator.go).
const MaxEvalDepth = 2048
