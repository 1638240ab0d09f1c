// Package natvis evaluates C++-like expressions against live remote
// variables, the way visualizer definitions and user watch
// expressions need them evaluated during a debug session.
//
// PIPELINE:
//
// Every evaluation runs the same explicit pipeline: substitute bound
// tokens in the expression text, pick an engine per the caller's
// strategy, evaluate, and classify any failure.
//
// Two engines sit behind one interface. The fast engine parses the
// expression with a recursive-descent parser and walks the resulting
// tree structurally against VariableInformation handles, never
// leaving the process. The fallback engine hands the expression text
// to the remote debugger's full interpreter and pays a round trip.
//
// FALLBACK CLASSIFICATION:
//
// Under the fallback strategy, a fast-engine failure only escalates
// to the interpreter when its error code marks an engine limitation
// (unsupported syntax, unimplemented operation, unknown internal
// error). Codes that mark genuine expression errors -- bad numeric
// literals, wrong operand types, undeclared identifiers -- surface
// directly: the interpreter would reject them too, so the retry
// would only cost a round trip. The code table lives in errors.go.
//
// Scratch variables declared through DeclareVariable exist only in
// the remote interpreter, so any expression mentioning one bypasses
// the fast engine no matter the strategy.
package natvis
