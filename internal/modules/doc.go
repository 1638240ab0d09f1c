// Package modules bridges in-process module handles to on-disk
// binaries and debug symbols using the symbol-store chain.
//
// A module handle may be a placeholder: metadata and a memory image
// with no backing file, which is what a remote debugger reports for
// libraries it cannot read off the target. BinaryLoader turns a
// placeholder into a module backed by a located binary; SymbolLoader
// then finds and attaches debug info. ModuleFileLoader drives both
// across a batch of modules.
//
// BATCH MODEL:
//
// Modules are processed strictly sequentially, in caller order. That
// keeps store-cache population order well defined and the telemetry
// counts deterministic. Each module walks
//
//	NotStarted -> binary load attempted -> failed (terminal)
//	                                    -> loaded -> symbol load attempted -> failed
//	                                                                      -> loaded
//
// and symbol loading is only attempted after a successful binary
// load. Store-level problems never abort the batch; they are written
// to the per-module search log and count as a per-module failure.
// Only context cancellation aborts the batch, and it surfaces as an
// error rather than a failed result: the cancellation flag is checked
// before each module's binary load and again before its symbol load,
// so an in-flight store call finishes but no further modules start.
package modules
