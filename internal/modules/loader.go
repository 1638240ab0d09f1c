package modules

import (
	"context"
)

// importantModules is the fixed allow-list of well-known system
// library basenames whose missing symbols most often mean the user
// has no symbol store configured: the C runtime and the graphics and
// driver stack a crashed game almost always sits on top of.
var importantModules = map[string]struct{}{
	"libc.so":           {},
	"libc.so.6":         {},
	"libc++.so.1":       {},
	"libstdc++.so.6":    {},
	"libpthread.so.0":   {},
	"libdl.so.2":        {},
	"libvulkan.so.1":    {},
	"libdrm.so.2":       {},
	"libdrm_amdgpu.so.1": {},
	"amdvlk64.so":       {},
	"libggp.so":         {},
}

// isImportantModule reports whether the basename is on the allow-list.
func isImportantModule(name string) bool {
	_, ok := importantModules[name]
	return ok
}

// LoadResult is the aggregate outcome of one batch load. It is
// created fresh per invocation and immutable once returned.
type LoadResult struct {
	// Ok is true iff every included module ended with both its
	// binary and its symbols loaded.
	Ok bool

	// SuggestToEnableSymbolStore advises the caller to prompt the
	// user to turn on a symbol store. Set only for interactive
	// crash-dump sessions in which an important module failed and no
	// symbol-store cache was configured to begin with.
	SuggestToEnableSymbolStore bool
}

// LoaderOption configures a ModuleFileLoader.
type LoaderOption func(*ModuleFileLoader)

// ForCrashDump marks the session as crash-dump (core file) debugging,
// which is the one mode where the enable-symbol-store suggestion is
// worth surfacing.
func ForCrashDump() LoaderOption {
	return func(l *ModuleFileLoader) { l.isCrashDump = true }
}

// WithSymbolStoreEnabled records that the user already has a cache
// store configured, which suppresses the suggestion.
func WithSymbolStoreEnabled(enabled bool) LoaderOption {
	return func(l *ModuleFileLoader) { l.symbolStoreEnabled = enabled }
}

// WithTelemetrySink routes the per-batch counters somewhere other
// than the default structured logger.
func WithTelemetrySink(sink TelemetrySink) LoaderOption {
	return func(l *ModuleFileLoader) { l.telemetry = sink }
}

// ModuleFileLoader orchestrates binary and symbol loading across a
// batch of modules.
type ModuleFileLoader struct {
	binaryLoader *BinaryLoader
	symbolLoader *SymbolLoader
	logHolder    *ModuleSearchLogHolder

	isCrashDump        bool
	symbolStoreEnabled bool
	telemetry          TelemetrySink
}

// NewModuleFileLoader creates a batch loader. logHolder receives the
// per-module search logs.
func NewModuleFileLoader(binaryLoader *BinaryLoader, symbolLoader *SymbolLoader, logHolder *ModuleSearchLogHolder, opts ...LoaderOption) *ModuleFileLoader {
	l := &ModuleFileLoader{
		binaryLoader: binaryLoader,
		symbolLoader: symbolLoader,
		logHolder:    logHolder,
		telemetry:    SlogTelemetrySink{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadModuleFiles loads binaries and then symbols for every module
// the settings admit, strictly in the order given. The returned slice
// holds the (possibly replaced) module handles in the same order.
//
// The result is a failure when any included module failed either
// phase; skipped modules are successful no-ops. Cancellation is not a
// failure: it aborts the batch and surfaces as the context's error,
// with all modules after the point of cancellation never started.
// Telemetry counters are emitted exactly once per invocation, also on
// cancellation.
func (l *ModuleFileLoader) LoadModuleFiles(
	ctx context.Context,
	mods []Module,
	settings *SymbolInclusionSettings,
	isInteractive bool,
	forceLoad bool,
) (result []Module, res LoadResult, err error) {
	result = append([]Module(nil), mods...)

	binariesBefore, symbolsBefore := countLoaded(result)
	defer func() {
		binariesAfter, symbolsAfter := countLoaded(result)
		l.telemetry.RecordLoad(LoadTelemetry{
			ModulesCount:              len(result),
			BinariesLoadedBeforeCount: binariesBefore,
			BinariesLoadedAfterCount:  binariesAfter,
			SymbolsLoadedBeforeCount:  symbolsBefore,
			SymbolsLoadedAfterCount:   symbolsAfter,
		})
	}()

	anyFailed := false
	suggest := false

	for i, m := range result {
		if !settings.IsIncluded(m.Name()) {
			continue
		}

		// Fast path: nothing to do, and by definition nothing to
		// suggest either.
		if !m.IsPlaceholder() && m.HasSymbolsLoaded() {
			continue
		}

		if err := ctx.Err(); err != nil {
			return result, LoadResult{}, err
		}

		log := l.logHolder.Writer(m)
		backed, ok, err := l.binaryLoader.Load(ctx, m, log)
		if err != nil {
			return result, LoadResult{}, err
		}
		if backed != m {
			l.logHolder.Transfer(m, backed)
			result[i] = backed
		}
		if !ok {
			anyFailed = true
			suggest = suggest || l.shouldSuggestStore(m, isInteractive)
			continue
		}

		if err := ctx.Err(); err != nil {
			return result, LoadResult{}, err
		}

		ok, err = l.symbolLoader.Load(ctx, backed, l.logHolder.Writer(backed), isInteractive, forceLoad)
		if err != nil {
			return result, LoadResult{}, err
		}
		if !ok {
			anyFailed = true
			suggest = suggest || l.shouldSuggestStore(backed, isInteractive)
		}
	}

	return result, LoadResult{
		Ok:                         !anyFailed,
		SuggestToEnableSymbolStore: suggest,
	}, nil
}

// shouldSuggestStore decides whether one module's failure warrants
// the enable-symbol-store suggestion.
func (l *ModuleFileLoader) shouldSuggestStore(m Module, isInteractive bool) bool {
	return isInteractive &&
		l.isCrashDump &&
		!l.symbolStoreEnabled &&
		isImportantModule(m.Name())
}
