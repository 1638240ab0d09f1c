package modules

import "log/slog"

// LoadTelemetry is the per-batch counter set emitted once per
// ModuleFileLoader invocation. The before/after pairs describe the
// whole batch, not just the modules the inclusion settings admitted;
// they feed dashboards, never decisions.
type LoadTelemetry struct {
	ModulesCount int

	BinariesLoadedBeforeCount int
	BinariesLoadedAfterCount  int

	SymbolsLoadedBeforeCount int
	SymbolsLoadedAfterCount  int
}

// TelemetrySink receives one record per batch load.
type TelemetrySink interface {
	RecordLoad(t LoadTelemetry)
}

// SlogTelemetrySink writes batch counters to the default structured
// logger.
type SlogTelemetrySink struct{}

// RecordLoad implements TelemetrySink.
func (SlogTelemetrySink) RecordLoad(t LoadTelemetry) {
	slog.Info("module load telemetry",
		"modules", t.ModulesCount,
		"binaries_before", t.BinariesLoadedBeforeCount,
		"binaries_after", t.BinariesLoadedAfterCount,
		"symbols_before", t.SymbolsLoadedBeforeCount,
		"symbols_after", t.SymbolsLoadedAfterCount,
	)
}

// countLoaded tallies how many modules currently have a backing
// binary and how many have symbols attached.
func countLoaded(mods []Module) (binaries, symbols int) {
	for _, m := range mods {
		if !m.IsPlaceholder() {
			binaries++
		}
		if m.HasSymbolsLoaded() {
			symbols++
		}
	}
	return binaries, symbols
}
