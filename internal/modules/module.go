package modules

import (
	"context"

	"github.com/isabella232/gamesym/internal/buildid"
)

// Module is the handle contract the debugger backend provides for one
// loaded library or executable. Loaders query it and, for
// placeholders, ask the backend's Reloader for a backed substitute;
// they never mutate a module's identity.
type Module interface {
	// Name is the module's base filename, e.g. "libgame.so".
	Name() string

	// BuildID is the module's embedded identity, or Empty when the
	// target could not report one.
	BuildID() buildid.BuildID

	// IsPlaceholder reports whether the module is metadata plus a
	// memory image with no backing file on disk.
	IsPlaceholder() bool

	// HasSymbolsLoaded reports whether debug info is attached.
	HasSymbolsLoaded() bool

	// SymbolFileHint is the name of the module's split debug-info
	// file when the binary declares one (debug-link convention), or
	// "" when symbols would be embedded in the binary itself.
	SymbolFileHint() string

	// AddSymbolFile attaches a located debug-info file to the module.
	AddSymbolFile(path string) error
}

// Reloader is the backend operation that replaces a placeholder with
// a module backed by a local binary. The returned module is a new
// handle; the placeholder is discarded by the caller.
type Reloader interface {
	ReplacePlaceholder(ctx context.Context, m Module, binaryPath string) (Module, error)
}
