package modules

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/isabella232/gamesym/internal/symstore"
)

// SymbolLoader resolves and attaches debug-info files through the
// symbol-store chain. Like BinaryLoader it is a pure resolution step.
type SymbolLoader struct {
	stores      symstore.SymbolStore
	downloadDir string
}

// NewSymbolLoader creates a loader over the given store chain.
func NewSymbolLoader(stores symstore.SymbolStore, downloadDir string) *SymbolLoader {
	return &SymbolLoader{stores: stores, downloadDir: downloadDir}
}

// Load finds a debug-info file for the module and attaches it,
// returning success. Modules with symbols already loaded pass
// through. The lookup prefers the module's split-debug-info hint and
// falls back to the binary name, which covers binaries with embedded
// symbols. forceLoad bypasses the stores' not-found caches;
// isInteractive marks the attempt as user-driven, which callers use
// to gate UI-facing suggestions. The only error is context
// cancellation.
func (l *SymbolLoader) Load(ctx context.Context, m Module, log io.Writer, isInteractive, forceLoad bool) (bool, error) {
	if m.HasSymbolsLoaded() {
		return true, nil
	}

	filename := m.SymbolFileHint()
	if filename == "" {
		filename = m.Name()
	}
	if filename == "" {
		fmt.Fprintf(log, "symbol load failed: module has no name\n")
		return false, nil
	}

	ref, err := l.stores.FindFile(ctx, symstore.FileQuery{
		Filename:        filename,
		BuildID:         m.BuildID(),
		IsDebugInfoFile: true,
		Log:             log,
		ForceLoad:       forceLoad,
	})
	if err != nil {
		return false, err
	}
	if ref == nil {
		fmt.Fprintf(log, "debug info %q not found in any store\n", filename)
		return false, nil
	}

	localPath := ref.Location()
	if !ref.IsFilesystemLocation() {
		localPath = filepath.Join(l.downloadDir, m.BuildID().String(), filename)
		if err := ref.CopyTo(ctx, localPath); err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			fmt.Fprintf(log, "failed to fetch %q: %v\n", ref.Location(), err)
			return false, nil
		}
	}

	if err := m.AddSymbolFile(localPath); err != nil {
		fmt.Fprintf(log, "failed to attach debug info %q: %v\n", localPath, err)
		return false, nil
	}

	fmt.Fprintf(log, "loaded debug info %q\n", localPath)
	slog.Debug("symbols loaded", "module", m.Name(), "path", localPath, "interactive", isInteractive)
	return true, nil
}
