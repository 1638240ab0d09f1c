package modules

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/isabella232/gamesym/internal/buildid"
	"github.com/isabella232/gamesym/internal/symstore"
)

// BinaryLoader resolves placeholder modules to real binaries through
// the symbol-store chain. It is a pure resolution step: nothing is
// cached here beyond what the store chain caches itself.
type BinaryLoader struct {
	stores      symstore.SymbolStore
	reloader    Reloader
	downloadDir string
}

// NewBinaryLoader creates a loader over the given store chain.
// downloadDir receives local copies of binaries found in non-local
// stores (HTTP) before they are handed to the backend.
func NewBinaryLoader(stores symstore.SymbolStore, reloader Reloader, downloadDir string) *BinaryLoader {
	return &BinaryLoader{stores: stores, reloader: reloader, downloadDir: downloadDir}
}

// Load returns a module backed by an on-disk binary and a success
// flag. Non-placeholder modules pass through untouched. For
// placeholders the store chain is searched by name and build id; on a
// hit the backend replaces the placeholder and the new handle is
// returned. Every store visited appends to log. The only error is
// context cancellation.
func (l *BinaryLoader) Load(ctx context.Context, m Module, log io.Writer) (Module, bool, error) {
	if !m.IsPlaceholder() {
		return m, true, nil
	}

	name := m.Name()
	if name == "" {
		fmt.Fprintf(log, "binary load failed: module has no name\n")
		return m, false, nil
	}

	ref, err := l.stores.FindFile(ctx, symstore.FileQuery{
		Filename: name,
		BuildID:  m.BuildID(),
		Log:      log,
	})
	if err != nil {
		return m, false, err
	}
	if ref == nil {
		fmt.Fprintf(log, "binary %q not found in any store\n", name)
		return m, false, nil
	}

	localPath, err := l.materialize(ctx, ref, name, m.BuildID())
	if err != nil {
		if ctx.Err() != nil {
			return m, false, ctx.Err()
		}
		fmt.Fprintf(log, "failed to fetch %q: %v\n", ref.Location(), err)
		return m, false, nil
	}

	backed, err := l.reloader.ReplacePlaceholder(ctx, m, localPath)
	if err != nil {
		if ctx.Err() != nil {
			return m, false, ctx.Err()
		}
		fmt.Fprintf(log, "failed to load binary %q: %v\n", localPath, err)
		return m, false, nil
	}

	fmt.Fprintf(log, "loaded binary %q\n", localPath)
	slog.Debug("binary loaded", "module", name, "path", localPath)
	return backed, true, nil
}

// materialize ensures the reference is a local file, downloading into
// the loader's download directory when it is not. Downloads are keyed
// by build id so same-named modules from different builds never
// clobber each other.
func (l *BinaryLoader) materialize(ctx context.Context, ref symstore.FileReference, filename string, id buildid.BuildID) (string, error) {
	if ref.IsFilesystemLocation() {
		return ref.Location(), nil
	}
	dest := filepath.Join(l.downloadDir, id.String(), filename)
	if err := ref.CopyTo(ctx, dest); err != nil {
		return "", err
	}
	return dest, nil
}
