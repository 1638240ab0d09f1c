package modules

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/isabella232/gamesym/internal/buildid"
)

// LocalModule is a file-backed Module implementation. The CLI uses it
// to drive batch loads from a manifest without a live debugger
// session; tests use it as a ready-made fake.
type LocalModule struct {
	name       string
	id         buildid.BuildID
	binaryPath string // "" while a placeholder
	symbolPath string // "" until symbols attach
	symbolHint string
}

// NewPlaceholderModule creates a module with no backing binary.
func NewPlaceholderModule(name string, id buildid.BuildID, symbolHint string) *LocalModule {
	return &LocalModule{name: name, id: id, symbolHint: symbolHint}
}

// NewBackedModule creates a module already backed by a local binary.
func NewBackedModule(name string, id buildid.BuildID, binaryPath, symbolHint string) *LocalModule {
	return &LocalModule{name: name, id: id, binaryPath: binaryPath, symbolHint: symbolHint}
}

// Name implements Module.
func (m *LocalModule) Name() string { return m.name }

// BuildID implements Module.
func (m *LocalModule) BuildID() buildid.BuildID { return m.id }

// IsPlaceholder implements Module.
func (m *LocalModule) IsPlaceholder() bool { return m.binaryPath == "" }

// HasSymbolsLoaded implements Module.
func (m *LocalModule) HasSymbolsLoaded() bool { return m.symbolPath != "" }

// SymbolFileHint implements Module.
func (m *LocalModule) SymbolFileHint() string { return m.symbolHint }

// BinaryPath returns the backing binary's path, or "" for a
// placeholder.
func (m *LocalModule) BinaryPath() string { return m.binaryPath }

// SymbolFilePath returns the attached debug-info path, or "".
func (m *LocalModule) SymbolFilePath() string { return m.symbolPath }

// AddSymbolFile implements Module. The file must exist.
func (m *LocalModule) AddSymbolFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("attach symbol file %q to %q: %w", path, m.name, err)
	}
	m.symbolPath = path
	return nil
}

// LocalReloader backs placeholders with located binaries by creating
// fresh LocalModule handles, mirroring how a debugger backend swaps a
// placeholder for a real module.
type LocalReloader struct{}

// ReplacePlaceholder implements Reloader.
func (LocalReloader) ReplacePlaceholder(ctx context.Context, m Module, binaryPath string) (Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(binaryPath)
	if err != nil {
		return nil, fmt.Errorf("replace placeholder %q: %w", m.Name(), err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("replace placeholder %q: %w", m.Name(), err)
	}
	return NewBackedModule(m.Name(), m.BuildID(), abs, m.SymbolFileHint()), nil
}
