package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAdd_StructuredStore tests publishing into a writable store.
func TestAdd_StructuredStore(t *testing.T) {
	storeDir := t.TempDir()
	cfgPath := writeTestConfig(t, fmt.Sprintf(`stores: [{kind: "structured", path: %q}]`, storeDir))

	src := filepath.Join(t.TempDir(), "game.debug")
	require.NoError(t, os.WriteFile(src, []byte("symbols"), 0o644))

	out, _, err := execute(t, "--config", cfgPath, "add", src, "--build-id", "deadbeef")
	require.NoError(t, err)

	dest := filepath.Join(storeDir, "game.debug", "deadbeef", "game.debug")
	assert.Contains(t, out, dest)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "symbols", string(data))
}

// TestAdd_ReadOnlyChain tests the failure when no store accepts
// writes.
func TestAdd_ReadOnlyChain(t *testing.T) {
	cfgPath, _ := flatStoreConfig(t)

	src := filepath.Join(t.TempDir(), "game.debug")
	require.NoError(t, os.WriteFile(src, []byte("symbols"), 0o644))

	_, _, err := execute(t, "--config", cfgPath, "add", src, "--build-id", "deadbeef")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

// TestAdd_MissingBuildID tests that a non-ELF source without an
// explicit build id is rejected.
func TestAdd_MissingBuildID(t *testing.T) {
	storeDir := t.TempDir()
	cfgPath := writeTestConfig(t, fmt.Sprintf(`stores: [{kind: "structured", path: %q}]`, storeDir))

	src := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("not an elf"), 0o644))

	_, _, err := execute(t, "--config", cfgPath, "add", src)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
