package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestManifest(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

// TestLoad_PlaceholderResolved tests backing a placeholder module and
// attaching its symbols from a flat store.
func TestLoad_PlaceholderResolved(t *testing.T) {
	cfgPath, _ := flatStoreConfig(t, "libfoo.so")
	manifest := writeTestManifest(t, "modules:\n  - name: libfoo.so\n    placeholder: true\n")

	out, _, err := execute(t, "--config", cfgPath, "load", "--manifest", manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "libfoo.so")
	assert.Contains(t, out, "symbols loaded")
}

// TestLoad_MissingSymbols tests the failure exit code when a module
// cannot be resolved.
func TestLoad_MissingSymbols(t *testing.T) {
	cfgPath, _ := flatStoreConfig(t)
	manifest := writeTestManifest(t, "modules:\n  - name: libmissing.so\n    placeholder: true\n")

	out, _, err := execute(t, "--config", cfgPath, "load", "--manifest", manifest)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "no symbols")
}

// TestLoad_BackedModule tests symbol attachment for a module that
// already has a binary.
func TestLoad_BackedModule(t *testing.T) {
	binDir := t.TempDir()
	binPath := filepath.Join(binDir, "game.elf")
	require.NoError(t, os.WriteFile(binPath, []byte("binary"), 0o755))

	cfgPath, _ := flatStoreConfig(t, "game.debug")
	manifest := writeTestManifest(t, fmt.Sprintf(
		"modules:\n  - name: game.elf\n    binaryPath: %s\n    symbolFileHint: game.debug\n", binPath))

	out, _, err := execute(t, "--config", cfgPath, "load", "--manifest", manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "symbols loaded")
}

// TestLoad_InclusionExclude tests that excluded modules are skipped
// but still count as success.
func TestLoad_InclusionExclude(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, fmt.Sprintf(`
stores: [{kind: "flat", path: %q}]
inclusion: {mode: "exclude", exclude: ["libskip.so"]}
`, dir))
	manifest := writeTestManifest(t, "modules:\n  - name: libskip.so\n    placeholder: true\n")

	out, _, err := execute(t, "--config", cfgPath, "load", "--manifest", manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "no symbols")
}

// TestLoad_LaunchCommand tests that the manifest launch section
// yields a quoted launch command line after a successful load.
func TestLoad_LaunchCommand(t *testing.T) {
	cfgPath, _ := flatStoreConfig(t, "game.elf")
	manifest := writeTestManifest(t, `
modules:
  - name: game.elf
    placeholder: true
launch:
  module: game.elf
  args: ["--player", "p one"]
`)

	out, _, err := execute(t, "--config", cfgPath, "load", "--manifest", manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "launch: ")
	assert.Contains(t, out, "game.elf --player \"p one\"")
}

// TestLoad_BadManifest tests manifest validation failures.
func TestLoad_BadManifest(t *testing.T) {
	cfgPath, _ := flatStoreConfig(t)
	manifest := writeTestManifest(t, "modules:\n  - buildid: abcd\n")

	_, _, err := execute(t, "--config", cfgPath, "load", "--manifest", manifest)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
