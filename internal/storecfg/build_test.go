package storecfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isabella232/gamesym/internal/buildid"
	"github.com/isabella232/gamesym/internal/modules"
	"github.com/isabella232/gamesym/internal/symstore"
)

// TestBuild_TreeShape tests that the built tree mirrors the config,
// compared with the stores' own structural equality.
func TestBuild_TreeShape(t *testing.T) {
	cfg := &Config{
		Stores: []StoreSpec{
			{Kind: KindFlat, Path: "/opt/flat"},
			{
				Kind:  KindServer,
				Cache: true,
				Stores: []StoreSpec{
					{Kind: KindStructured, Path: "/opt/cache"},
					{Kind: KindHTTP, URL: "https://symbols.example.com"},
				},
			},
		},
	}

	built, err := Build(cfg, BuildOptions{})
	require.NoError(t, err)

	reader := buildid.ELFReader{}
	want := symstore.NewSymbolServer([]symstore.SymbolStore{
		symstore.NewFlatStore("/opt/flat", reader),
		symstore.NewSymbolServer([]symstore.SymbolStore{
			symstore.NewStructuredStore("/opt/cache", reader),
			symstore.NewHTTPStore("https://symbols.example.com", nil),
		}, symstore.MarkedAsCache()),
	})

	assert.True(t, built.DeepEquals(want))

	// Flat, then the nested server with its two children.
	assert.Len(t, symstore.AllStores(built), 5)
}

// TestBuild_UnknownKind tests the guard for hand-built specs that
// bypass config validation.
func TestBuild_UnknownKind(t *testing.T) {
	_, err := Build(&Config{Stores: []StoreSpec{{Kind: "ftp"}}}, BuildOptions{})
	require.Error(t, err)
}

// TestInclusionSettings tests the policy conversion.
func TestInclusionSettings(t *testing.T) {
	assert.Nil(t, InclusionSettings(nil))

	s := InclusionSettings(&InclusionSpec{Mode: "include", Include: []string{"game.elf"}})
	require.NotNil(t, s)
	assert.Equal(t, modules.IncludeListed, s.Mode)
	assert.True(t, s.IsIncluded("game.elf"))
	assert.False(t, s.IsIncluded("other.so"))

	s = InclusionSettings(&InclusionSpec{Mode: "exclude", Exclude: []string{"libc.so.6"}})
	assert.Equal(t, modules.ExcludeListed, s.Mode)
	assert.False(t, s.IsIncluded("libc.so.6"))

	s = InclusionSettings(&InclusionSpec{Mode: "all"})
	assert.Equal(t, modules.IncludeAll, s.Mode)
	assert.True(t, s.IsIncluded("anything"))
}
