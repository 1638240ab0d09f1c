package symstore

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isabella232/gamesym/internal/buildid"
)

// contentIDReader is a test build-id reader that treats a file's
// contents as the hex encoding of its build id.
var contentIDReader = buildid.ReaderFunc(func(path string) (buildid.BuildID, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return buildid.Empty, err
	}
	return buildid.FromHex(string(bytes.TrimSpace(b)))
})

// TestFlatStore_FindFile_Hit tests a name-only lookup with no build id.
func TestFlatStore_FindFile_Hit(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "libgame.so", "deadbeef")

	store := NewFlatStore(dir, contentIDReader)
	var log bytes.Buffer
	ref, err := store.FindFile(context.Background(), FileQuery{Filename: "libgame.so", Log: &log})
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, path, ref.Location())
	assert.Contains(t, log.String(), "found")
}

// TestFlatStore_FindFile_Miss tests that a missing file is (nil, nil), not
// an error, and that the miss is logged.
func TestFlatStore_FindFile_Miss(t *testing.T) {
	store := NewFlatStore(t.TempDir(), nil)
	var log bytes.Buffer
	ref, err := store.FindFile(context.Background(), FileQuery{Filename: "libgame.so", Log: &log})
	require.NoError(t, err)
	assert.Nil(t, ref)
	assert.Contains(t, log.String(), "not found")
}

// TestFlatStore_FindFile_MissingDir tests that a nonexistent root behaves
// as a miss so an enclosing cascade continues.
func TestFlatStore_FindFile_MissingDir(t *testing.T) {
	store := NewFlatStore("/does/not/exist", nil)
	ref, err := store.FindFile(context.Background(), FileQuery{Filename: "a.so"})
	require.NoError(t, err)
	assert.Nil(t, ref)
}

// TestFlatStore_FindFile_Verification tests build-id verification against
// the requested id.
func TestFlatStore_FindFile_Verification(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "libgame.so", "deadbeef")
	store := NewFlatStore(dir, contentIDReader)

	// Matching id is accepted.
	ref, err := store.FindFile(context.Background(), FileQuery{
		Filename: "libgame.so",
		BuildID:  buildid.MustFromHex("deadbeef"),
	})
	require.NoError(t, err)
	assert.NotNil(t, ref)

	// Mismatching id is rejected and both ids are logged.
	var log bytes.Buffer
	ref, err = store.FindFile(context.Background(), FileQuery{
		Filename: "libgame.so",
		BuildID:  buildid.MustFromHex("0badf00d"),
		Log:      &log,
	})
	require.NoError(t, err)
	assert.Nil(t, ref)
	assert.Contains(t, log.String(), "0badf00d")
	assert.Contains(t, log.String(), "deadbeef")
}

// TestFlatStore_FindFile_EmptyBuildID tests that an empty id accepts any
// file with the right name, without verification.
func TestFlatStore_FindFile_EmptyBuildID(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "libgame.so", "not even hex")
	store := NewFlatStore(dir, contentIDReader)

	ref, err := store.FindFile(context.Background(), FileQuery{Filename: "libgame.so"})
	require.NoError(t, err)
	assert.NotNil(t, ref)
}

// TestFlatStore_FindFile_Canceled tests that cancellation propagates as an
// error, unlike every other failure.
func TestFlatStore_FindFile_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewFlatStore(t.TempDir(), nil)
	_, err := store.FindFile(ctx, FileQuery{Filename: "a.so"})
	require.ErrorIs(t, err, context.Canceled)
}

// TestFlatStore_AddFile_Unsupported tests the read-only contract.
func TestFlatStore_AddFile_Unsupported(t *testing.T) {
	dir := t.TempDir()
	src := NewLocalFileReference(writeTestFile(t, dir, "a.so", "x"))

	store := NewFlatStore(dir, nil)
	_, err := store.AddFile(context.Background(), src, "a.so", buildid.MustFromHex("aa"), nil)
	require.ErrorIs(t, err, ErrAddFileUnsupported)
}

// TestFlatStore_DeepEquals tests structural equality by kind and root.
func TestFlatStore_DeepEquals(t *testing.T) {
	a := NewFlatStore("/a", nil)
	a2 := NewFlatStore("/a", nil)
	b := NewFlatStore("/b", nil)

	assert.True(t, a.DeepEquals(a2))
	assert.False(t, a.DeepEquals(b))
	assert.False(t, a.DeepEquals(NewStructuredStore("/a", nil)))
}
