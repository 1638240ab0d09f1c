package buildid

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFromHex_RoundTrip tests that FromHex and String are exact inverses.
func TestFromHex_RoundTrip(t *testing.T) {
	cases := []string{
		"",
		"00",
		"deadbeef",
		"0123456789abcdef0123456789abcdef01234567", // 20-byte GNU build id
	}

	for _, hexStr := range cases {
		id, err := FromHex(hexStr)
		require.NoError(t, err, "hex: %q", hexStr)
		assert.Equal(t, hexStr, id.String(), "hex: %q", hexStr)
	}
}

// TestFromHex_Uppercase tests that parsing is case-insensitive but the
// string form is canonical lowercase.
func TestFromHex_Uppercase(t *testing.T) {
	id, err := FromHex("DEADBEEF")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", id.String())
}

// TestFromHex_Invalid tests rejection of malformed hex.
func TestFromHex_Invalid(t *testing.T) {
	_, err := FromHex("not-hex")
	require.Error(t, err)

	_, err = FromHex("abc") // odd length
	require.Error(t, err)
}

// TestFromBytes_Empty tests that empty input yields the Empty sentinel.
func TestFromBytes_Empty(t *testing.T) {
	assert.True(t, FromBytes(nil).IsEmpty())
	assert.True(t, FromBytes([]byte{}).IsEmpty())
	assert.False(t, FromBytes([]byte{0}).IsEmpty())
}

// TestBytes_Copy tests that Bytes returns an independent copy.
func TestBytes_Copy(t *testing.T) {
	id := FromBytes([]byte{1, 2, 3})
	b := id.Bytes()
	b[0] = 99
	assert.Equal(t, []byte{1, 2, 3}, id.Bytes())
	assert.Nil(t, Empty.Bytes())
}

// TestMatches tests that Empty never matches, including itself.
func TestMatches(t *testing.T) {
	a := MustFromHex("aa")
	a2 := MustFromHex("aa")
	b := MustFromHex("bb")

	assert.True(t, a.Matches(a2))
	assert.False(t, a.Matches(b))
	assert.False(t, Empty.Matches(a))
	assert.False(t, a.Matches(Empty))
	assert.False(t, Empty.Matches(Empty))
}

// buildNote constructs a raw ELF note entry with 4-byte padding.
func buildNote(name string, typ uint32, desc []byte) []byte {
	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(name)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(desc)))
	buf = binary.LittleEndian.AppendUint32(buf, typ)
	buf = append(buf, name...)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	buf = append(buf, desc...)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// TestParseNotes_GNUBuildID tests extraction from a well-formed note blob.
func TestParseNotes_GNUBuildID(t *testing.T) {
	desc := []byte{0xde, 0xad, 0xbe, 0xef}
	data := buildNote("GNU\x00", noteTypeGNUBuildID, desc)

	id, ok := parseNotes(data, binary.LittleEndian)
	require.True(t, ok)
	assert.Equal(t, "deadbeef", id.String())
}

// TestParseNotes_SkipsForeignNotes tests that non-GNU entries are skipped.
func TestParseNotes_SkipsForeignNotes(t *testing.T) {
	data := buildNote("Linux\x00", 1, []byte{9, 9})
	data = append(data, buildNote("GNU\x00", noteTypeGNUBuildID, []byte{0xab})...)

	id, ok := parseNotes(data, binary.LittleEndian)
	require.True(t, ok)
	assert.Equal(t, "ab", id.String())
}

// TestParseNotes_NoBuildID tests a blob without a build-id descriptor.
func TestParseNotes_NoBuildID(t *testing.T) {
	data := buildNote("GNU\x00", 1 /* NT_GNU_ABI_TAG */, []byte{0, 0, 0, 0})

	id, ok := parseNotes(data, binary.LittleEndian)
	assert.False(t, ok)
	assert.True(t, id.IsEmpty())
}

// TestParseNotes_Truncated tests that a truncated blob fails cleanly.
func TestParseNotes_Truncated(t *testing.T) {
	data := buildNote("GNU\x00", noteTypeGNUBuildID, []byte{1, 2, 3, 4})
	_, ok := parseNotes(data[:len(data)-3], binary.LittleEndian)
	assert.False(t, ok)
}

// TestELFReader_NotELF tests that a non-ELF file is an error, not Empty.
func TestELFReader_NotELF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-elf.so")
	require.NoError(t, os.WriteFile(path, []byte("just text"), 0o644))

	_, err := ELFReader{}.ReadBuildID(path)
	require.Error(t, err)
}

// TestELFReader_Missing tests that a missing file is an error.
func TestELFReader_Missing(t *testing.T) {
	_, err := ELFReader{}.ReadBuildID(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
