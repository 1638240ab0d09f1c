package buildid

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
)

// ELF note type for a GNU build id descriptor.
const noteTypeGNUBuildID = 3

// Reader resolves the build id embedded in an on-disk binary.
// Symbol stores use it to verify that a candidate file matches the
// identity they were asked for. Tests substitute a fake.
type Reader interface {
	ReadBuildID(path string) (BuildID, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(path string) (BuildID, error)

// ReadBuildID calls f.
func (f ReaderFunc) ReadBuildID(path string) (BuildID, error) {
	return f(path)
}

// ELFReader reads GNU build-id notes from ELF binaries.
// The zero value is ready to use.
type ELFReader struct{}

// ReadBuildID returns the build id from the file's .note.gnu.build-id
// section or PT_NOTE segments. A well-formed ELF without a build-id
// note yields Empty and no error; a file that is not ELF at all is an
// error.
func (ELFReader) ReadBuildID(path string) (BuildID, error) {
	f, err := elf.Open(path)
	if err != nil {
		return Empty, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if s := f.Section(".note.gnu.build-id"); s != nil {
		data, err := s.Data()
		if err != nil {
			return Empty, fmt.Errorf("read build-id section of %s: %w", path, err)
		}
		if id, ok := parseNotes(data, f.ByteOrder); ok {
			return id, nil
		}
	}

	// Stripped binaries may keep the note only as a segment.
	for _, p := range f.Progs {
		if p.Type != elf.PT_NOTE {
			continue
		}
		data := make([]byte, p.Filesz)
		if _, err := p.ReadAt(data, 0); err != nil {
			return Empty, fmt.Errorf("read note segment of %s: %w", path, err)
		}
		if id, ok := parseNotes(data, f.ByteOrder); ok {
			return id, nil
		}
	}

	return Empty, nil
}

// parseNotes scans a raw ELF note blob for a GNU build-id descriptor.
// Note entries are namesz/descsz/type words followed by the name and
// descriptor, each padded to 4-byte alignment.
func parseNotes(data []byte, order binary.ByteOrder) (BuildID, bool) {
	for len(data) >= 12 {
		namesz := order.Uint32(data[0:4])
		descsz := order.Uint32(data[4:8])
		typ := order.Uint32(data[8:12])
		data = data[12:]

		nameEnd := align4(int(namesz))
		if nameEnd > len(data) {
			return Empty, false
		}
		name := data[:namesz]
		data = data[nameEnd:]

		descEnd := align4(int(descsz))
		if descEnd > len(data) {
			return Empty, false
		}
		desc := data[:descsz]
		data = data[descEnd:]

		if typ == noteTypeGNUBuildID && string(name) == "GNU\x00" && descsz > 0 {
			return FromBytes(desc), true
		}
	}
	return Empty, false
}

func align4(n int) int {
	return (n + 3) &^ 3
}
