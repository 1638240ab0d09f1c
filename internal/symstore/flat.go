package symstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/isabella232/gamesym/internal/buildid"
)

// FlatStore is a single directory searched by filename only. It is
// read-only: files appear in it by whatever process produced them
// (build output directories, download folders), never via AddFile.
type FlatStore struct {
	dir    string
	reader buildid.Reader
}

// NewFlatStore creates a flat store rooted at dir. reader verifies
// candidate files against a requested build id; nil skips content
// verification and accepts candidates by name.
func NewFlatStore(dir string, reader buildid.Reader) *FlatStore {
	return &FlatStore{dir: dir, reader: reader}
}

// Dir returns the store's root directory.
func (s *FlatStore) Dir() string { return s.dir }

// FindFile looks for dir/filename and verifies it when a build id was
// requested.
func (s *FlatStore) FindFile(ctx context.Context, q FileQuery) (FileReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, q.Filename)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logf(q.Log, "%q not found in %q", q.Filename, s.dir)
		return nil, nil
	}
	if err != nil {
		logf(q.Log, "error accessing %q: %v", path, err)
		return nil, nil
	}
	if info.IsDir() {
		logf(q.Log, "%q is a directory, not a file", path)
		return nil, nil
	}

	if !verifyBuildID(path, q.BuildID, s.reader, q.Log) {
		return nil, nil
	}

	logf(q.Log, "found %q", path)
	return NewLocalFileReference(path), nil
}

// AddFile is not supported on flat stores.
func (s *FlatStore) AddFile(ctx context.Context, src FileReference, filename string, id buildid.BuildID, log io.Writer) (FileReference, error) {
	logf(log, "cannot add %q: flat store %q is read-only", filename, s.dir)
	return nil, ErrAddFileUnsupported
}

// DeepEquals reports whether other is a flat store over the same
// directory.
func (s *FlatStore) DeepEquals(other SymbolStore) bool {
	o, ok := other.(*FlatStore)
	return ok && s.dir == o.dir
}

// IsCache always reports false for leaf stores.
func (s *FlatStore) IsCache() bool { return false }

// Substores returns nil: flat stores have no children.
func (s *FlatStore) Substores() []SymbolStore { return nil }
