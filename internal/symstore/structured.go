package symstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/isabella232/gamesym/internal/buildid"
)

// StructuredStore is a directory laid out in the symbol-server
// convention: <root>/<filename>/<buildid-hex>/<filename>. It supports
// AddFile by copying into the structured path, which makes it the
// usual backing for cache stores.
type StructuredStore struct {
	dir    string
	reader buildid.Reader
}

// NewStructuredStore creates a structured store rooted at dir. reader
// verifies candidates; nil trusts the directory layout.
func NewStructuredStore(dir string, reader buildid.Reader) *StructuredStore {
	return &StructuredStore{dir: dir, reader: reader}
}

// Dir returns the store's root directory.
func (s *StructuredStore) Dir() string { return s.dir }

// filePath returns the structured location for filename/id.
func (s *StructuredStore) filePath(filename string, id buildid.BuildID) string {
	return filepath.Join(s.dir, filename, id.String(), filename)
}

// FindFile looks up the structured path for the query. Structured
// lookups require a build id: without one there is no subdirectory to
// look in, so the query is a miss.
func (s *StructuredStore) FindFile(ctx context.Context, q FileQuery) (FileReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if q.BuildID.IsEmpty() {
		logf(q.Log, "cannot look up %q in %q without a build id", q.Filename, s.dir)
		return nil, nil
	}

	path := s.filePath(q.Filename, q.BuildID)
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

// AddFile copies src into the structured path for filename/id and
// returns a reference to the new copy. Publishing requires a build id,
// since the id names the destination directory.
func (s *StructuredStore) AddFile(ctx context.Context, src FileReference, filename string, id buildid.BuildID, log io.Writer) (FileReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id.IsEmpty() {
		logf(log, "cannot add %q to %q without a build id", filename, s.dir)
		return nil, ErrAddFileUnsupported
	}

	dest := s.filePath(filename, id)
	if err := src.CopyTo(ctx, dest); err != nil {
		logf(log, "failed to copy %q to %q: %v", src.Location(), dest, err)
		return nil, err
	}

	logf(log, "copied %q to %q", src.Location(), dest)
	return NewLocalFileReference(dest), nil
}

// DeepEquals reports whether other is a structured store over the
// same directory.
func (s *StructuredStore) DeepEquals(other SymbolStore) bool {
	o, ok := other.(*StructuredStore)
	return ok && s.dir == o.dir
}

// IsCache always reports false for leaf stores.
func (s *StructuredStore) IsCache() bool { return false }

// Substores returns nil: structured stores have no children.
func (s *StructuredStore) Substores() []SymbolStore { return nil }
