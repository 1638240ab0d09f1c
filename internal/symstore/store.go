package symstore

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/isabella232/gamesym/internal/buildid"
)

// FileQuery describes one lookup through a store chain.
type FileQuery struct {
	// Filename is the base name of the wanted file.
	Filename string

	// BuildID is the expected identity. Empty means "accept any file
	// with this name without verification" (used when no ground truth
	// exists, e.g. binaries without a build-id note).
	BuildID buildid.BuildID

	// IsDebugInfoFile marks the lookup as being for split debug info
	// rather than the executable binary itself.
	IsDebugInfoFile bool

	// Log receives a human-readable line for every store visited.
	// May be nil.
	Log io.Writer

	// ForceLoad bypasses per-store not-found caches, forcing network
	// stores to be consulted again.
	ForceLoad bool
}

// SymbolStore locates files by name and build id. Implementations are
// the three leaf kinds plus the SymbolServer aggregate; the closed set
// keeps recursive composition and traversal simple.
type SymbolStore interface {
	// FindFile returns a reference to a matching file, or (nil, nil)
	// when the store does not have one. Filesystem and transport
	// problems inside the store are logged and reported as a miss.
	// The only error returned is context cancellation.
	FindFile(ctx context.Context, q FileQuery) (FileReference, error)

	// AddFile publishes src into the store under filename/id and
	// returns a reference to the stored copy. Read-only store kinds
	// return ErrAddFileUnsupported.
	AddFile(ctx context.Context, src FileReference, filename string, id buildid.BuildID, log io.Writer) (FileReference, error)

	// DeepEquals reports structural equality: same kind, same root,
	// and for aggregates the same children in the same order.
	DeepEquals(other SymbolStore) bool

	// IsCache reports whether the store receives copies of files
	// found later in a cascading search.
	IsCache() bool

	// Substores returns the ordered child stores of an aggregate, or
	// nil for leaf stores.
	Substores() []SymbolStore
}

// AllStores returns store and every store reachable beneath it, in
// pre-order (self first, then each child recursively).
func AllStores(store SymbolStore) []SymbolStore {
	all := []SymbolStore{store}
	for _, child := range store.Substores() {
		all = append(all, AllStores(child)...)
	}
	return all
}

// logf writes one search-log line, tolerating a nil sink.
func logf(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// verifyBuildID checks a candidate file against the wanted id using
// the store's reader. Returns true when the candidate is acceptable.
// A nil reader or an empty wanted id accepts by name alone.
func verifyBuildID(path string, want buildid.BuildID, reader buildid.Reader, log io.Writer) bool {
	if want.IsEmpty() || reader == nil {
		return true
	}
	got, err := reader.ReadBuildID(path)
	if err != nil {
		logf(log, "could not verify build id of %q: %v", path, err)
		return false
	}
	if !want.Matches(got) {
		logf(log, "build id mismatch for %q: requested %s, file has %s", path, want, got)
		return false
	}
	return true
}

// missCache records filename/buildid pairs (or URLs) that a store has
// already failed to find, so repeated lookups stay cheap. State lives
// for the lifetime of the owning store instance and is only bypassed
// by an explicit ForceLoad.
type missCache struct {
	mu     sync.Mutex
	misses map[string]struct{}
}

func newMissCache() *missCache {
	return &missCache{misses: make(map[string]struct{})}
}

func (c *missCache) contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.misses[key]
	return ok
}

func (c *missCache) record(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses[key] = struct{}{}
}

func (c *missCache) remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.misses, key)
}

// queryKey is the miss-cache key for a filename/buildid pair.
func queryKey(filename string, id buildid.BuildID) string {
	return filename + "/" + id.String()
}
