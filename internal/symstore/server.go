package symstore

import (
	"context"
	"io"

	"github.com/isabella232/gamesym/internal/buildid"
)

// SymbolServer aggregates an ordered list of child stores, which may
// themselves be aggregates. Searches cascade through the children in
// order and return the first hit; cache children passed before the
// hit receive a copy of the found file.
type SymbolServer struct {
	stores  []SymbolStore
	isCache bool
	misses  *missCache
}

// ServerOption configures a SymbolServer.
type ServerOption func(*SymbolServer)

// MarkedAsCache flags the server as a destination eligible to receive
// files found in stores searched later in an enclosing cascade.
func MarkedAsCache() ServerOption {
	return func(s *SymbolServer) {
		s.isCache = true
	}
}

// NewSymbolServer creates an aggregate over the given child stores.
// The child order is the search order and never changes after
// construction; the slice is copied to protect that invariant.
func NewSymbolServer(stores []SymbolStore, opts ...ServerOption) *SymbolServer {
	s := &SymbolServer{
		stores: append([]SymbolStore(nil), stores...),
		misses: newMissCache(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindFile cascades through the children in order, returning the
// first hit. Children that fail internally (missing directories,
// unreachable servers) log and miss without aborting the cascade.
//
// When a hit lands, every cache child strictly earlier in the cascade
// is populated with a copy, front to back, and the reference to the
// first successful copy is returned so future reads come from the
// front of the chain. The hitting store itself is never repopulated.
func (s *SymbolServer) FindFile(ctx context.Context, q FileQuery) (FileReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := queryKey(q.Filename, q.BuildID)
	if !q.ForceLoad && s.misses.contains(key) {
		logf(q.Log, "%q not found in symbol server (cached result)", q.Filename)
		return nil, nil
	}

	var passedCaches []SymbolStore
	for _, child := range s.stores {
		ref, err := child.FindFile(ctx, q)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			// A ForceLoad hit supersedes any cached miss verdict.
			s.misses.remove(key)
			return s.populateCaches(ctx, ref, q, passedCaches)
		}
		if child.IsCache() {
			passedCaches = append(passedCaches, child)
		}
	}

	s.misses.record(key)
	return nil, nil
}

// populateCaches copies a found file into the caches passed before the
// hit and picks the frontmost successful copy as the result. Copy
// failures are logged and skipped; the original reference still wins
// when no cache accepts the file.
func (s *SymbolServer) populateCaches(ctx context.Context, found FileReference, q FileQuery, caches []SymbolStore) (FileReference, error) {
	result := found
	first := true
	for _, cache := range caches {
		cached, err := cache.AddFile(ctx, found, q.Filename, q.BuildID, q.Log)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if first {
			result = cached
			first = false
		}
	}
	return result, nil
}

// AddFile publishes src into every child store that accepts it and
// returns a reference to the first accepted copy. Children that
// cannot take the file (read-only kinds, broken roots) are skipped;
// the call fails only when zero children accept.
func (s *SymbolServer) AddFile(ctx context.Context, src FileReference, filename string, id buildid.BuildID, log io.Writer) (FileReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The file is about to exist here; a previously cached miss for
	// this identity is no longer true.
	s.misses.remove(queryKey(filename, id))

	var result FileReference
	for _, child := range s.stores {
		ref, err := child.AddFile(ctx, src, filename, id, log)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if result == nil {
			result = ref
		}
	}

	if result == nil {
		return nil, &NoUsableStoresError{Filename: filename}
	}
	return result, nil
}

// DeepEquals compares child lists element-wise in order plus the
// cache flag. The same children in a different order are not equal:
// order is the search order, and two servers that search differently
// are different stores.
func (s *SymbolServer) DeepEquals(other SymbolStore) bool {
	o, ok := other.(*SymbolServer)
	if !ok || s.isCache != o.isCache || len(s.stores) != len(o.stores) {
		return false
	}
	for i, child := range s.stores {
		if !child.DeepEquals(o.stores[i]) {
			return false
		}
	}
	return true
}

// IsCache reports whether the server was marked as a cache.
func (s *SymbolServer) IsCache() bool { return s.isCache }

// Substores returns the ordered child stores.
func (s *SymbolServer) Substores() []SymbolStore { return s.stores }
