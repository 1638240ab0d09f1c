// Package symstore implements the symbol-store resolution chain.
//
// A symbol store locates a binary or debug-info file by filename and
// build id. Stores compose into a tree: three leaf kinds (flat
// directory, structured directory, HTTP server) plus one aggregate
// kind (SymbolServer) holding an ordered list of child stores.
//
// SEARCH MODEL:
//
// Lookups cascade through an aggregate's children in configured order
// and return the first hit. A miss is (nil, nil), never an error;
// transport and filesystem problems inside a single store are caught
// at that store's boundary, written to the search log, and reported
// as a miss so the cascade continues. Only context cancellation
// propagates as an error.
//
// CACHE POPULATION:
//
// Aggregate children flagged as caches receive a copy of any file
// found in a store searched later in the cascade. Only caches
// strictly earlier than the hit are populated, so a cache is never
// populated from its own contents and the origin store is never
// touched. Subsequent lookups then resolve from the front of the
// chain without re-scanning deeper stores.
//
// The search order, the population order, and the not-found caches
// are all deterministic for a fixed store tree, which keeps the
// per-module search logs reproducible.
package symstore
