// Package storecache provides the cache-backed access layer over the
// budget entity stores.
//
// # Overview
//
// Items and Operations compose a cache.Store with a durable store
// interface into a single consistent-enough view:
//
//   - Reads are read-through: cache hit returns immediately; a miss
//     queries the store, populates the cache, and returns. At most one
//     store round trip happens per call. Concurrent misses for the same
//     key are not deduplicated; both populate the cache, which is safe
//     because entity writes are idempotent per id.
//   - Writes are write-invalidate: the store mutation runs first, and only
//     on success are stale cache entries removed and the fresh entity
//     cached. A failed store call leaves the cache untouched.
//
// Operation range queries carry the calling user inside the scope key, so
// users never share cached collections. Write invalidation enumerates the
// scope variants served so far via a per-layer registry of scope keys;
// operation writes invalidate only the acting user's scopes.
//
// # Errors
//
// ErrNotFound marks absent ids, ConflictError marks caller-level
// validation failures (duplicate names, unknown or mismatched categories
// surface as wrapped ErrNotFound). Every other error originates in the
// underlying store and is propagated unchanged.
package storecache
