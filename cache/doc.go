// Package cache persists the integrated catalog and its search artifacts in
// a Badger database validated by a content hash over the source files and
// the embedding-model identifier.
//
// Snapshot validity is all-or-nothing: a hash mismatch, a missing artifact,
// or a missing text column each invalidate the whole snapshot and the caller
// must rebuild. Read and deserialization failures degrade to a cache miss
// (core.ErrCacheCorruption), never a crash. The store is not safe for
// concurrent writers; the engine serializes rebuilds around it.
package cache
