// Package search builds and queries the hybrid index over the integrated
// catalog: a BM25 lexical index and a dense embedding matrix, blended with
// weights chosen from the query length and adjusted by category boosts,
// direct standard-name matches and negative-keyword penalties.
//
// A built index is immutable and safe for concurrent queries. Pipeline
// failures degrade to lexical-only search rather than surfacing errors.
package search
