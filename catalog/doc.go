// Package catalog merges heterogeneous tabular classification sources into a
// single canonical, code-keyed catalog with weighted combined text.
//
// The primary tariff table is required; the standard product-name table and
// the tariff-notes table are optional secondaries left-joined onto it by
// normalized 10-digit key. Primary rows are never dropped. The integrator
// has no side effects beyond returning the catalog.
package catalog
