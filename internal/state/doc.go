// Package state persists the history of pipeline runs in SQLite.
//
// Each run records the registry fingerprint it computed and what it
// published. The most recent published fingerprint seeds change detection
// after a restart, so an unchanged registry is not republished. The schema
// is embedded and versioned; a mismatched database is rejected with
// ErrSchemaMismatch rather than migrated.
package state
