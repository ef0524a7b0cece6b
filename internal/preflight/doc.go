// Package preflight provides readiness checks for the filesystem paths
// artistdb reads and writes.
//
// The CLI "check" command runs RunAll and prints one row per result; build
// does not depend on it, since a run already tolerates an unreadable
// registry by publishing nothing.
//
// Optional paths (log directory, metrics textfile) are checked only when
// configured.
package preflight
