// Package pipeline runs the registry through load, normalize, change
// detection, publish, and source rewrite.
//
// A Pipeline is long-lived: in watch mode the same instance runs once per
// change, carrying the previous registry fingerprint between runs so an
// unchanged registry (including the pipeline's own rewrite of the source) is
// not republished. Runs are serialized; the single-instance file lock keeps
// separate processes from publishing into the same directory.
package pipeline
