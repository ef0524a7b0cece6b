package fingerprint

import "sync"

// Decision is the outcome of comparing fingerprints for one run.
type Decision struct {
	Previous Fingerprint
	Current  Fingerprint
	Pre      Fingerprint
	Post     Fingerprint
	// ContentChanged is set when the registry differs from the last run.
	ContentChanged bool
	// NormalizationChanged is set when normalizing altered the document,
	// meaning the source should be rewritten.
	NormalizationChanged bool
}

// ShouldPublish reports whether either comparison found a change.
func (d Decision) ShouldPublish() bool {
	return d.ContentChanged || d.NormalizationChanged
}

// Detector carries the previous run's fingerprint between runs.
type Detector struct {
	mu       sync.Mutex
	previous Fingerprint
}

// NewDetector starts with no previous fingerprint, so the first valid
// registry always publishes.
func NewDetector() *Detector { return &Detector{} }

// Seed sets the previous fingerprint, e.g. from persisted state.
func (d *Detector) Seed(fp Fingerprint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.previous = fp
}

// Previous returns the fingerprint of the last published content.
func (d *Detector) Previous() Fingerprint {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.previous
}

// Decide compares pre/post normalization document fingerprints and the
// current registry fingerprint against the previous one. The previous
// fingerprint advances only when current is valid and different.
func (d *Detector) Decide(pre, post, current Fingerprint) Decision {
	d.mu.Lock()
	defer d.mu.Unlock()
	dec := Decision{Previous: d.previous, Current: current, Pre: pre, Post: post}
	if current.Valid() && current != d.previous {
		dec.ContentChanged = true
		d.previous = current
	}
	dec.NormalizationChanged = pre.Valid() && post.Valid() && pre != post
	return dec
}
