// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package timing

// Synchronizer computes per-event deltas and the running session total
// from a single TimeSource. All values are milliseconds.
//
// A Synchronizer is owned by the recorder's event loop and is not safe
// for concurrent use.
type Synchronizer struct {
	source   TimeSource
	previous float64
	current  float64
	total    float64
}

// NewSynchronizer returns a Synchronizer over source with a zero total.
// Call Rebaseline before the first Sample.
func NewSynchronizer(source TimeSource) *Synchronizer {
	return &Synchronizer{source: source}
}

// Rebaseline sets both samples to one fresh reading, so the next delta
// measures only time from now. Used for the first event of a session
// and on every resume from pause.
func (synchronizer *Synchronizer) Rebaseline() {
	now := synchronizer.source.NowMS()
	synchronizer.previous = now
	synchronizer.current = now
}

// Sample reads the source into the current sample.
func (synchronizer *Synchronizer) Sample() {
	synchronizer.current = synchronizer.source.NowMS()
}

// Advance consumes the span between the two samples: it returns the
// delta, adds it to the total, and moves previous up to current. A
// source that stepped backward yields a zero delta, so the total never
// decreases.
func (synchronizer *Synchronizer) Advance() (deltaMS, totalMS float64) {
	delta := synchronizer.current - synchronizer.previous
	if delta < 0 {
		delta = 0
	}
	synchronizer.previous = synchronizer.current
	synchronizer.total += delta
	return delta, synchronizer.total
}

// TotalMS returns the accumulated session duration.
func (synchronizer *Synchronizer) TotalMS() float64 {
	return synchronizer.total
}
