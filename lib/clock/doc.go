// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable wall clock.
//
// The recorder measures event spacing against the wall clock when no
// audio capture is running. Production code takes a Clock and is given
// Real(); tests pass Fake() and move time explicitly with Advance, so
// timing assertions are exact rather than approximate.
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	source := timing.NewWallClock(c)
//	c.Advance(1250 * time.Millisecond)
package clock
