// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package timing tracks elapsed session time for the recorder.
//
// A [Synchronizer] keeps two samples of a [TimeSource], previous and
// current, plus the running total. Each recorded batch samples the
// source and advances: the difference between the samples is the
// event's delta, and the delta is added to the total. Time that passes
// while the recorder is paused is never sampled; on resume the
// recorder calls [Synchronizer.Rebaseline], which sets both samples to
// the same fresh reading, so the next delta starts from zero.
//
// The source is chosen once per session. [WallClock] reads a
// [clock.Clock]; [AudioClock] reads the audio capture's sample-counted
// clock, so terminal events stay aligned with the audio track even if
// the capture device runs slightly fast or slow.
package timing
