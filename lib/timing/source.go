// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package timing

import "github.com/castty/castty/lib/clock"

// TimeSource reports the current time in milliseconds on its own
// timeline. Only differences between two readings of the same source
// are meaningful.
type TimeSource interface {
	NowMS() float64
}

// WallClock is a TimeSource backed by a wall clock with microsecond
// resolution.
type WallClock struct {
	clock clock.Clock
}

// NewWallClock returns a WallClock reading c.
func NewWallClock(c clock.Clock) *WallClock {
	return &WallClock{clock: c}
}

// NowMS returns seconds*1000 + microseconds/1000 of the current time.
func (source *WallClock) NowMS() float64 {
	now := source.clock.Now()
	microseconds := now.Nanosecond() / 1000
	return float64(now.Unix())*1000 + float64(microseconds)/1000
}

// CaptureClock is the part of an audio capture the timing package
// needs: a monotonic clock in milliseconds of captured audio.
type CaptureClock interface {
	ClockMS() float64
}

// AudioClock is a TimeSource backed by an audio capture clock.
type AudioClock struct {
	capture CaptureClock
}

// NewAudioClock returns an AudioClock reading capture.
func NewAudioClock(capture CaptureClock) *AudioClock {
	return &AudioClock{capture: capture}
}

// NowMS returns the capture clock.
func (source *AudioClock) NowMS() float64 {
	return source.capture.ClockMS()
}
