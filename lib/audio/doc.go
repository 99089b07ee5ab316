// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package audio captures a microphone track alongside a terminal
// recording.
//
// Capture runs an ffmpeg process that delivers signed 16-bit
// little-endian PCM on its stdout. A reader goroutine consumes the
// stream for the whole session. While capture is started, frames are
// written to a [Sink] (silence when muted) and counted; while stopped,
// frames are read and discarded. The count drives [Capture.ClockMS]:
// milliseconds of audio actually written. The recorder timestamps
// terminal events against that clock so they stay in step with the
// audio track during playback, independent of wall-clock drift.
//
// Sinks write the track as raw PCM, WAV, or a zstd or lz4 compressed
// PCM stream. Next to the track, Close writes a CBOR metadata sidecar
// (see [Metadata]) describing the sample format, which headerless
// encodings need to be played back.
//
// [ListDevices] enumerates capture devices through ffmpeg's -sources.
package audio
