// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import "fmt"

// BitDepth is the sample size of every capture: signed 16-bit PCM.
const BitDepth = 16

// Format describes the PCM stream.
type Format struct {
	SampleRate int
	Channels   int
}

// DefaultFormat is 48 kHz stereo.
var DefaultFormat = Format{SampleRate: 48000, Channels: 2}

// BytesPerFrame is the size of one sample for every channel.
func (format Format) BytesPerFrame() int {
	return format.Channels * BitDepth / 8
}

// Validate checks that the format describes a usable stream.
func (format Format) Validate() error {
	if format.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", format.SampleRate)
	}
	if format.Channels < 1 || format.Channels > 8 {
		return fmt.Errorf("channel count must be between 1 and 8, got %d", format.Channels)
	}
	return nil
}

// Codec names the encoding of the written track.
type Codec string

const (
	// CodecRaw writes headerless PCM exactly as captured.
	CodecRaw Codec = "raw"

	// CodecWAV writes a RIFF/WAVE file.
	CodecWAV Codec = "wav"

	// CodecZstd writes a zstd-compressed PCM stream.
	CodecZstd Codec = "zstd"

	// CodecLZ4 writes an lz4 frame-compressed PCM stream.
	CodecLZ4 Codec = "lz4"
)

// ParseCodec validates a codec name.
func ParseCodec(name string) (Codec, error) {
	switch codec := Codec(name); codec {
	case CodecRaw, CodecWAV, CodecZstd, CodecLZ4:
		return codec, nil
	default:
		return "", fmt.Errorf("unknown audio codec %q (want raw, wav, zstd, or lz4)", name)
	}
}
