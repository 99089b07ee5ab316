// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"github.com/castty/castty/lib/codec"
)

// MetadataSuffix is appended to the track path to name its sidecar.
const MetadataSuffix = ".meta"

// Metadata describes a written track. It is stored as CBOR next to the
// track so that raw and compressed PCM can be decoded later.
type Metadata struct {
	Codec      Codec   `cbor:"codec"`
	Encoding   string  `cbor:"encoding"`
	SampleRate int     `cbor:"sample_rate"`
	Channels   int     `cbor:"channels"`
	BitDepth   int     `cbor:"bit_depth"`
	Frames     int64   `cbor:"frames"`
	DurationMS float64 `cbor:"duration_ms"`
	Backend    string  `cbor:"backend,omitempty"`
	Device     string  `cbor:"device,omitempty"`
}

// WriteMetadata stores metadata at path.
func WriteMetadata(path string, metadata Metadata) error {
	return codec.WriteFile(path, metadata)
}

// ReadMetadata loads a sidecar written by [WriteMetadata].
func ReadMetadata(path string) (Metadata, error) {
	var metadata Metadata
	if err := codec.ReadFile(path, &metadata); err != nil {
		return Metadata{}, err
	}
	return metadata, nil
}
