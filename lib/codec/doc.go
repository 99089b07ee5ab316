// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the project's CBOR encoding configuration.
//
// Session files are JSON because the asciicast formats require it.
// Sidecar files that only castty itself reads, such as the audio
// metadata written next to a capture, are CBOR: compact, typed, and
// deterministic. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2), so the same value always produces the same bytes and sidecars
// can be compared or hashed directly.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types serialized only as CBOR use `cbor` struct tags.
package codec
