// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"path/filepath"
	"testing"
)

type sampleSidecar struct {
	Codec      string `cbor:"codec"`
	SampleRate int    `cbor:"sample_rate"`
	Frames     int64  `cbor:"frames,omitempty"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleSidecar{Codec: "zstd", SampleRate: 48000, Frames: 96000}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleSidecar
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	first, err := Marshal(map[string]int{"b": 2, "a": 1, "c": 3})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(map[string]int{"c": 3, "a": 1, "b": 2})
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("non-deterministic encoding: %x vs %x", first, again)
		}
	}
}

func TestAnyMapsDecodeWithStringKeys(t *testing.T) {
	data, err := Marshal(map[string]any{"nested": map[string]any{"rate": 44100}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded["nested"].(map[string]any); !ok {
		t.Errorf("nested map decoded as %T, want map[string]any", decoded["nested"])
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.meta")
	original := sampleSidecar{Codec: "wav", SampleRate: 44100}
	if err := WriteFile(path, original); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var decoded sampleSidecar
	if err := ReadFile(path, &decoded); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if decoded != original {
		t.Errorf("got %+v, want %+v", decoded, original)
	}
}
