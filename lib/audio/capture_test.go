// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/castty/castty/lib/testutil"
)

// chanSource hands chunks to the capture goroutine one Read at a time.
// Because the channel is unbuffered, a completed send means the
// previous chunk has been fully processed.
type chanSource struct {
	chunks    chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newChanSource() *chanSource {
	return &chanSource{chunks: make(chan []byte), closed: make(chan struct{})}
}

func (source *chanSource) Read(buffer []byte) (int, error) {
	select {
	case chunk, ok := <-source.chunks:
		if !ok {
			return 0, io.EOF
		}
		return copy(buffer, chunk), nil
	case <-source.closed:
		return 0, os.ErrClosed
	}
}

func (source *chanSource) Close() error {
	source.closeOnce.Do(func() { close(source.closed) })
	return nil
}

// feed delivers data and waits until the capture has consumed it.
func (source *chanSource) feed(data []byte) {
	source.chunks <- data
	source.chunks <- nil
}

// finish ends the stream and waits for the capture goroutine.
func finish(t *testing.T, capture *Capture, source *chanSource) {
	t.Helper()
	close(source.chunks)
	testutil.RequireClosed(t, capture.done, 5*time.Second, "waiting for capture goroutine")
	if err := capture.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func samples(values ...int16) []byte {
	data := make([]byte, 2*len(values))
	for index, value := range values {
		binary.LittleEndian.PutUint16(data[index*2:], uint16(value))
	}
	return data
}

func openTest(t *testing.T, codec Codec, format Format) (*Capture, *chanSource, string) {
	t.Helper()
	output := filepath.Join(t.TempDir(), "track.pcm")
	source := newChanSource()
	capture, err := Open(Options{
		Output: output,
		Codec:  codec,
		Format: format,
		Source: func() (io.ReadCloser, error) { return source, nil },
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return capture, source, output
}

var monoKilohertz = Format{SampleRate: 1000, Channels: 1}

func TestCaptureWritesOnlyWhileStarted(t *testing.T) {
	t.Parallel()

	capture, source, output := openTest(t, CodecRaw, monoKilohertz)

	source.feed(samples(9, 9, 9))
	if got := capture.ClockMS(); got != 0 {
		t.Errorf("clock before Start: got %v, want 0", got)
	}

	capture.Start()
	source.feed(samples(1, 2, 3, 4))
	if got := capture.ClockMS(); got != 4 {
		t.Errorf("clock after 4 frames at 1kHz: got %v, want 4", got)
	}

	capture.Stop()
	source.feed(samples(7, 7))
	capture.Start()
	source.feed(samples(5))

	finish(t, capture, source)

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading track: %v", err)
	}
	if want := samples(1, 2, 3, 4, 5); !bytes.Equal(data, want) {
		t.Errorf("track: got %v, want %v", data, want)
	}
	if got := capture.Frames(); got != 5 {
		t.Errorf("Frames: got %d, want 5", got)
	}
}

func TestCaptureMuteWritesSilence(t *testing.T) {
	t.Parallel()

	capture, source, output := openTest(t, CodecRaw, monoKilohertz)
	capture.Start()

	source.feed(samples(1, 2))
	capture.ToggleMute()
	if !capture.Muted() {
		t.Fatal("Muted after one toggle: got false")
	}
	source.feed(samples(3, 4))
	capture.ToggleMute()
	if capture.Muted() {
		t.Fatal("Muted after two toggles: got true")
	}
	source.feed(samples(5))

	finish(t, capture, source)

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading track: %v", err)
	}
	if want := samples(1, 2, 0, 0, 5); !bytes.Equal(data, want) {
		t.Errorf("track: got %v, want %v", data, want)
	}
	if got := capture.ClockMS(); got != 5 {
		t.Errorf("clock counts muted frames: got %v, want 5", got)
	}
}

func TestCaptureCarriesPartialFrames(t *testing.T) {
	t.Parallel()

	stereo := Format{SampleRate: 1000, Channels: 2}
	capture, source, output := openTest(t, CodecRaw, stereo)
	capture.Start()

	frames := samples(10, 11, 20, 21)
	source.feed(frames[:3])
	if got := capture.Frames(); got != 0 {
		t.Errorf("frames after partial frame: got %d, want 0", got)
	}
	source.feed(frames[3:])
	if got := capture.Frames(); got != 2 {
		t.Errorf("frames after completing: got %d, want 2", got)
	}

	finish(t, capture, source)

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading track: %v", err)
	}
	if !bytes.Equal(data, frames) {
		t.Errorf("track: got %v, want %v", data, frames)
	}
}

func TestCaptureWritesMetadata(t *testing.T) {
	t.Parallel()

	capture, source, output := openTest(t, CodecZstd, Format{SampleRate: 8000, Channels: 1})
	capture.Start()
	source.feed(samples(make([]int16, 80)...))
	finish(t, capture, source)

	metadata, err := ReadMetadata(output + MetadataSuffix)
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	want := Metadata{
		Codec:      CodecZstd,
		Encoding:   "s16le",
		SampleRate: 8000,
		Channels:   1,
		BitDepth:   16,
		Frames:     80,
		DurationMS: 10,
	}
	if metadata != want {
		t.Errorf("metadata: got %+v, want %+v", metadata, want)
	}
}

func TestCaptureCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	capture, _, _ := openTest(t, CodecRaw, monoKilohertz)
	if err := capture.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := capture.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestCompressedSinks(t *testing.T) {
	t.Parallel()

	payload := samples(100, -100, 200, -200, 300)

	tests := []struct {
		codec  Codec
		decode func(io.Reader) ([]byte, error)
	}{
		{CodecZstd, func(r io.Reader) ([]byte, error) {
			decoder, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			defer decoder.Close()
			return io.ReadAll(decoder)
		}},
		{CodecLZ4, func(r io.Reader) ([]byte, error) {
			return io.ReadAll(lz4.NewReader(r))
		}},
	}
	for _, test := range tests {
		t.Run(string(test.codec), func(t *testing.T) {
			t.Parallel()

			capture, source, output := openTest(t, test.codec, monoKilohertz)
			capture.Start()
			source.feed(payload)
			finish(t, capture, source)

			file, err := os.Open(output)
			if err != nil {
				t.Fatalf("opening track: %v", err)
			}
			defer file.Close()
			got, err := test.decode(file)
			if err != nil {
				t.Fatalf("decoding: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("decoded: got %v, want %v", got, payload)
			}
		})
	}
}

func TestWAVSink(t *testing.T) {
	t.Parallel()

	format := Format{SampleRate: 16000, Channels: 2}
	capture, source, output := openTest(t, CodecWAV, format)
	capture.Start()
	source.feed(samples(1, -1, 32767, -32768))
	finish(t, capture, source)

	file, err := os.Open(output)
	if err != nil {
		t.Fatalf("opening track: %v", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		t.Fatal("track is not a valid WAV file")
	}
	buffer, err := decoder.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	if buffer.Format.SampleRate != 16000 || buffer.Format.NumChannels != 2 {
		t.Errorf("format: got %d Hz x%d, want 16000 Hz x2",
			buffer.Format.SampleRate, buffer.Format.NumChannels)
	}
	want := []int{1, -1, 32767, -32768}
	if len(buffer.Data) != len(want) {
		t.Fatalf("samples: got %v, want %v", buffer.Data, want)
	}
	for index := range want {
		if buffer.Data[index] != want[index] {
			t.Errorf("sample %d: got %d, want %d", index, buffer.Data[index], want[index])
		}
	}
}

func TestOpenValidation(t *testing.T) {
	t.Parallel()

	source := func() (io.ReadCloser, error) { return newChanSource(), nil }
	if _, err := Open(Options{Format: DefaultFormat, Source: source}); err == nil {
		t.Error("Open without output: expected error")
	}
	output := filepath.Join(t.TempDir(), "track")
	if _, err := Open(Options{Output: output, Format: Format{SampleRate: 0, Channels: 1}, Source: source}); err == nil {
		t.Error("Open with zero sample rate: expected error")
	}
}
