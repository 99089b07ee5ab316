// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Sink receives whole PCM frames and encodes them to the track file.
// Close flushes the encoding and closes the file.
type Sink interface {
	io.Writer
	Close() error
}

// NewSink wraps file in the encoder for codec. The sink owns file.
func NewSink(file *os.File, codec Codec, format Format) (Sink, error) {
	switch codec {
	case CodecRaw:
		return file, nil
	case CodecWAV:
		return newWAVSink(file, format), nil
	case CodecZstd:
		encoder, err := zstd.NewWriter(file)
		if err != nil {
			return nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		return &streamSink{encoder: encoder, file: file}, nil
	case CodecLZ4:
		return &streamSink{encoder: lz4.NewWriter(file), file: file}, nil
	default:
		return nil, fmt.Errorf("unsupported audio codec %q", codec)
	}
}

// streamSink layers a compressing writer over the file.
type streamSink struct {
	encoder io.WriteCloser
	file    *os.File
}

func (sink *streamSink) Write(data []byte) (int, error) {
	return sink.encoder.Write(data)
}

func (sink *streamSink) Close() error {
	return errors.Join(sink.encoder.Close(), sink.file.Close())
}

// wavSink converts little-endian s16 frames into go-audio buffers. The
// WAV header sizes are filled in by the encoder on Close, which needs
// to seek, hence the *os.File.
type wavSink struct {
	encoder *wav.Encoder
	file    *os.File
	buffer  *goaudio.IntBuffer
}

func newWAVSink(file *os.File, format Format) *wavSink {
	return &wavSink{
		encoder: wav.NewEncoder(file, format.SampleRate, BitDepth, format.Channels, 1),
		file:    file,
		buffer: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: format.Channels,
				SampleRate:  format.SampleRate,
			},
			SourceBitDepth: BitDepth,
		},
	}
}

func (sink *wavSink) Write(data []byte) (int, error) {
	samples := len(data) / 2
	if cap(sink.buffer.Data) < samples {
		sink.buffer.Data = make([]int, samples)
	}
	sink.buffer.Data = sink.buffer.Data[:samples]
	for index := range samples {
		sink.buffer.Data[index] = int(int16(binary.LittleEndian.Uint16(data[index*2:])))
	}
	if err := sink.encoder.Write(sink.buffer); err != nil {
		return 0, fmt.Errorf("encoding wav: %w", err)
	}
	return samples * 2, nil
}

func (sink *wavSink) Close() error {
	return errors.Join(sink.encoder.Close(), sink.file.Close())
}
