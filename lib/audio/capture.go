// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// framesPerRead bounds one read from the source.
const framesPerRead = 1024

// Options configures [Open].
type Options struct {
	// Output is the track path. The metadata sidecar is written to
	// Output + [MetadataSuffix].
	Output string

	Codec  Codec
	Format Format

	// Raw forces headerless PCM regardless of Codec.
	Raw bool

	// FFmpeg configures the default source. Its Format is overridden
	// by Format and its LogPath defaults to Output + ".ffmpeg.log".
	FFmpeg FFmpeg

	// Source replaces the ffmpeg process. Used in tests.
	Source SourceOpener

	Logger *slog.Logger
}

// Capture is a running audio track. Start, Stop, and ToggleMute are
// called from the recorder's event loop; a single goroutine owns the
// source and the sink.
type Capture struct {
	format  Format
	codec   Codec
	output  string
	backend string
	device  string
	logger  *slog.Logger

	source io.ReadCloser
	sink   Sink

	started atomic.Bool
	muted   atomic.Bool
	closing atomic.Bool
	frames  atomic.Int64

	done    chan struct{}
	loopErr error

	closeOnce sync.Once
	closeErr  error
}

// Open creates the track file and starts the source. Capture begins
// stopped: frames are discarded until [Capture.Start].
func Open(options Options) (*Capture, error) {
	if options.Output == "" {
		return nil, errors.New("audio output path is required")
	}
	if err := options.Format.Validate(); err != nil {
		return nil, err
	}
	if options.Raw || options.Codec == "" {
		options.Codec = CodecRaw
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	file, err := os.OpenFile(options.Output, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating audio output: %w", err)
	}
	sink, err := NewSink(file, options.Codec, options.Format)
	if err != nil {
		file.Close()
		return nil, err
	}

	opener := options.Source
	if opener == nil {
		ffmpeg := options.FFmpeg
		ffmpeg.Format = options.Format
		if ffmpeg.LogPath == "" {
			ffmpeg.LogPath = options.Output + ".ffmpeg.log"
		}
		opener = ffmpeg.Open
	}
	source, err := opener()
	if err != nil {
		sink.Close()
		return nil, fmt.Errorf("opening audio source: %w", err)
	}

	capture := &Capture{
		format:  options.Format,
		codec:   options.Codec,
		output:  options.Output,
		backend: options.FFmpeg.Backend,
		device:  options.FFmpeg.Device,
		logger:  logger,
		source:  source,
		sink:    sink,
		done:    make(chan struct{}),
	}
	go capture.run()

	logger.Info("audio capture opened",
		"output", options.Output,
		"codec", string(options.Codec),
		"sample_rate", options.Format.SampleRate,
		"channels", options.Format.Channels,
	)
	return capture, nil
}

// Start begins writing frames to the track.
func (capture *Capture) Start() {
	capture.started.Store(true)
}

// Stop discards frames until the next Start. The clock holds still.
func (capture *Capture) Stop() {
	capture.started.Store(false)
}

// ToggleMute switches between writing captured frames and writing
// silence. Muted frames still advance the clock.
func (capture *Capture) ToggleMute() {
	for {
		muted := capture.muted.Load()
		if capture.muted.CompareAndSwap(muted, !muted) {
			break
		}
	}
	capture.logger.Info("audio mute toggled", "muted", capture.Muted())
}

// Muted reports whether silence is being written.
func (capture *Capture) Muted() bool {
	return capture.muted.Load()
}

// Frames is the number of frames written so far.
func (capture *Capture) Frames() int64 {
	return capture.frames.Load()
}

// ClockMS is the duration of audio written so far, in milliseconds.
func (capture *Capture) ClockMS() float64 {
	return float64(capture.Frames()) * 1000 / float64(capture.format.SampleRate)
}

// Close stops the source, flushes the sink, and writes the metadata
// sidecar. Later calls return the first result.
func (capture *Capture) Close() error {
	capture.closeOnce.Do(func() {
		capture.closing.Store(true)

		var errs []error
		if err := capture.source.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing audio source: %w", err))
		}
		<-capture.done
		if capture.loopErr != nil {
			errs = append(errs, capture.loopErr)
		}
		if err := capture.sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing audio output: %w", err))
		}

		metadata := Metadata{
			Codec:      capture.codec,
			Encoding:   "s16le",
			SampleRate: capture.format.SampleRate,
			Channels:   capture.format.Channels,
			BitDepth:   BitDepth,
			Frames:     capture.Frames(),
			DurationMS: capture.ClockMS(),
			Backend:    capture.backend,
			Device:     capture.device,
		}
		if err := WriteMetadata(capture.output+MetadataSuffix, metadata); err != nil {
			errs = append(errs, fmt.Errorf("writing audio metadata: %w", err))
		}

		capture.logger.Info("audio capture closed",
			"frames", metadata.Frames,
			"duration_ms", metadata.DurationMS,
		)
		capture.closeErr = errors.Join(errs...)
	})
	return capture.closeErr
}

// run drains the source until it ends. Partial frames are carried over
// to the next read so the sink only ever sees whole frames.
func (capture *Capture) run() {
	defer close(capture.done)

	frameSize := capture.format.BytesPerFrame()
	buffer := make([]byte, frameSize*framesPerRead)
	silence := make([]byte, len(buffer))
	pending := 0

	for {
		n, err := capture.source.Read(buffer[pending:])
		total := pending + n
		whole := total - total%frameSize

		if whole > 0 && capture.started.Load() {
			chunk := buffer[:whole]
			if capture.muted.Load() {
				chunk = silence[:whole]
			}
			if _, writeErr := capture.sink.Write(chunk); writeErr != nil {
				capture.loopErr = fmt.Errorf("writing audio: %w", writeErr)
				return
			}
			capture.frames.Add(int64(whole / frameSize))
		}
		pending = copy(buffer, buffer[whole:total])

		if err != nil {
			if !errors.Is(err, io.EOF) && !capture.closing.Load() {
				capture.loopErr = fmt.Errorf("reading audio: %w", err)
			}
			if pending > 0 {
				capture.logger.Warn("audio stream ended mid-frame", "bytes", pending)
			}
			return
		}
	}
}
