// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// SourceOpener starts a PCM stream. The returned reader yields s16le
// frames until Close is called or the producer exits.
type SourceOpener func() (io.ReadCloser, error)

// DefaultBackend is the ffmpeg input format for the host platform.
func DefaultBackend() string {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	default:
		return "pulse"
	}
}

// FFmpeg describes a capture process. Binary defaults to "ffmpeg" on
// PATH, Backend to [DefaultBackend], and Device to "default".
type FFmpeg struct {
	Binary  string
	Backend string
	Device  string
	Format  Format

	// LogPath receives ffmpeg's stderr. Empty discards it.
	LogPath string
}

func (ffmpeg FFmpeg) binary() string {
	if ffmpeg.Binary == "" {
		return "ffmpeg"
	}
	return ffmpeg.Binary
}

// Arguments returns the ffmpeg command line, excluding the binary.
func (ffmpeg FFmpeg) Arguments() []string {
	backend := ffmpeg.Backend
	if backend == "" {
		backend = DefaultBackend()
	}
	device := ffmpeg.Device
	if device == "" {
		device = "default"
	}
	return []string{
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error",
		"-f", backend,
		"-i", device,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(ffmpeg.Format.Channels),
		"-ar", strconv.Itoa(ffmpeg.Format.SampleRate),
		"pipe:1",
	}
}

// Open starts ffmpeg. Closing the returned reader kills the process
// and reaps it.
func (ffmpeg FFmpeg) Open() (io.ReadCloser, error) {
	binary, err := exec.LookPath(ffmpeg.binary())
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	reader, writer, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating audio pipe: %w", err)
	}

	cmd := exec.Command(binary, ffmpeg.Arguments()...)
	cmd.Stdout = writer

	var logFile *os.File
	if ffmpeg.LogPath != "" {
		logFile, err = os.Create(ffmpeg.LogPath)
		if err != nil {
			reader.Close()
			writer.Close()
			return nil, fmt.Errorf("creating ffmpeg log: %w", err)
		}
		cmd.Stderr = logFile
	}

	if err := cmd.Start(); err != nil {
		reader.Close()
		writer.Close()
		if logFile != nil {
			logFile.Close()
		}
		return nil, fmt.Errorf("starting %s: %w", binary, err)
	}
	// The child holds its own copy; ours must go so the reader sees
	// EOF when ffmpeg exits.
	writer.Close()

	return &ffmpegStream{cmd: cmd, stdout: reader, logFile: logFile}, nil
}

type ffmpegStream struct {
	cmd     *exec.Cmd
	stdout  *os.File
	logFile *os.File
}

func (stream *ffmpegStream) Read(buffer []byte) (int, error) {
	return stream.stdout.Read(buffer)
}

func (stream *ffmpegStream) Close() error {
	var errs []error
	if err := stream.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		errs = append(errs, fmt.Errorf("killing ffmpeg: %w", err))
	}
	// Killed is the expected outcome; only a failure to reap matters.
	if err := stream.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			errs = append(errs, fmt.Errorf("waiting for ffmpeg: %w", err))
		}
	}
	if err := stream.stdout.Close(); err != nil {
		errs = append(errs, err)
	}
	if stream.logFile != nil {
		if err := stream.logFile.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
