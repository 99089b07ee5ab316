// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package recorder

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/castty/castty/lib/asciicast"
	"github.com/castty/castty/lib/clock"
	"github.com/castty/castty/lib/control"
	"github.com/castty/castty/lib/timing"
)

// ErrSessionEnded is returned by Run when the terminal channel reports
// end of stream: the recorded shell and everything holding the
// pseudo-terminal open have exited.
var ErrSessionEnded = errors.New("recorder: terminal session ended")

// ErrChannelHangup is returned by Run when a channel reports hang-up,
// error, or an invalid descriptor outside of a normal session end.
var ErrChannelHangup = errors.New("recorder: channel hang-up")

const (
	// prefixByte is written to the terminal for [control.ForwardPrefix]
	// so the foreground program still receives the key that the
	// listener reserves as its prefix.
	prefixByte = 0x01

	// redrawByte (form feed) asks the foreground program to repaint
	// after output was suppressed by a pause.
	redrawByte = 0x0c

	// readBufferSize bounds one terminal read.
	readBufferSize = 8192
)

// Audio is the part of an audio capture the recorder drives.
type Audio interface {
	Start()
	Stop()
	ToggleMute()
	ClockMS() float64
	Close() error
}

// Channels are the descriptors a Session reads and writes. The caller
// keeps ownership; Run does not close them.
type Channels struct {
	// Control carries control.RecordSize command records.
	Control *os.File

	// Terminal is the pseudo-terminal master: output is read from it
	// and injected control bytes are written to it.
	Terminal *os.File

	// Stdout receives a copy of every terminal read, paused or not,
	// and the screen-clearing prelude.
	Stdout io.Writer

	// Stdin, when set, is closed before the loop starts. The terminal
	// channel is the only source of terminal data.
	Stdin io.Closer
}

// Config holds the per-session options.
type Config struct {
	// StartPaused begins the session in the Paused state.
	StartPaused bool

	// Audio enables audio capture and makes its clock the session's
	// time source. Nil records without audio against Clock.
	Audio Audio

	// Clock is the wall clock used when Audio is nil. Nil means
	// clock.Real().
	Clock clock.Clock

	Logger *slog.Logger
}

// Session is the state of one recording. Create with [New], then call
// [Session.Run] once.
type Session struct {
	writer       *asciicast.Writer
	channels     Channels
	audio        Audio
	synchronizer *timing.Synchronizer
	logger       *slog.Logger

	controlFD  int
	terminalFD int

	startPaused bool
	paused      bool
	firstSeen   bool
	finalized   bool

	buffer []byte
}

// New assembles a session writing to writer. The time source is
// chosen here and never changes for the life of the session.
func New(writer *asciicast.Writer, channels Channels, config Config) *Session {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var source timing.TimeSource
	if config.Audio != nil {
		source = timing.NewAudioClock(config.Audio)
	} else {
		wall := config.Clock
		if wall == nil {
			wall = clock.Real()
		}
		source = timing.NewWallClock(wall)
	}

	return &Session{
		writer:       writer,
		channels:     channels,
		audio:        config.Audio,
		synchronizer: timing.NewSynchronizer(source),
		logger:       logger,
		controlFD:    -1,
		terminalFD:   -1,
		startPaused:  config.StartPaused,
		paused:       config.StartPaused,
		buffer:       make([]byte, readBufferSize),
	}
}

// Paused reports whether terminal output is currently being dropped
// from the session file.
func (session *Session) Paused() bool {
	return session.paused
}

// TotalMS is the recorded duration so far.
func (session *Session) TotalMS() float64 {
	return session.synchronizer.TotalMS()
}

// handleCommand applies one control command. An unknown command means
// the control protocol is corrupt and the process cannot continue.
func (session *Session) handleCommand(command control.Command) error {
	if !command.Valid() {
		panic(fmt.Sprintf("recorder: unknown control command %d", uint32(command)))
	}
	session.logger.Debug("control command", "command", command.String(), "paused", session.paused)

	switch command {
	case control.ForwardPrefix:
		return session.inject(prefixByte)

	case control.ToggleMute:
		if session.audio != nil {
			session.audio.ToggleMute()
		}
		return nil

	case control.TogglePause:
		session.paused = !session.paused
		if session.paused {
			if session.audio != nil {
				session.audio.Stop()
			}
			session.logger.Info("recording paused", "total_ms", session.synchronizer.TotalMS())
			return nil
		}
		if err := session.inject(redrawByte); err != nil {
			return err
		}
		if session.audio != nil {
			session.audio.Start()
		}
		session.synchronizer.Rebaseline()
		session.logger.Info("recording resumed", "total_ms", session.synchronizer.TotalMS())
	}
	return nil
}

// handleOutput appends one event for a batch read while recording. The
// first event of the session starts the audio capture (unless the
// session started paused, in which case resume already did) and sets
// the timing baseline, so it always carries a zero delta.
func (session *Session) handleOutput(raw []byte) error {
	if !session.firstSeen {
		if session.audio != nil && !session.startPaused {
			session.audio.Start()
		}
		session.synchronizer.Rebaseline()
		session.firstSeen = true
	} else {
		session.synchronizer.Sample()
	}

	delta, total := session.synchronizer.Advance()
	return session.writer.WriteOutput(delta, total, raw)
}

// finalize closes the session file and the audio capture. It runs at
// most once; later calls return nil.
func (session *Session) finalize() error {
	if session.finalized {
		return nil
	}
	session.finalized = true

	var errs []error
	total := session.synchronizer.TotalMS()
	if err := session.writer.Close(total); err != nil {
		errs = append(errs, fmt.Errorf("closing session file: %w", err))
	}
	if session.audio != nil {
		if !session.paused {
			session.audio.Stop()
		}
		if err := session.audio.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing audio: %w", err))
		}
	}

	session.logger.Info("session finalized",
		"total_ms", total,
		"events", session.writer.Events(),
	)
	return errors.Join(errs...)
}
