// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package control defines the commands an operator sends to a running
// recorder and their wire form.
//
// Commands travel over a pipe as fixed-size little-endian records of
// [RecordSize] bytes. A pipe write of at most PIPE_BUF bytes is atomic,
// so a reader that is woken for a readable pipe always receives whole
// records; a partial record means the protocol broke and is reported
// as [ErrShortRead].
package control

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Command is one operator request to the recorder.
type Command uint32

const (
	// ForwardPrefix asks the recorder to write the prefix key (Ctrl-A)
	// into the terminal, so the program running there receives it.
	ForwardPrefix Command = 1

	// ToggleMute flips the audio capture's mute flag.
	ToggleMute Command = 2

	// TogglePause pauses or resumes recording.
	TogglePause Command = 3
)

// RecordSize is the size of one encoded command.
const RecordSize = 4

// ErrShortRead is returned when fewer than RecordSize bytes are
// available for a command.
var ErrShortRead = errors.New("control: short command read")

// Valid reports whether command is one of the defined commands.
func (command Command) Valid() bool {
	switch command {
	case ForwardPrefix, ToggleMute, TogglePause:
		return true
	default:
		return false
	}
}

// String returns the command name.
func (command Command) String() string {
	switch command {
	case ForwardPrefix:
		return "forward-prefix"
	case ToggleMute:
		return "toggle-mute"
	case TogglePause:
		return "toggle-pause"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(command))
	}
}

// Encode returns the wire record for command.
func (command Command) Encode() [RecordSize]byte {
	var record [RecordSize]byte
	binary.LittleEndian.PutUint32(record[:], uint32(command))
	return record
}

// Decode parses one wire record. It does not validate the value; the
// recorder treats an undefined command as a fatal protocol violation.
func Decode(record []byte) (Command, error) {
	if len(record) != RecordSize {
		return 0, fmt.Errorf("%w: got %d bytes, want %d", ErrShortRead, len(record), RecordSize)
	}
	return Command(binary.LittleEndian.Uint32(record)), nil
}

// Send writes command to writer as a single record.
func Send(writer io.Writer, command Command) error {
	record := command.Encode()
	written, err := writer.Write(record[:])
	if err != nil {
		return fmt.Errorf("sending %s: %w", command, err)
	}
	if written != RecordSize {
		return fmt.Errorf("sending %s: wrote %d of %d bytes", command, written, RecordSize)
	}
	return nil
}
