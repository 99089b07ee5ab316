// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package keybind turns the operator's keystrokes into recorder
// control commands.
//
// Input passes through to the terminal unchanged except for the prefix
// key, Ctrl-A. The byte after the prefix selects a command:
//
//	a, Ctrl-A   forward a literal Ctrl-A to the recorded program
//	m           toggle audio mute
//	p           toggle pause
//
// Any other byte after the prefix is dropped. Commands are sent as
// single fixed-size records on the control channel, so they are never
// interleaved with one another on a pipe.
package keybind

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/castty/castty/lib/control"
)

// Prefix is the key that introduces a command: Ctrl-A.
const Prefix = 0x01

// Bindings maps the byte following the prefix to a command.
var Bindings = map[byte]control.Command{
	'a':    control.ForwardPrefix,
	Prefix: control.ForwardPrefix,
	'm':    control.ToggleMute,
	'p':    control.TogglePause,
}

// Listener splits operator input between the terminal and the control
// channel. The prefix state carries across calls to Feed, so a prefix
// and its command key may arrive in separate reads.
type Listener struct {
	terminal io.Writer
	control  io.Writer
	logger   *slog.Logger

	pending bool
	passed  []byte
}

// New returns a Listener writing plain input to terminal and commands
// to controlChannel.
func New(terminal, controlChannel io.Writer, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Listener{terminal: terminal, control: controlChannel, logger: logger}
}

// Feed processes one chunk of input. Plain bytes before a command are
// written to the terminal before the command is sent.
func (listener *Listener) Feed(input []byte) error {
	listener.passed = listener.passed[:0]
	for _, b := range input {
		if !listener.pending {
			if b == Prefix {
				listener.pending = true
				continue
			}
			listener.passed = append(listener.passed, b)
			continue
		}

		listener.pending = false
		command, bound := Bindings[b]
		if !bound {
			listener.logger.Debug("unbound key after prefix", "key", b)
			continue
		}
		if err := listener.flush(); err != nil {
			return err
		}
		if err := control.Send(listener.control, command); err != nil {
			return err
		}
	}
	return listener.flush()
}

func (listener *Listener) flush() error {
	if len(listener.passed) == 0 {
		return nil
	}
	if _, err := listener.terminal.Write(listener.passed); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	listener.passed = listener.passed[:0]
	return nil
}

// Run feeds input until it ends. End of input returns nil.
func (listener *Listener) Run(input io.Reader) error {
	buffer := make([]byte, 1024)
	for {
		n, err := input.Read(buffer)
		if n > 0 {
			if feedErr := listener.Feed(buffer[:n]); feedErr != nil {
				return feedErr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
	}
}
