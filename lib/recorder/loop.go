// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package recorder

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/sys/unix"

	"github.com/castty/castty/lib/control"
)

const (
	pollControl  = 0
	pollTerminal = 1

	// pollFailure flags a descriptor the loop cannot continue with.
	pollFailure = unix.POLLERR | unix.POLLNVAL
)

// Run performs the prelude, runs the event loop until a channel ends
// or fails, and finalizes the session. The loop's reason for stopping
// is returned: [ErrSessionEnded] for a normal end of recording. If
// finalization fails, its error is returned instead of (or joined
// with) the loop's.
func (session *Session) Run() error {
	if session.finalized {
		return errors.New("recorder: session already run")
	}

	loopErr := session.prelude()
	if loopErr == nil {
		loopErr = session.loop()
	}
	// The loop reads and writes raw descriptors; keep the files (and
	// their finalizers) alive until it is done.
	runtime.KeepAlive(session.channels.Control)
	runtime.KeepAlive(session.channels.Terminal)

	session.logger.Info("event loop stopped", "reason", loopErr)

	finalizeErr := session.finalize()
	if finalizeErr == nil {
		return loopErr
	}
	if errors.Is(loopErr, ErrSessionEnded) {
		return finalizeErr
	}
	return errors.Join(loopErr, finalizeErr)
}

// prelude detaches stdin, clears the operator's screen, and switches
// both channels to non-blocking mode.
func (session *Session) prelude() error {
	if session.channels.Stdin != nil {
		if err := session.channels.Stdin.Close(); err != nil {
			return fmt.Errorf("closing stdin: %w", err)
		}
	}

	if _, err := session.channels.Stdout.Write([]byte(ansi.EraseEntireScreen + ansi.CursorHomePosition)); err != nil {
		return fmt.Errorf("clearing screen: %w", err)
	}

	// Fd puts the file in blocking mode, so it is taken before
	// SetNonblock, never after.
	session.controlFD = int(session.channels.Control.Fd())
	session.terminalFD = int(session.channels.Terminal.Fd())
	for _, fd := range []int{session.controlFD, session.terminalFD} {
		if err := unix.SetNonblock(fd, true); err != nil {
			return fmt.Errorf("setting fd %d non-blocking: %w", fd, err)
		}
	}
	return nil
}

func (session *Session) loop() error {
	fds := []unix.PollFd{
		pollControl:  {Fd: int32(session.controlFD), Events: unix.POLLIN},
		pollTerminal: {Fd: int32(session.terminalFD), Events: unix.POLLIN},
	}

	for {
		for index := range fds {
			fds[index].Revents = 0
		}
		if _, err := unix.Poll(fds, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("poll: %w", err)
		}

		if err := session.serviceControl(fds[pollControl].Revents); err != nil {
			return err
		}
		if err := session.serviceTerminal(fds[pollTerminal].Revents); err != nil {
			return err
		}
	}
}

// serviceControl reads and applies at most one command record. A
// hang-up with data still pending is serviced first; the hang-up is
// reported once the pipe is empty.
func (session *Session) serviceControl(revents int16) error {
	if revents&pollFailure != 0 {
		return fmt.Errorf("control channel: %w (revents %#x)", ErrChannelHangup, revents)
	}
	if revents&unix.POLLIN == 0 {
		if revents&unix.POLLHUP != 0 {
			return fmt.Errorf("control channel closed: %w", ErrChannelHangup)
		}
		return nil
	}

	var record [control.RecordSize]byte
	n, err := unix.Read(session.controlFD, record[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return nil
		}
		return fmt.Errorf("reading control channel: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("control channel closed: %w", ErrChannelHangup)
	}
	command, err := control.Decode(record[:n])
	if err != nil {
		return fmt.Errorf("reading control channel: %w", err)
	}
	return session.handleCommand(command)
}

// serviceTerminal reads one batch of terminal output, copies it to
// stdout, and records it unless paused. On Linux a pseudo-terminal
// master reports POLLHUP and then EIO once the last slave descriptor is
// closed; both, and a zero read, end the session.
func (session *Session) serviceTerminal(revents int16) error {
	if revents&unix.POLLNVAL != 0 {
		return fmt.Errorf("terminal channel: %w (revents %#x)", ErrChannelHangup, revents)
	}
	if revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
		return nil
	}

	n, err := unix.Read(session.terminalFD, session.buffer)
	switch {
	case errors.Is(err, unix.EAGAIN):
		if revents&(unix.POLLHUP|unix.POLLERR) != 0 {
			return ErrSessionEnded
		}
		return nil
	case errors.Is(err, unix.EIO):
		return ErrSessionEnded
	case err != nil:
		return fmt.Errorf("reading terminal channel: %w", err)
	case n <= 0:
		return ErrSessionEnded
	}

	batch := session.buffer[:n]
	if _, err := session.channels.Stdout.Write(batch); err != nil {
		return fmt.Errorf("writing stdout: %w", err)
	}
	if session.paused {
		return nil
	}
	return session.handleOutput(batch)
}

// inject writes a single control byte to the terminal so the foreground
// program reads it as input.
func (session *Session) inject(b byte) error {
	if _, err := unix.Write(session.terminalFD, []byte{b}); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	return nil
}
