// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package pty

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// MaxDimension is the largest row or column count accepted for a
// recording.
const MaxDimension = 1000

// Size is a terminal size in character cells.
type Size struct {
	Columns uint16
	Rows    uint16
}

// Pair is an allocated pseudo-terminal.
type Pair struct {
	Master    *os.File
	Slave     *os.File
	SlavePath string
}

// Close closes both sides. The slave is usually closed earlier, once
// the shell holds its own copy.
func (pair *Pair) Close() error {
	var errs []error
	if err := pair.Master.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		errs = append(errs, err)
	}
	if err := pair.Slave.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Open allocates a master/slave pair and opens both sides.
func Open() (*Pair, error) {
	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/ptmx: %w", err)
	}

	fd := int(master.Fd())

	ptyNumber, err := unix.IoctlGetInt(fd, unix.TIOCGPTN)
	if err != nil {
		master.Close()
		return nil, fmt.Errorf("get PTY number (TIOCGPTN): %w", err)
	}

	if err := unix.IoctlSetPointerInt(fd, unix.TIOCSPTLCK, 0); err != nil {
		master.Close()
		return nil, fmt.Errorf("unlock PTY slave (TIOCSPTLCK): %w", err)
	}

	slavePath := fmt.Sprintf("/dev/pts/%d", ptyNumber)
	slave, err := os.OpenFile(slavePath, os.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		master.Close()
		return nil, fmt.Errorf("open PTY slave %s: %w", slavePath, err)
	}

	return &Pair{Master: master, Slave: slave, SlavePath: slavePath}, nil
}

// SetSize sets the window size of the terminal behind fd. On a master
// this also delivers SIGWINCH to the slave's foreground process group.
func SetSize(fd int, size Size) error {
	winsize := &unix.Winsize{
		Col: size.Columns,
		Row: size.Rows,
	}
	if err := unix.IoctlSetWinsize(fd, unix.TIOCSWINSZ, winsize); err != nil {
		return fmt.Errorf("set window size (TIOCSWINSZ): %w", err)
	}
	return nil
}

// GetSize reads the window size of the terminal behind fd.
func GetSize(fd int) (Size, error) {
	winsize, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return Size{}, fmt.Errorf("get window size (TIOCGWINSZ): %w", err)
	}
	return Size{Columns: winsize.Col, Rows: winsize.Row}, nil
}

// ClampSize resolves a requested recording size against the operator's
// terminal. A zero dimension, or one larger than the terminal, takes
// the terminal's value. Dimensions above MaxDimension are rejected.
func ClampSize(requested, terminal Size) (Size, error) {
	if requested.Columns > MaxDimension {
		return Size{}, fmt.Errorf("columns %d exceeds maximum %d", requested.Columns, MaxDimension)
	}
	if requested.Rows > MaxDimension {
		return Size{}, fmt.Errorf("rows %d exceeds maximum %d", requested.Rows, MaxDimension)
	}
	size := requested
	if size.Columns == 0 || size.Columns > terminal.Columns {
		size.Columns = terminal.Columns
	}
	if size.Rows == 0 || size.Rows > terminal.Rows {
		size.Rows = terminal.Rows
	}
	return size, nil
}

// ShellCommand builds the command for the recorded shell. With a
// non-empty command the shell runs it through -c; otherwise the shell
// is interactive.
func ShellCommand(shell, command string) *exec.Cmd {
	if command != "" {
		return exec.Command(shell, "-c", command)
	}
	return exec.Command(shell)
}

// Start runs cmd with the slave as its stdin, stdout, stderr, and
// controlling terminal, in a new session. The caller should close the
// slave once Start returns; the child keeps its own copies.
func Start(cmd *exec.Cmd, pair *Pair) error {
	cmd.Stdin = pair.Slave
	cmd.Stdout = pair.Slave
	cmd.Stderr = pair.Slave
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
		Ctty:    0, // fd 0 in child = slave PTY
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	return nil
}
