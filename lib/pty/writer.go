// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package pty

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// InputWriter writes keystrokes to a pseudo-terminal master that is
// shared with another process. O_NONBLOCK belongs to the open file
// description, so when the other process switches the master to
// non-blocking mode this side sees EAGAIN once the input queue fills.
// InputWriter waits for the queue to drain instead of failing.
type InputWriter struct {
	file *os.File
}

// NewInputWriter returns an InputWriter for file.
func NewInputWriter(file *os.File) *InputWriter {
	return &InputWriter{file: file}
}

// Write writes all of data, waiting whenever the descriptor would block.
func (writer *InputWriter) Write(data []byte) (int, error) {
	written := 0
	for written < len(data) {
		n, err := writer.file.Write(data[written:])
		written += n
		if err == nil {
			continue
		}
		if !errors.Is(err, syscall.EAGAIN) {
			return written, err
		}
		if err := writer.waitWritable(); err != nil {
			return written, err
		}
	}
	return written, nil
}

func (writer *InputWriter) waitWritable() error {
	raw, err := writer.file.SyscallConn()
	if err != nil {
		return err
	}
	var pollErr error
	err = raw.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
		for {
			_, pollErr = unix.Poll(fds, -1)
			if !errors.Is(pollErr, unix.EINTR) {
				return
			}
		}
	})
	if err != nil {
		return err
	}
	if pollErr != nil {
		return fmt.Errorf("waiting for terminal input queue: %w", pollErr)
	}
	return nil
}
