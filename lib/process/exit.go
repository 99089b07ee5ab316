// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run() where the structured logger may not be
// initialized.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// ExitCode returns the status a process should exit with for err: 0
// for nil, the error's own code when it has an ExitCode method, and 1
// otherwise. The boolean reports whether err still needs printing;
// errors with their own code have already been reported.
func ExitCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode(), false
	}
	return 1, true
}

// Exit reports err to stderr when needed and exits with [ExitCode].
func Exit(err error) {
	code, report := ExitCode(err)
	if report {
		writeError(os.Stderr, err)
	}
	os.Exit(code)
}

func writeError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
