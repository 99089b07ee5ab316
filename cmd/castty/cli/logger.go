// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger for CLI command operations.
// When stderr is a terminal, uses slog.TextHandler for human-readable output.
// When stderr is piped or redirected, uses slog.JSONHandler for
// machine-parseable output.
//
// Callers scope the logger with command-specific context via With():
//
//	logger := cli.NewCommandLogger().With("command", "devices")
func NewCommandLogger() *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), slog.LevelInfo)
}

// NewFileLogger opens path for appending and returns a debug-level JSON
// logger writing to it, with the file to close when done. An empty
// path returns a logger that discards everything and a no-op closer.
//
// The recorder shares the operator's terminal, so it never logs to
// stderr; this is how its activity is observed.
func NewFileLogger(path string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), nopCloser{}, nil
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening debug log: %w", err)
	}
	return newLogger(file, false, slog.LevelDebug), file, nil
}

func newLogger(w io.Writer, text bool, level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if text {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
