// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command errors so that scripts and tests can
// tell bad input from environment problems without parsing error text.
type ErrorCategory string

const (
	// CategoryValidation indicates the caller provided invalid input:
	// unknown flags, wrong argument count, unparseable values, a
	// configuration that fails validation. Fix the input and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced resource does not exist:
	// a missing cast file, an absent ffmpeg binary, an unknown device.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryTransient indicates a failure that may not recur: a
	// device that is busy, a process that failed to start.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal indicates an unexpected error: bugs, I/O
	// failures, parse errors on data castty produced itself.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by CLI commands. It wraps
// an inner error, preserving the full chain for errors.Is and
// errors.As, and can carry a hint telling the operator what to do.
//
// Use the category-specific constructors (Validation, NotFound, etc.)
// rather than constructing ToolError directly.
type ToolError struct {
	// Category classifies the error for programmatic handling.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error

	// Hint is an optional remediation shown after the message.
	Hint string
}

// Error returns the underlying message, followed by the hint after a
// blank line when one is set.
func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

// Unwrap returns the underlying error.
func (e *ToolError) Unwrap() error { return e.Err }

// WithHint sets the hint and returns the receiver for chaining.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error: a failure that may succeed on retry.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure, bug, or I/O error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
