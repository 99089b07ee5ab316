// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestToolError_ErrorWithoutHint(t *testing.T) {
	err := Validation("rows %d exceeds maximum", 2000)
	if err.Error() != "rows 2000 exceeds maximum" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestToolError_ErrorWithHint(t *testing.T) {
	err := NotFound("ffmpeg not found").WithHint("Install ffmpeg or set audio.ffmpeg in the config file.")
	want := "ffmpeg not found\n\nInstall ffmpeg or set audio.ffmpeg in the config file."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Category != CategoryNotFound {
		t.Errorf("Category = %q, want %q", err.Category, CategoryNotFound)
	}
}

func TestToolError_Unwrap(t *testing.T) {
	err := Internal("reading cast: %w", fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is did not see the wrapped error")
	}

	wrapped := fmt.Errorf("inspect: %w", Transient("device busy"))
	var toolError *ToolError
	if !errors.As(wrapped, &toolError) {
		t.Fatal("errors.As did not find the ToolError")
	}
	if toolError.Category != CategoryTransient {
		t.Errorf("Category = %q, want %q", toolError.Category, CategoryTransient)
	}
}

func TestExitError(t *testing.T) {
	var err error = &ExitError{Code: 3}
	coder, ok := err.(interface{ ExitCode() int })
	if !ok {
		t.Fatal("ExitError does not implement ExitCode")
	}
	if coder.ExitCode() != 3 {
		t.Errorf("ExitCode() = %d, want 3", coder.ExitCode())
	}
	if err.Error() != "exit code 3" {
		t.Errorf("Error() = %q", err.Error())
	}
}
