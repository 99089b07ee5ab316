// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package asciicast

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createWriter(t *testing.T, header Header) (*Writer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.cast")
	writer, err := Create(path, header)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return writer, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}

func TestWriterV2EventLine(t *testing.T) {
	t.Parallel()

	writer, path := createWriter(t, Header{Version: V2, Width: 80, Height: 24})
	if err := writer.WriteOutput(1250, 1250, []byte("Hello\n")); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}
	if err := writer.Close(1250); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(readFile(t, path), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	if want := `[1.2500,"o","Hello\u000a"]`; lines[1] != want {
		t.Errorf("event line: got %s, want %s", lines[1], want)
	}

	var header map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &header); err != nil {
		t.Fatalf("header is not valid JSON: %v\n%s", err, lines[0])
	}
	if header["duration"] != 1.25 {
		t.Errorf("duration: got %v, want 1.25", header["duration"])
	}
	if header["version"] != float64(2) {
		t.Errorf("version: got %v, want 2", header["version"])
	}
}

func TestWriterV1IsValidJSON(t *testing.T) {
	t.Parallel()

	writer, path := createWriter(t, Header{
		Version: V1,
		Width:   100,
		Height:  30,
		Command: "vim",
		Title:   "demo",
		Env:     json.RawMessage(`{"TERM":"xterm-256color"}`),
	})
	events := []struct {
		delta float64
		text  string
	}{
		{0, "$ "},
		{500, "ls\r\n"},
		{125.5, "file.txt\r\n"},
	}
	var total float64
	for _, event := range events {
		total += event.delta
		if err := writer.WriteOutput(event.delta, total, []byte(event.text)); err != nil {
			t.Fatalf("WriteOutput: %v", err)
		}
	}
	if err := writer.Close(total); err != nil {
		t.Fatalf("Close: %v", err)
	}

	content := readFile(t, path)
	if !json.Valid([]byte(content)) {
		t.Fatalf("v1 file is not valid JSON:\n%s", content)
	}
	if !strings.Contains(content, `,"stdout":[[0,""]`+"\n"+`,[0.0000,"$ "]`) {
		t.Errorf("v1 body layout unexpected:\n%s", content)
	}

	recording, err := Read(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if recording.Header.Duration != 0.6255 {
		t.Errorf("duration: got %v, want 0.6255", recording.Header.Duration)
	}
	if got := string(recording.Header.Env); got != `{"TERM":"xterm-256color"}` {
		t.Errorf("env: got %s, want the value as written", got)
	}
	if len(recording.Events) != 3 {
		t.Fatalf("events: got %d, want 3", len(recording.Events))
	}
	if got := recording.Output(); got != "$ ls\r\nfile.txt\r\n" {
		t.Errorf("output: got %q", got)
	}
}

func TestWriterHeaderEscapesStrings(t *testing.T) {
	t.Parallel()

	writer, path := createWriter(t, Header{
		Version: V2,
		Command: `sh -c "echo \o/"`,
		Title:   "line\nbreak",
	})
	if err := writer.Close(0); err != nil {
		t.Fatalf("Close: %v", err)
	}

	recording, err := Read(strings.NewReader(readFile(t, path)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if recording.Header.Command != `sh -c "echo \o/"` {
		t.Errorf("command: got %q", recording.Header.Command)
	}
	if recording.Header.Title != "line\nbreak" {
		t.Errorf("title: got %q", recording.Header.Title)
	}
	if recording.Header.Duration != 0 {
		t.Errorf("duration: got %v, want 0", recording.Header.Duration)
	}
}

func TestWriterCloseOnce(t *testing.T) {
	t.Parallel()

	writer, _ := createWriter(t, Header{Version: V2})
	if err := writer.Close(10); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := writer.Close(10); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close: got %v, want ErrClosed", err)
	}
	if err := writer.WriteOutput(0, 0, []byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteOutput after Close: got %v, want ErrClosed", err)
	}
}

func TestDurationFieldFitsPad(t *testing.T) {
	t.Parallel()

	for _, totalMS := range []float64{0, 1, 1250, 999.9999, 59_999.123, 1e9, 999_999_999.999, 1e12, 123456789012.345} {
		field, err := DurationField(totalMS)
		if err != nil {
			t.Errorf("DurationField(%v): %v", totalMS, err)
			continue
		}
		if len(field) > DurationPadWidth {
			t.Errorf("DurationField(%v) = %q is %d bytes, pad is %d", totalMS, field, len(field), DurationPadWidth)
		}
		var parsed map[string]float64
		if err := json.Unmarshal(append(append([]byte("{"), bytes.TrimSuffix(field, []byte(", "))...), '}'), &parsed); err != nil {
			t.Errorf("DurationField(%v) = %q is not valid JSON: %v", totalMS, field, err)
		}
	}
}

func TestDurationFieldRejectsInvalid(t *testing.T) {
	t.Parallel()

	if _, err := DurationField(-1); err == nil {
		t.Error("negative duration should be rejected")
	}
}

func TestNewWriterRejectsUnknownVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.cast")
	if _, err := Create(path, Header{Version: 3}); err == nil {
		t.Error("Create with version 3 should fail")
	}
}

func TestCaptureEnv(t *testing.T) {
	t.Parallel()

	environ := []string{"TERM=xterm", "HOME=/home/op", "SHELL=/bin/zsh", `PS1=\u@\h "$ `}
	encoded, err := CaptureEnv(environ, DefaultEnvKeys)
	if err != nil {
		t.Fatalf("CaptureEnv: %v", err)
	}
	var captured map[string]string
	if err := json.Unmarshal(encoded, &captured); err != nil {
		t.Fatalf("CaptureEnv produced invalid JSON %s: %v", encoded, err)
	}
	if len(captured) != 3 {
		t.Errorf("captured %d keys, want 3: %v", len(captured), captured)
	}
	if captured["PS1"] != `\u@\h "$ ` {
		t.Errorf("PS1: got %q", captured["PS1"])
	}
	if _, ok := captured["HOME"]; ok {
		t.Error("HOME should not be captured")
	}

	if _, err := CaptureEnv([]string{"BROKEN"}, DefaultEnvKeys); err == nil {
		t.Error("malformed entry should fail")
	}
}
