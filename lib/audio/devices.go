// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Device is a capture source reported by ffmpeg.
type Device struct {
	Name        string
	Description string
	Default     bool
}

// ListDevices asks ffmpeg for the sources of backend. An empty binary
// means "ffmpeg" on PATH; an empty backend means [DefaultBackend].
func ListDevices(ctx context.Context, binary, backend string) ([]Device, error) {
	if binary == "" {
		binary = "ffmpeg"
	}
	if backend == "" {
		backend = DefaultBackend()
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	// Some builds exit non-zero after printing a valid list, so the
	// output is parsed before the exit status is considered.
	output, runErr := exec.CommandContext(ctx, path, "-hide_banner", "-sources", backend).CombinedOutput()
	devices := ParseSources(string(output))
	if len(devices) == 0 && runErr != nil {
		return nil, fmt.Errorf("listing %s sources: %w: %s", backend, runErr, strings.TrimSpace(string(output)))
	}
	return devices, nil
}

// ParseSources parses the output of "ffmpeg -sources". Each device
// line is indented, optionally marked "*" as the default, and carries
// a bracketed description:
//
//	Auto-detected sources for pulse:
//	* alsa_input.pci-0000_00_1f.3.analog-stereo [Built-in Audio] (none)
func ParseSources(output string) []Device {
	var devices []Device
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || (line[0] != ' ' && line[0] != '*') {
			continue
		}
		line = strings.TrimSpace(line)

		var device Device
		if rest, found := strings.CutPrefix(line, "*"); found {
			device.Default = true
			line = strings.TrimSpace(rest)
		}
		if line == "" {
			continue
		}

		name, rest, _ := strings.Cut(line, " ")
		device.Name = name
		if open := strings.IndexByte(rest, '['); open >= 0 {
			if end := strings.LastIndexByte(rest, ']'); end > open {
				device.Description = rest[open+1 : end]
			}
		}
		devices = append(devices, device)
	}
	return devices
}
