// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package asciicast

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Version is an asciicast format version.
type Version int

const (
	// V1 stores all events in one "stdout" array of [delta, text] pairs.
	V1 Version = 1

	// V2 stores one [time, "o", text] array per line after the header.
	V2 Version = 2
)

// Valid reports whether version is a supported format version.
func (version Version) Valid() bool {
	return version == V1 || version == V2
}

// ParseVersion converts a configured integer to a Version.
func ParseVersion(value int) (Version, error) {
	version := Version(value)
	if !version.Valid() {
		return 0, fmt.Errorf("unsupported asciicast version %d (want 1 or 2)", value)
	}
	return version, nil
}

// DurationPadWidth is the number of spaces reserved after the opening
// brace of the header for the patched duration field.
const DurationPadWidth = 32

// durationPadOffset is the byte offset of the pad: right after "{".
const durationPadOffset = 1

// Header describes the session. It is written once when the Writer is
// created.
type Header struct {
	Version Version
	Width   int
	Height  int

	// Command and Title are raw strings; the writer escapes them.
	Command string
	Title   string

	// Env is a pre-serialized JSON value, written verbatim. Nil or empty
	// writes {}.
	Env json.RawMessage
}

// DefaultEnvKeys are the environment variables recorded in the header
// when the configuration does not name others.
var DefaultEnvKeys = []string{"TERM", "SHELL", "PS1", "PS2"}

// CaptureEnv serializes the variables named in keys from environ (in
// os.Environ form) into a JSON object. Variables that are not set are
// omitted. A nil environ reads the process environment.
func CaptureEnv(environ []string, keys []string) (json.RawMessage, error) {
	if environ == nil {
		environ = os.Environ()
	}

	wanted := make(map[string]bool, len(keys))
	for _, key := range keys {
		wanted[key] = true
	}

	captured := make(map[string]string)
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("malformed environment entry %q", entry)
		}
		if wanted[key] {
			captured[key] = value
		}
	}

	encoded, err := json.Marshal(captured)
	if err != nil {
		return nil, fmt.Errorf("serializing environment: %w", err)
	}
	return encoded, nil
}

// appendHeader renders the header, including the pad and the opening of
// the event section for the header's version.
func appendHeader(destination []byte, header Header) []byte {
	env := header.Env
	if len(env) == 0 {
		env = json.RawMessage("{}")
	}

	destination = append(destination, '{')
	destination = append(destination, strings.Repeat(" ", DurationPadWidth)...)
	destination = fmt.Appendf(destination,
		`"version": %d, "width": %d, "height": %d, "command": "%s", "title": "%s", "env": %s`,
		header.Version, header.Width, header.Height,
		EscapeString(header.Command), EscapeString(header.Title), env)

	switch header.Version {
	case V2:
		destination = append(destination, "}\n"...)
	case V1:
		// The dummy first record lets every real record start with a
		// comma, so the array never carries a trailing comma.
		destination = append(destination, `,"stdout":[[0,""]`+"\n"...)
	}
	return destination
}
