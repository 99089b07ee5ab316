// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package asciicast writes terminal session recordings in the asciicast
// v1 and v2 formats.
//
// A [Writer] emits the header once, appends one event record per batch
// of terminal output, and on [Writer.Close] patches the session duration
// into a whitespace pad reserved at the start of the header. The file is
// valid JSON (v1) or newline-delimited JSON (v2) after every completed
// Close, whatever the reason the recording stopped.
//
// Event text is escaped by an [Encoder], which never lets a raw control
// character, quote, backslash, or non-ASCII byte reach the file: all of
// them become backslash or \uXXXX escapes. Invalid UTF-8 becomes the
// escaped placeholder U+1F4A9 so corruption is visible without
// aborting the record.
//
// v1 layout:
//
//	{"duration": 1.5, "version": 1, ..., "env": {...},"stdout":[[0,""]
//	,[0.2500,"text"]
//	]}
//
// v2 layout:
//
//	{"duration": 1.5, "version": 2, ..., "env": {...}}
//	[0.2500,"o","text"]
//
// [Read] parses either layout back for inspection and tests.
package asciicast
