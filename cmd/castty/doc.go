// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Castty records terminal sessions to asciicast v1 and v2 files, with
// an optional microphone track.
//
// Usage:
//
//	castty record [flags] [file]   Record a shell on a new pseudo-terminal
//	castty devices                 List audio capture devices
//	castty inspect <file>          Summarize a recording and verify its digest
//	castty version                 Print version information
//
// While recording, Ctrl-A p pauses and resumes, Ctrl-A m mutes the
// microphone, and Ctrl-A a sends a literal Ctrl-A.
package main
