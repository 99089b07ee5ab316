// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package pty allocates Linux pseudo-terminals through the devpts
// interface and starts the recorded shell on the slave side.
//
// The master descriptor is what the recorder reads terminal output
// from and what the key-binding listener writes operator input to. The
// shell gets the slave as its controlling terminal in a new session, so
// job control and signals behave as in an ordinary terminal.
package pty
