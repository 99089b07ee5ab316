// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the castty command tree.
//
// "castty record" runs in the operator's terminal: it allocates the
// pseudo-terminal, starts the shell, switches the terminal to raw mode,
// and forwards keystrokes through the key-binding listener. The session
// file itself is written by a second process, the hidden
// "castty record-output" command, which inherits the pseudo-terminal
// master as fd 3 and the control pipe as fd 4 and runs the recorder's
// event loop.
package commands
