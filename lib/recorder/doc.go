// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package recorder runs the event loop of a recording session.
//
// A [Session] owns everything a recording mutates: the pause state,
// the timing synchronizer, the asciicast writer, and the optional
// audio capture. [Session.Run] waits on two descriptors with poll(2):
// the control channel, which carries fixed-size [control.Command]
// records from the key-binding listener, and the terminal channel, the
// master side of the pseudo-terminal the recorded shell writes to.
// The control channel is serviced first when both are ready.
//
// Terminal output is always copied to the recorder's stdout so the
// operator's screen is unaffected by pausing. While recording, each
// batch is also appended to the session file as one event whose time
// comes from the session's single time source: the audio capture
// clock when audio is enabled, the wall clock otherwise.
//
// Run always finalizes the session exactly once before returning: the
// writer is closed with the patched duration and the audio capture is
// stopped and closed. The loop ends with [ErrSessionEnded] when the
// shell goes away, which is how a normal recording finishes.
//
// The loop is single-threaded. A Session is not safe for concurrent
// use.
package recorder
