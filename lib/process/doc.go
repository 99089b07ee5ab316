// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. These centralize
// the raw I/O that happens before a structured logger exists or after
// an unrecoverable error in main():
//
//   - [Fatal] reports an error to stderr and exits 1.
//   - [Exit] maps an error to the process exit status, honoring
//     errors that carry their own exit code.
package process
