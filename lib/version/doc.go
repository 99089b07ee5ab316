// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the castty build.
//
// The commit, dirty flag, and build time come from -ldflags -X when a
// release build injects them, and otherwise from the VCS stamp the go
// command embeds (vcs.revision, vcs.modified, vcs.time). Test binaries
// carry neither, so they report "unknown".
//
//   - [Info] -- "0.1.0-dev (abc1234, 2026-02-10T...)" for castty version
//   - [Full] -- Info plus Go version and GOOS/GOARCH
//   - [Short] -- just the version number
//   - [Commit] -- just the git SHA
package version
