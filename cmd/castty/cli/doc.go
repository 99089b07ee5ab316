// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the castty CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in cmd/castty/commands
// and dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples. Hidden
// commands dispatch normally but are left out of help listings; the
// recorder's internal re-exec entry point is one.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// Errors returned by commands are either categorized [ToolError] values
// or an [ExitError] carrying an exit status the command has already
// reported. [NewCommandLogger] and [NewFileLogger] build the slog
// loggers commands use.
package cli
