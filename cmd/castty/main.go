// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/castty/castty/cmd/castty/commands"
	"github.com/castty/castty/lib/process"
)

func main() {
	// Commands that report their own failure (record passing through
	// the recorder's status, inspect on a digest mismatch) return an
	// error with an ExitCode method; process.Exit prints everything else.
	if err := run(); err != nil {
		process.Exit(err)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
