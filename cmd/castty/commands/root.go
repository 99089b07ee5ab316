// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/castty/castty/cmd/castty/cli"
	"github.com/castty/castty/lib/config"
	"github.com/castty/castty/lib/version"
)

// Root builds and returns the castty command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "castty",
		Description: `castty: record terminal sessions in asciicast format.

Runs a shell on a new pseudo-terminal and records everything it prints,
with timing, to an asciicast v1 or v2 file. An optional microphone
track is captured alongside and drives the recording clock.

While recording, Ctrl-A is the command prefix:
  Ctrl-A p    pause or resume recording
  Ctrl-A m    mute or unmute the microphone
  Ctrl-A a    send a literal Ctrl-A to the shell`,
		Subcommands: []*cli.Command{
			recordCommand(),
			recordOutputCommand(),
			devicesCommand(),
			inspectCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					if len(args) > 0 {
						return cli.Validation("unexpected argument: %s", args[0])
					}
					fmt.Printf("castty %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Record a shell session",
				Command:     "castty record demo.cast",
			},
			{
				Description: "Record one command in asciicast v2 at 80x24",
				Command:     "castty record -2 -c 80 -r 24 -e 'make test' build.cast",
			},
			{
				Description: "Record with a microphone track",
				Command:     "castty record -d default -a voice.wav talk.cast",
			},
			{
				Description: "List microphones",
				Command:     "castty devices",
			},
			{
				Description: "Summarize a recording and verify its digest",
				Command:     "castty inspect demo.cast",
			},
		},
	}
}

// loadConfig loads path, or the file named by CASTTY_CONFIG when path
// is empty, or the defaults when neither is set.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cli.NotFound("%v", err).WithHint("Pass --config with an existing file, or unset CASTTY_CONFIG.")
		}
		return nil, cli.Validation("%v", err)
	}
	return cfg, nil
}
