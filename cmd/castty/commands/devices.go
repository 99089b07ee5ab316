// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/pflag"

	"github.com/castty/castty/cmd/castty/cli"
	"github.com/castty/castty/lib/audio"
)

type devicesParams struct {
	configPath string
	ffmpeg     string
	backend    string
}

func devicesCommand() *cli.Command {
	var params devicesParams

	return &cli.Command{
		Name:    "devices",
		Summary: "List audio capture devices",
		Description: `List the capture devices ffmpeg reports for the audio backend.

The backend defaults to the configured audio.backend, then to the host
default (pulse on Linux, avfoundation on macOS). The device marked with
"*" is the backend's default. Pass a name to 'castty record --device'.`,
		Usage: "castty devices [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("devices", pflag.ContinueOnError)
			flagSet.StringVar(&params.configPath, "config", "", "configuration file (default $CASTTY_CONFIG)")
			flagSet.StringVar(&params.ffmpeg, "ffmpeg", "", "ffmpeg binary (default: audio.ffmpeg, then ffmpeg on PATH)")
			flagSet.StringVar(&params.backend, "backend", "", "ffmpeg input format, e.g. pulse, alsa, avfoundation")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runDevices(os.Stdout, params)
		},
	}
}

func runDevices(w io.Writer, params devicesParams) error {
	cfg, err := loadConfig(params.configPath)
	if err != nil {
		return err
	}
	binary := params.ffmpeg
	if binary == "" {
		binary = cfg.Audio.FFmpeg
	}
	backend := params.backend
	if backend == "" {
		backend = cfg.Audio.Backend
	}
	if backend == "" {
		backend = audio.DefaultBackend()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	devices, err := audio.ListDevices(ctx, binary, backend)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return cli.NotFound("%v", err).WithHint("Install ffmpeg, or set --ffmpeg or audio.ffmpeg to its path.")
		}
		return cli.Transient("%v", err)
	}
	printDevices(w, newStyles(w), backend, devices)
	return nil
}

func printDevices(w io.Writer, style styles, backend string, devices []audio.Device) {
	fmt.Fprintln(w, style.heading.Render("Capture devices ("+backend+")"))
	if len(devices) == 0 {
		fmt.Fprintln(w, style.faint.Render("  none found"))
		return
	}
	for _, device := range devices {
		marker := " "
		if device.Default {
			marker = style.marker.Render("*")
		}
		line := fmt.Sprintf("%s %s", marker, device.Name)
		if device.Description != "" {
			line += "  " + style.faint.Render(device.Description)
		}
		fmt.Fprintln(w, line)
	}
}
