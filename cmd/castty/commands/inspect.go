// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/castty/castty/cmd/castty/cli"
	"github.com/castty/castty/lib/asciicast"
	"github.com/castty/castty/lib/digest"
	"github.com/castty/castty/lib/seal"
)

type inspectParams struct {
	tail     int
	identity string
}

func inspectCommand() *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Summarize a recording and verify its digest",
		Description: `Parse an asciicast v1 or v2 file and print its header, event count,
and the last lines of recorded output with escape sequences removed.

When a digest sidecar (<file>.b3) exists, the file is verified against
it and a mismatch exits non-zero. A sealed file (<file>.age) is
decrypted with --identity first; its digest is checked against the
sidecar of the plaintext file.`,
		Usage: "castty inspect [flags] <file>",
		Examples: []cli.Example{
			{
				Description: "Summarize a recording",
				Command:     "castty inspect demo.cast",
			},
			{
				Description: "Decrypt and summarize a sealed recording",
				Command:     "castty inspect --identity ~/.config/castty/key.txt demo.cast.age",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.IntVarP(&params.tail, "tail", "n", 10, "lines of output to show (0 for none)")
			flagSet.StringVarP(&params.identity, "identity", "i", "", "age identity file for sealed recordings")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one file argument")
			}
			return runInspect(os.Stdout, newStyles(os.Stdout), params, args[0])
		},
	}
}

// digestStatus is the outcome of checking a recording against its sidecar.
type digestStatus int

const (
	digestAbsent digestStatus = iota
	digestVerified
	digestMismatch
)

func runInspect(w io.Writer, style styles, params inspectParams, path string) error {
	data, plainPath, err := readRecording(path, params.identity)
	if err != nil {
		return err
	}

	recording, err := asciicast.Read(bytes.NewReader(data))
	if err != nil {
		return cli.Validation("%s: %v", path, err)
	}

	status, actual, err := checkDigest(plainPath, data)
	if err != nil {
		return cli.Internal("%w", err)
	}

	printSummary(w, style, path, len(data), recording, status, actual)
	if params.tail > 0 {
		printTail(w, style, recording.Output(), params.tail)
	}

	if status == digestMismatch {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

// readRecording returns the plaintext of path and the path its digest
// sidecar belongs to.
func readRecording(path, identityPath string) ([]byte, string, error) {
	if !strings.HasSuffix(path, seal.Suffix) {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, "", cli.NotFound("%v", err)
			}
			return nil, "", cli.Internal("%w", err)
		}
		return data, path, nil
	}

	if identityPath == "" {
		return nil, "", cli.Validation("%s is sealed", path).
			WithHint("Pass --identity with an age identity file for one of its recipients.")
	}
	identities, err := seal.LoadIdentities(identityPath)
	if err != nil {
		return nil, "", cli.Validation("%v", err)
	}
	data, err := seal.OpenFile(path, identities)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", cli.NotFound("%v", err)
		}
		return nil, "", cli.Validation("%v", err)
	}
	return data, strings.TrimSuffix(path, seal.Suffix), nil
}

func checkDigest(path string, data []byte) (digestStatus, digest.Hash, error) {
	actual := digest.Sum(data)
	recorded, err := digest.ReadSidecar(path)
	if errors.Is(err, fs.ErrNotExist) {
		return digestAbsent, actual, nil
	}
	if err != nil {
		return digestAbsent, actual, err
	}
	if recorded != actual {
		return digestMismatch, actual, nil
	}
	return digestVerified, actual, nil
}

func printSummary(w io.Writer, style styles, path string, size int, recording *asciicast.Recording, status digestStatus, actual digest.Hash) {
	header := recording.Header
	duration := time.Duration(header.Duration * float64(time.Second)).Round(time.Millisecond)

	field := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", style.label.Render(label), value)
	}

	fmt.Fprintln(w, style.heading.Render(path))
	field("version", fmt.Sprintf("%d", header.Version))
	field("size", fmt.Sprintf("%dx%d", header.Width, header.Height))
	field("duration", duration.String())
	field("events", fmt.Sprintf("%d", len(recording.Events)))
	field("bytes", fmt.Sprintf("%d (%s)", size, humanize.IBytes(uint64(size))))
	if header.Command != "" {
		field("command", header.Command)
	}
	if header.Title != "" {
		field("title", header.Title)
	}
	if env := formatEnv(header.Env); env != "" {
		field("env", env)
	}

	switch status {
	case digestVerified:
		field("blake3", style.good.Render("verified")+" "+actual.String())
	case digestMismatch:
		field("blake3", style.bad.Render("MISMATCH")+" file hashes to "+actual.String())
	default:
		field("blake3", style.faint.Render("no sidecar")+" "+actual.String())
	}
}

// formatEnv renders the recorded environment. An object of strings
// prints as sorted KEY=value pairs; any other JSON value prints
// compacted. An empty object or null prints nothing.
func formatEnv(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var variables map[string]string
	if err := json.Unmarshal(raw, &variables); err == nil {
		keys := make([]string, 0, len(variables))
		for key := range variables {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, key := range keys {
			pairs = append(pairs, key+"="+variables[key])
		}
		return strings.Join(pairs, " ")
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

// printTail prints the last lines of output as plain text.
func printTail(w io.Writer, style styles, output string, lines int) {
	text := ansi.Strip(output)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	all := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(all) > lines {
		all = all[len(all)-lines:]
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, style.heading.Render("output"))
	for _, line := range all {
		fmt.Fprintln(w, style.faint.Render("│")+" "+line)
	}
}
