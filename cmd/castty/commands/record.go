// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"filippo.io/age"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/castty/castty/cmd/castty/cli"
	"github.com/castty/castty/lib/asciicast"
	"github.com/castty/castty/lib/audio"
	"github.com/castty/castty/lib/config"
	"github.com/castty/castty/lib/digest"
	"github.com/castty/castty/lib/keybind"
	"github.com/castty/castty/lib/pty"
	"github.com/castty/castty/lib/seal"
)

// recordParams holds the flags of "castty record". Zero values leave
// the configuration unchanged.
type recordParams struct {
	configPath  string
	v2          bool
	columns     uint16
	rows        uint16
	command     string
	title       string
	paused      bool
	device      string
	audioOutput string
	audioCodec  string
	rawAudio    bool
	debugLog    string
	digest      bool
	recipients  []string
}

func (params *recordParams) bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&params.configPath, "config", "", "configuration file (default $CASTTY_CONFIG)")
	flagSet.BoolVarP(&params.v2, "v2", "2", false, "write asciicast v2 instead of v1")
	flagSet.Uint16VarP(&params.columns, "cols", "c", 0, "recorded columns (default: terminal width)")
	flagSet.Uint16VarP(&params.rows, "rows", "r", 0, "recorded rows (default: terminal height)")
	flagSet.StringVarP(&params.command, "command", "e", "", "run this command instead of an interactive shell")
	flagSet.StringVarP(&params.title, "title", "t", "", "session title")
	flagSet.BoolVarP(&params.paused, "paused", "p", false, "start with recording paused")
	flagSet.StringVarP(&params.device, "device", "d", "", "audio capture device (requires --audio-out)")
	flagSet.StringVarP(&params.audioOutput, "audio-out", "a", "", "audio track path (requires --device)")
	flagSet.StringVar(&params.audioCodec, "audio-codec", "", "audio track encoding: raw, wav, zstd, lz4")
	flagSet.BoolVar(&params.rawAudio, "raw-audio", false, "write headerless PCM regardless of --audio-codec")
	flagSet.StringVarP(&params.debugLog, "debug-log", "D", "", "append debug logs to this file")
	flagSet.BoolVar(&params.digest, "digest", false, "write a BLAKE3 digest next to the session file")
	flagSet.StringArrayVar(&params.recipients, "recipient", nil, "age recipient or recipient file to seal the session file to (repeatable)")
}

// apply overrides cfg with the flags that were given and the optional
// output path argument.
func (params *recordParams) apply(cfg *config.Config, args []string) {
	if len(args) > 0 {
		cfg.Output = args[0]
	}
	if params.v2 {
		cfg.FormatVersion = int(asciicast.V2)
	}
	if params.title != "" {
		cfg.Title = params.title
	}
	if params.paused {
		cfg.StartPaused = true
	}
	if params.device != "" {
		cfg.Audio.Device = params.device
	}
	if params.audioOutput != "" {
		cfg.Audio.Output = params.audioOutput
	}
	if params.audioCodec != "" {
		cfg.Audio.Codec = params.audioCodec
	}
	if params.rawAudio {
		cfg.Audio.Raw = true
	}
	if params.digest {
		cfg.Digest = true
	}
	cfg.Recipients = append(cfg.Recipients, params.recipients...)
}

func recordCommand() *cli.Command {
	var params recordParams

	return &cli.Command{
		Name:    "record",
		Summary: "Record a terminal session",
		Description: `Start a shell on a new pseudo-terminal and record its output.

The recording ends when the shell exits. Defaults come from the
configuration file (--config or $CASTTY_CONFIG); flags override it.
The output path argument overrides the configured output.

Recording size is clamped to the current terminal: a dimension of zero,
or larger than the terminal, takes the terminal's value. Dimensions
above 1000 are rejected.

Audio capture needs both --device and --audio-out. When it is enabled,
event times follow the audio sample clock so the two tracks stay in
step.`,
		Usage: "castty record [flags] [file]",
		Examples: []cli.Example{
			{
				Description: "Record to the configured output (events.cast by default)",
				Command:     "castty record",
			},
			{
				Description: "Start paused; press Ctrl-A p to begin",
				Command:     "castty record -p -t 'release walkthrough' release.cast",
			},
			{
				Description: "Record, then digest and seal the file",
				Command:     "castty record --digest --recipient age1... secret.cast",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("record", pflag.ContinueOnError)
			params.bind(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			return runRecord(&params, args)
		},
	}
}

func runRecord(params *recordParams, args []string) error {
	if len(args) > 1 {
		return cli.Validation("unexpected argument: %s", args[1])
	}

	cfg, err := loadConfig(params.configPath)
	if err != nil {
		return err
	}
	params.apply(cfg, args)
	if err := cfg.Validate(); err != nil {
		return cli.Validation("invalid configuration:\n%v", err)
	}

	var recipients []age.Recipient
	if len(cfg.Recipients) > 0 {
		recipients, err = seal.ParseRecipients(cfg.Recipients)
		if err != nil {
			return cli.Validation("%v", err)
		}
	}
	env, err := asciicast.CaptureEnv(nil, cfg.EnvKeys)
	if err != nil {
		return cli.Internal("capturing environment: %w", err)
	}

	stdinFD := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFD) {
		return cli.Validation("standard input is not a terminal").
			WithHint("castty record must be run from an interactive terminal.")
	}
	terminalSize, err := pty.GetSize(stdinFD)
	if err != nil {
		return cli.Internal("%w", err)
	}
	size, err := pty.ClampSize(pty.Size{Columns: params.columns, Rows: params.rows}, terminalSize)
	if err != nil {
		return cli.Validation("%v", err)
	}

	logger, logCloser, err := cli.NewFileLogger(params.debugLog)
	if err != nil {
		return cli.Internal("%w", err)
	}
	defer logCloser.Close()
	logger = logger.With("process", "input")

	settings := outputSettings{
		Output:      cfg.Output,
		Version:     cfg.FormatVersion,
		Columns:     size.Columns,
		Rows:        size.Rows,
		Command:     params.command,
		Title:       cfg.Title,
		Env:         string(env),
		StartPaused: cfg.StartPaused,
		DebugLog:    params.debugLog,
	}
	if cfg.Audio.Enabled() {
		settings.Audio = cfg.Audio
	}

	status, err := record(settings, cfg.Shell, logger)
	if err != nil {
		return err
	}
	if status != 0 {
		// The recorder has already reported why.
		return &cli.ExitError{Code: status}
	}
	return finish(os.Stderr, cfg, recipients)
}

// record runs one session and returns the recorder's exit status. The
// operator's terminal is in raw mode only while the recorder runs.
func record(settings outputSettings, shell string, logger *slog.Logger) (int, error) {
	controlRead, controlWrite, err := os.Pipe()
	if err != nil {
		return 0, cli.Internal("creating control pipe: %w", err)
	}
	defer controlWrite.Close()
	defer controlRead.Close()

	pair, err := pty.Open()
	if err != nil {
		return 0, cli.Internal("%w", err)
	}
	defer pair.Close()
	if err := pty.SetSize(int(pair.Master.Fd()), pty.Size{Columns: settings.Columns, Rows: settings.Rows}); err != nil {
		return 0, cli.Internal("%w", err)
	}

	shellCommand := pty.ShellCommand(shell, settings.Command)
	if err := pty.Start(shellCommand, pair); err != nil {
		return 0, cli.Transient("starting shell: %w", err)
	}
	pair.Slave.Close()
	logger.Info("shell started", "shell", shell, "pid", shellCommand.Process.Pid, "pty", pair.SlavePath)
	defer func() {
		// Already gone after a normal end; the signal matters when the
		// recorder failed first.
		shellCommand.Process.Signal(syscall.SIGHUP)
		shellCommand.Wait()
	}()

	executable, err := os.Executable()
	if err != nil {
		return 0, cli.Internal("locating castty executable: %w", err)
	}
	recorderProcess := exec.Command(executable, append([]string{"record-output"}, settings.arguments()...)...)
	recorderProcess.Stdout = os.Stdout
	recorderProcess.Stderr = os.Stderr
	recorderProcess.ExtraFiles = []*os.File{pair.Master, controlRead}

	stdinFD := int(os.Stdin.Fd())
	state, err := term.MakeRaw(stdinFD)
	if err != nil {
		return 0, cli.Internal("setting raw mode: %w", err)
	}
	defer term.Restore(stdinFD, state)

	if err := recorderProcess.Start(); err != nil {
		return 0, cli.Internal("starting recorder: %w", err)
	}
	controlRead.Close()
	logger.Info("recorder started", "pid", recorderProcess.Process.Pid, "output", settings.Output)

	// The listener is left blocked on stdin once the recorder exits;
	// the process ends shortly after.
	listener := keybind.New(pty.NewInputWriter(pair.Master), controlWrite, logger)
	go func() {
		if err := listener.Run(os.Stdin); err != nil {
			logger.Debug("key-binding listener stopped", "error", err)
		}
	}()

	err = recorderProcess.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		status := exitErr.ExitCode()
		if status < 0 {
			status = 1
		}
		logger.Info("recorder failed", "status", status, "state", exitErr.String())
		return status, nil
	}
	if err != nil {
		return 0, cli.Internal("waiting for recorder: %w", err)
	}
	return 0, nil
}

// finish reports the saved files and writes the digest sidecar and the
// sealed copy the configuration asks for. The digest covers the
// plaintext session file.
func finish(w io.Writer, cfg *config.Config, recipients []age.Recipient) error {
	fmt.Fprintf(w, "castty: session saved to %s\n", cfg.Output)
	if cfg.Audio.Enabled() {
		fmt.Fprintf(w, "castty: audio track saved to %s\n", cfg.Audio.Output)
		metadata, err := audio.ReadMetadata(cfg.Audio.Output + audio.MetadataSuffix)
		if err != nil {
			fmt.Fprintf(w, "castty: audio metadata unavailable: %v\n", err)
		} else {
			duration := time.Duration(metadata.DurationMS * float64(time.Millisecond)).Round(time.Millisecond)
			fmt.Fprintf(w, "castty: audio %s, %d Hz, %d channels, %s\n",
				metadata.Codec, metadata.SampleRate, metadata.Channels, duration)
		}
	}

	if cfg.Digest {
		hash, sidecar, err := digest.WriteSidecar(cfg.Output)
		if err != nil {
			return cli.Internal("%w", err)
		}
		fmt.Fprintf(w, "castty: blake3 %s written to %s\n", hash, sidecar)
	}

	if len(recipients) > 0 {
		sealed, err := seal.SealFile(cfg.Output, recipients)
		if err != nil {
			return cli.Internal("%w", err)
		}
		fmt.Fprintf(w, "castty: sealed copy written to %s\n", sealed)
	}
	return nil
}
