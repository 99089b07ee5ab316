// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/castty/castty/cmd/castty/cli"
	"github.com/castty/castty/lib/asciicast"
	"github.com/castty/castty/lib/audio"
	"github.com/castty/castty/lib/config"
	"github.com/castty/castty/lib/recorder"
)

// Descriptors inherited by "castty record-output".
const (
	terminalFD = 3
	controlFD  = 4
)

// outputSettings is everything the recorder process needs. The
// recording process resolves configuration and flags and passes the
// result on the command line, so the recorder never reads the
// configuration file itself.
type outputSettings struct {
	Output      string
	Version     int
	Columns     uint16
	Rows        uint16
	Command     string
	Title       string
	Env         string
	StartPaused bool
	DebugLog    string

	// Audio is the zero value when audio is not captured.
	Audio config.AudioConfig
}

func (settings *outputSettings) bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&settings.Output, "output", "", "session file")
	flagSet.IntVar(&settings.Version, "format-version", int(asciicast.V1), "asciicast version")
	flagSet.Uint16Var(&settings.Columns, "cols", 80, "columns")
	flagSet.Uint16Var(&settings.Rows, "rows", 24, "rows")
	flagSet.StringVar(&settings.Command, "command", "", "recorded command")
	flagSet.StringVar(&settings.Title, "title", "", "recorded title")
	flagSet.StringVar(&settings.Env, "env", "{}", "recorded environment, a JSON object")
	flagSet.BoolVar(&settings.StartPaused, "paused", false, "start paused")
	flagSet.StringVar(&settings.DebugLog, "debug-log", "", "debug log file")
	flagSet.StringVar(&settings.Audio.Device, "audio-device", "", "audio capture device")
	flagSet.StringVar(&settings.Audio.Output, "audio-out", "", "audio track path")
	flagSet.StringVar(&settings.Audio.Codec, "audio-codec", "", "audio track encoding")
	flagSet.BoolVar(&settings.Audio.Raw, "raw-audio", false, "headerless PCM")
	flagSet.IntVar(&settings.Audio.SampleRate, "sample-rate", audio.DefaultFormat.SampleRate, "audio sample rate")
	flagSet.IntVar(&settings.Audio.Channels, "channels", audio.DefaultFormat.Channels, "audio channels")
	flagSet.StringVar(&settings.Audio.FFmpeg, "ffmpeg", "", "ffmpeg binary")
	flagSet.StringVar(&settings.Audio.Backend, "audio-backend", "", "ffmpeg input format")
}

// arguments renders settings as record-output flags. Values are joined
// with "=" so that one starting with "-" is never taken for a flag.
func (settings *outputSettings) arguments() []string {
	args := []string{
		"--output=" + settings.Output,
		"--format-version=" + strconv.Itoa(settings.Version),
		"--cols=" + strconv.Itoa(int(settings.Columns)),
		"--rows=" + strconv.Itoa(int(settings.Rows)),
		"--command=" + settings.Command,
		"--title=" + settings.Title,
		"--env=" + settings.Env,
	}
	if settings.StartPaused {
		args = append(args, "--paused")
	}
	if settings.DebugLog != "" {
		args = append(args, "--debug-log="+settings.DebugLog)
	}
	if settings.Audio.Enabled() {
		args = append(args,
			"--audio-device="+settings.Audio.Device,
			"--audio-out="+settings.Audio.Output,
			"--audio-codec="+settings.Audio.Codec,
			"--sample-rate="+strconv.Itoa(settings.Audio.SampleRate),
			"--channels="+strconv.Itoa(settings.Audio.Channels),
			"--ffmpeg="+settings.Audio.FFmpeg,
			"--audio-backend="+settings.Audio.Backend,
		)
		if settings.Audio.Raw {
			args = append(args, "--raw-audio")
		}
	}
	return args
}

func recordOutputCommand() *cli.Command {
	var settings outputSettings

	return &cli.Command{
		Name:    "record-output",
		Summary: "Run the session recorder (started by record)",
		Hidden:  true,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("record-output", pflag.ContinueOnError)
			settings.bind(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			terminal, err := inheritedFile(terminalFD, "pty-master")
			if err != nil {
				return err
			}
			controlChannel, err := inheritedFile(controlFD, "control")
			if err != nil {
				return err
			}
			return runRecorder(settings, recorder.Channels{
				Control:  controlChannel,
				Terminal: terminal,
				Stdout:   os.Stdout,
				Stdin:    os.Stdin,
			})
		},
	}
}

// inheritedFile wraps a descriptor passed by the parent process.
func inheritedFile(fd int, name string) (*os.File, error) {
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0); err != nil {
		return nil, cli.Validation("descriptor %d (%s) is not open: %v", fd, name, err).
			WithHint("record-output is started by 'castty record'; run that instead.")
	}
	return os.NewFile(uintptr(fd), name), nil
}

// runRecorder writes one session file from channels. A session that
// ends because the shell exited is a success.
func runRecorder(settings outputSettings, channels recorder.Channels) error {
	logger, logCloser, err := cli.NewFileLogger(settings.DebugLog)
	if err != nil {
		return cli.Internal("%w", err)
	}
	defer logCloser.Close()
	logger = logger.With("process", "recorder")

	version, err := asciicast.ParseVersion(settings.Version)
	if err != nil {
		return cli.Validation("%v", err)
	}
	if !json.Valid([]byte(settings.Env)) {
		return cli.Validation("--env is not valid JSON")
	}
	writer, err := asciicast.Create(settings.Output, asciicast.Header{
		Version: version,
		Width:   int(settings.Columns),
		Height:  int(settings.Rows),
		Command: settings.Command,
		Title:   settings.Title,
		Env:     json.RawMessage(settings.Env),
	})
	if err != nil {
		return cli.Internal("%w", err)
	}

	sessionConfig := recorder.Config{
		StartPaused: settings.StartPaused,
		Logger:      logger,
	}
	if settings.Audio.Enabled() {
		capture, err := openAudio(settings.Audio, logger)
		if err != nil {
			writer.Close(0)
			return err
		}
		sessionConfig.Audio = capture
	}

	session := recorder.New(writer, channels, sessionConfig)
	err = session.Run()
	if errors.Is(err, recorder.ErrSessionEnded) {
		logger.Info("session recorded",
			"output", settings.Output,
			"events", writer.Events(),
			"duration_ms", session.TotalMS(),
		)
		return nil
	}
	return cli.Internal("recording %s: %w", settings.Output, err)
}

func openAudio(settings config.AudioConfig, logger *slog.Logger) (*audio.Capture, error) {
	codec, err := audio.ParseCodec(settings.Codec)
	if err != nil {
		return nil, cli.Validation("%v", err)
	}
	capture, err := audio.Open(audio.Options{
		Output: settings.Output,
		Codec:  codec,
		Format: audio.Format{SampleRate: settings.SampleRate, Channels: settings.Channels},
		Raw:    settings.Raw,
		FFmpeg: audio.FFmpeg{
			Binary:  settings.FFmpeg,
			Backend: settings.Backend,
			Device:  settings.Device,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, cli.Transient("opening audio capture: %w", err).
			WithHint("Check the device with 'castty devices' and that ffmpeg is installed.")
	}
	return capture, nil
}
