// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"filippo.io/age"
	"github.com/spf13/pflag"

	"github.com/castty/castty/lib/audio"
	"github.com/castty/castty/lib/config"
	"github.com/castty/castty/lib/digest"
	"github.com/castty/castty/lib/seal"
)

func TestRecordParamsApply(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Title = "from config"
	cfg.Recipients = []string{"recipients.txt"}

	params := recordParams{
		v2:          true,
		paused:      true,
		device:      "default",
		audioOutput: "voice.wav",
		rawAudio:    true,
		digest:      true,
		recipients:  []string{"age1example"},
	}
	params.apply(cfg, []string{"demo.cast"})

	if cfg.Output != "demo.cast" {
		t.Errorf("Output: got %q, want %q", cfg.Output, "demo.cast")
	}
	if cfg.FormatVersion != 2 {
		t.Errorf("FormatVersion: got %d, want 2", cfg.FormatVersion)
	}
	if cfg.Title != "from config" {
		t.Errorf("Title: got %q, want the configured title kept", cfg.Title)
	}
	if !cfg.StartPaused || !cfg.Digest || !cfg.Audio.Raw {
		t.Errorf("boolean flags not applied: %+v", cfg)
	}
	if !cfg.Audio.Enabled() {
		t.Error("audio not enabled by --device and --audio-out")
	}
	if cfg.Audio.Codec != "wav" {
		t.Errorf("Audio.Codec: got %q, want the default %q", cfg.Audio.Codec, "wav")
	}
	want := []string{"recipients.txt", "age1example"}
	if !reflect.DeepEqual(cfg.Recipients, want) {
		t.Errorf("Recipients: got %v, want %v", cfg.Recipients, want)
	}
}

func TestRecordParamsApplyKeepsConfigWithoutFlags(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.StartPaused = true
	cfg.FormatVersion = 2

	var params recordParams
	params.apply(cfg, nil)

	if cfg.Output != "events.cast" || !cfg.StartPaused || cfg.FormatVersion != 2 {
		t.Errorf("configuration changed without flags: %+v", cfg)
	}
}

func TestRecordFlags(t *testing.T) {
	t.Parallel()

	var params recordParams
	flagSet := pflag.NewFlagSet("record", pflag.ContinueOnError)
	params.bind(flagSet)

	err := flagSet.Parse([]string{"-2", "-c", "100", "-r", "30", "-e", "ls -l", "-p", "--recipient", "a", "--recipient", "b", "out.cast"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !params.v2 || params.columns != 100 || params.rows != 30 || params.command != "ls -l" || !params.paused {
		t.Errorf("parsed params: %+v", params)
	}
	if !reflect.DeepEqual(params.recipients, []string{"a", "b"}) {
		t.Errorf("recipients: got %v, want [a b]", params.recipients)
	}
	if args := flagSet.Args(); len(args) != 1 || args[0] != "out.cast" {
		t.Errorf("positional args: got %v, want [out.cast]", args)
	}
}

func TestRunRecordRejectsInvalidConfiguration(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "castty.yaml")
	if err := os.WriteFile(path, []byte("format_version: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := runRecord(&recordParams{configPath: path}, nil)
	if err == nil || !strings.Contains(err.Error(), "format_version must be 1 or 2") {
		t.Errorf("runRecord error: got %v, want a format_version complaint", err)
	}
}

func TestRunRecordRejectsExtraArguments(t *testing.T) {
	t.Parallel()

	err := runRecord(&recordParams{}, []string{"a.cast", "b.cast"})
	if err == nil || !strings.Contains(err.Error(), "unexpected argument: b.cast") {
		t.Errorf("runRecord error: got %v", err)
	}
}

func TestFinishWritesDigestAndSeal(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	output := filepath.Join(directory, "demo.cast")
	content := []byte("{\"version\": 2, \"width\": 80, \"height\": 24}\n[0.0,\"o\",\"$ \"]\n")
	if err := os.WriteFile(output, content, 0o644); err != nil {
		t.Fatal(err)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity: %v", err)
	}

	cfg := config.Default()
	cfg.Output = output
	cfg.Digest = true

	var report bytes.Buffer
	if err := finish(&report, cfg, []age.Recipient{identity.Recipient()}); err != nil {
		t.Fatalf("finish: %v", err)
	}

	if _, err := digest.Verify(output); err != nil {
		t.Errorf("Verify: %v", err)
	}
	plaintext, err := seal.OpenFile(output+seal.Suffix, []age.Identity{identity})
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if !bytes.Equal(plaintext, content) {
		t.Errorf("sealed content: got %q, want %q", plaintext, content)
	}

	for _, want := range []string{"session saved to " + output, "blake3 ", output + digest.SidecarSuffix, output + seal.Suffix} {
		if !strings.Contains(report.String(), want) {
			t.Errorf("report missing %q:\n%s", want, report.String())
		}
	}
}

func TestFinishWithoutExtras(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "plain.cast")
	if err := os.WriteFile(output, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Output = output

	var report bytes.Buffer
	if err := finish(&report, cfg, nil); err != nil {
		t.Fatalf("finish: %v", err)
	}
	for _, suffix := range []string{digest.SidecarSuffix, seal.Suffix} {
		if _, err := os.Stat(output + suffix); !os.IsNotExist(err) {
			t.Errorf("%s written without being asked for (stat error %v)", suffix, err)
		}
	}
}

func TestFinishReportsAudioTrack(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	output := filepath.Join(directory, "demo.cast")
	if err := os.WriteFile(output, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	track := filepath.Join(directory, "demo.wav")
	err := audio.WriteMetadata(track+audio.MetadataSuffix, audio.Metadata{
		Codec:      audio.CodecWAV,
		Encoding:   "s16le",
		SampleRate: 48000,
		Channels:   2,
		BitDepth:   audio.BitDepth,
		Frames:     72000,
		DurationMS: 1500,
	})
	if err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}

	cfg := config.Default()
	cfg.Output = output
	cfg.Audio.Device = "default"
	cfg.Audio.Output = track

	var report bytes.Buffer
	if err := finish(&report, cfg, nil); err != nil {
		t.Fatalf("finish: %v", err)
	}
	for _, want := range []string{"audio track saved to " + track, "audio wav, 48000 Hz, 2 channels, 1.5s"} {
		if !strings.Contains(report.String(), want) {
			t.Errorf("report missing %q:\n%s", want, report.String())
		}
	}
}

func TestFinishMissingAudioMetadata(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	cfg := config.Default()
	cfg.Output = filepath.Join(directory, "demo.cast")
	cfg.Audio.Device = "default"
	cfg.Audio.Output = filepath.Join(directory, "demo.wav")

	var report bytes.Buffer
	if err := finish(&report, cfg, nil); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !strings.Contains(report.String(), "audio metadata unavailable") {
		t.Errorf("report: got %q, want the metadata failure noted", report.String())
	}
}
