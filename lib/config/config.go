// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Config is the configuration for a recording.
type Config struct {
	// FormatVersion is the asciicast version written: 1 or 2.
	FormatVersion int `yaml:"format_version" json:"format_version"`

	// Output is the session file path.
	Output string `yaml:"output" json:"output"`

	// Shell is the program started on the pseudo-terminal.
	Shell string `yaml:"shell" json:"shell"`

	// Title is recorded in the header.
	Title string `yaml:"title" json:"title"`

	// EnvKeys names the environment variables recorded in the header.
	EnvKeys []string `yaml:"env_keys" json:"env_keys"`

	// StartPaused begins the recording paused.
	StartPaused bool `yaml:"start_paused" json:"start_paused"`

	// Digest writes a BLAKE3 digest next to the finished session file.
	Digest bool `yaml:"digest" json:"digest"`

	// Recipients are age recipients (or paths to recipient files) the
	// finished session file is encrypted to.
	Recipients []string `yaml:"recipients" json:"recipients"`

	// Audio configures the optional microphone track.
	Audio AudioConfig `yaml:"audio" json:"audio"`
}

// AudioConfig configures audio capture. Capture is enabled when both
// Device and Output are set.
type AudioConfig struct {
	// FFmpeg is the ffmpeg binary; empty means "ffmpeg" on PATH.
	FFmpeg string `yaml:"ffmpeg" json:"ffmpeg"`

	// Backend is the ffmpeg input format (pulse, alsa, avfoundation).
	Backend string `yaml:"backend" json:"backend"`

	// Device is the capture device identifier.
	Device string `yaml:"device" json:"device"`

	// Output is the audio track path.
	Output string `yaml:"output" json:"output"`

	// Codec is raw, wav, zstd, or lz4.
	Codec string `yaml:"codec" json:"codec"`

	// Raw forces headerless PCM output regardless of Codec.
	Raw bool `yaml:"raw" json:"raw"`

	SampleRate int `yaml:"sample_rate" json:"sample_rate"`
	Channels   int `yaml:"channels" json:"channels"`
}

// Enabled reports whether audio capture is configured.
func (audio AudioConfig) Enabled() bool {
	return audio.Device != "" && audio.Output != ""
}

// DefaultEnvKeys are the environment variables recorded by default.
var DefaultEnvKeys = []string{"TERM", "SHELL", "PS1", "PS2"}

// Default returns the configuration used when no file is given.
func Default() *Config {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Config{
		FormatVersion: 1,
		Output:        "events.cast",
		Shell:         shell,
		EnvKeys:       append([]string(nil), DefaultEnvKeys...),
		Audio: AudioConfig{
			Codec:      "wav",
			SampleRate: 48000,
			Channels:   2,
		},
	}
}

// Load loads configuration from the CASTTY_CONFIG environment variable,
// or returns [Default] when it is not set.
func Load() (*Config, error) {
	configPath := os.Getenv("CASTTY_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Values in the
// file replace the defaults; fields the file omits keep them.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	cfg.expandVariables()

	return cfg, nil
}

// loadFile merges a single configuration file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return json.Unmarshal(jsonc.ToJSON(data), c)
	default:
		return yaml.Unmarshal(data, c)
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Output = expandVars(c.Output, vars)
	c.Shell = expandVars(c.Shell, vars)
	for index, recipient := range c.Recipients {
		c.Recipients[index] = expandVars(recipient, vars)
	}
	c.Audio.FFmpeg = expandVars(c.Audio.FFmpeg, vars)
	c.Audio.Output = expandVars(c.Audio.Output, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Every problem is
// reported, not just the first.
func (c *Config) Validate() error {
	var errs []error

	if c.FormatVersion != 1 && c.FormatVersion != 2 {
		errs = append(errs, fmt.Errorf("format_version must be 1 or 2, got %d", c.FormatVersion))
	}

	if c.Output == "" {
		errs = append(errs, fmt.Errorf("output is required"))
	}

	if c.Shell == "" {
		errs = append(errs, fmt.Errorf("shell is required"))
	}

	if (c.Audio.Device == "") != (c.Audio.Output == "") {
		errs = append(errs, fmt.Errorf("audio.device and audio.output must be set together"))
	}

	if c.Audio.Enabled() {
		codecs := []string{"raw", "wav", "zstd", "lz4"}
		if !slices.Contains(codecs, c.Audio.Codec) {
			errs = append(errs, fmt.Errorf("audio.codec must be one of: %v", codecs))
		}
		if c.Audio.SampleRate <= 0 {
			errs = append(errs, fmt.Errorf("audio.sample_rate must be positive"))
		}
		if c.Audio.Channels < 1 || c.Audio.Channels > 8 {
			errs = append(errs, fmt.Errorf("audio.channels must be between 1 and 8"))
		}
		if c.Audio.Output == c.Output {
			errs = append(errs, fmt.Errorf("audio.output must differ from output"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
