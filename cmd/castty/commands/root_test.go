// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/castty/castty/cmd/castty/cli"
)

// walkCommands recursively visits every command in the tree,
// calling visit for each node with the accumulated command path.
func walkCommands(command *cli.Command, path []string, visit func(*cli.Command, []string)) {
	current := make([]string, len(path)+1)
	copy(current, path)
	current[len(path)] = command.Name
	visit(command, current)
	for _, sub := range command.Subcommands {
		walkCommands(sub, current, visit)
	}
}

func TestCommandTree(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	walkCommands(Root(), nil, func(command *cli.Command, path []string) {
		name := strings.Join(path, " ")
		if seen[name] {
			t.Errorf("%s: duplicate command", name)
		}
		seen[name] = true
		if len(path) > 1 && command.Summary == "" {
			t.Errorf("%s: missing Summary", name)
		}
		if command.Run == nil && len(command.Subcommands) == 0 {
			t.Errorf("%s: neither Run nor Subcommands", name)
		}
	})

	for _, want := range []string{"castty record", "castty record-output", "castty devices", "castty inspect", "castty version"} {
		if !seen[want] {
			t.Errorf("command tree is missing %q", want)
		}
	}
}

func TestRecordOutputIsHidden(t *testing.T) {
	t.Parallel()

	for _, command := range Root().Subcommands {
		if command.Hidden != (command.Name == "record-output") {
			t.Errorf("%s: Hidden = %v", command.Name, command.Hidden)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	var toolError *cli.ToolError
	if !errors.As(err, &toolError) {
		t.Fatalf("loadConfig error: got %v, want a ToolError", err)
	}
	if toolError.Category != cli.CategoryNotFound {
		t.Errorf("category: got %q, want %q", toolError.Category, cli.CategoryNotFound)
	}
}
