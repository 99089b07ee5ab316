// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for castty.
//
// Configuration is loaded from a single file named by either the
// CASTTY_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic
// file search: without a file, [Default] applies. Command-line flags
// are applied on top by the caller.
//
// Files ending in .json or .jsonc are parsed as JSON with comments
// and trailing commas allowed; anything else is parsed as YAML.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No environment
// variable overrides a config value directly.
//
// This package depends on no other castty packages.
package config
