// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// These variables are set via -ldflags at build time, for example:
//
//	go build -ldflags "-X github.com/castty/castty/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Left empty, the VCS stamp the go command embeds in the binary is
// used instead.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = ""

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = ""

	// BuildTime is the UTC timestamp of the build.
	BuildTime = ""

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// shortCommitLength matches git's default abbreviation.
const shortCommitLength = 7

type stamp struct {
	revision string
	modified string
	time     string
}

var embedded = sync.OnceValue(func() stamp {
	var result stamp
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return result
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			result.revision = setting.Value
			if len(result.revision) > shortCommitLength {
				result.revision = result.revision[:shortCommitLength]
			}
		case "vcs.modified":
			result.modified = setting.Value
		case "vcs.time":
			result.time = setting.Value
		}
	}
	return result
})

func firstSet(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return "unknown"
}

// Info returns a formatted version string suitable for --version output.
func Info() string {
	dirty := ""
	if firstSet(GitDirty, embedded().modified) == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, Commit(), dirty, firstSet(BuildTime, embedded().time))
}

// Full returns detailed version information including Go version.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version number.
func Short() string {
	return Version
}

// Commit returns the git commit SHA, or "unknown".
func Commit() string {
	return firstSet(GitCommit, embedded().revision)
}
