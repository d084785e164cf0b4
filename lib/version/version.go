// Copyright 2026 The Keypam Authors
// SPDX-License-Identifier: Apache-2.0

package version

import "fmt"

// Build metadata, injected via -ldflags -X at release time. A
// development or test build reports the defaults.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty is "true" when the build had uncommitted changes.
	GitDirty = "false"

	// Version is the semantic version, set manually for releases.
	Version = "0.1.0-dev"
)

// Info returns the version string printed by --version.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s)", Version, GitCommit, dirty)
}
