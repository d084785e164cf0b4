// Copyright 2026 The Keypam Authors
// SPDX-License-Identifier: Apache-2.0

// Package version identifies keypam builds. [GitCommit], [GitDirty],
// and [Version] are injected via -ldflags -X, for example:
//
//	go build -ldflags "-X github.com/keypam/keypam/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// [Info] formats them for keypam-checkconf's --version output.
package version
