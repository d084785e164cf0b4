// Copyright 2026 The Keypam Authors
// SPDX-License-Identifier: Apache-2.0

// Package debugsink is the destination for keypam's diagnostic
// tracing.
//
// A sink is selected by the debug_file= setting: the values "stderr"
// and "stdout" name the process streams, "syslog" routes to the
// system log, and anything else is opened (append) as a file path.
// [Default] returns the stderr sink used when nothing is configured.
// Open never fails: if the path cannot be opened the default sink is
// returned, so requesting diagnostics can degrade but not break an
// authentication attempt.
//
// Each settings record owns its sink and closes it on release;
// Default constructs a fresh value per call rather than sharing
// process-global state.
package debugsink
