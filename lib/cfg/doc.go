// Copyright 2026 The Keypam Authors
// SPDX-License-Identifier: Apache-2.0

// Package cfg loads and merges keypam's module configuration.
//
// Settings come from two sources sharing one grammar: the trusted
// configuration file (default /etc/security/keypam.conf, or the file
// named by a conf= module argument) and the module arguments supplied
// by the invoking authentication framework. Each entry is a bare flag
// ("debug") or a key=value pair ("max_devices=2"); in the file, '#'
// starts a trailing comment and whitespace around '=' and at line
// ends is insignificant.
//
// [Init] produces one [Settings] record per authentication attempt:
//
//  1. Reset to sentinel defaults (tri-state fields -1, stderr sink).
//  2. Early argument scan: pick up conf= and the debug settings so
//     tracing covers the file load itself.
//  3. File load through lib/secureopen. The default path is allowed
//     to be absent; a conf= path is not.
//  4. Full argument scan, so module arguments always override
//     file-provided values.
//
// Unrecognized keys and malformed numeric values are ignored without
// error, keeping old configurations loadable by newer modules. Any
// other failure discards the whole record: there is no partial
// success.
//
// [Settings.Release] closes the debug sink and returns the record to
// its sentinel state; it is safe to call on a record that never
// loaded or was already released.
package cfg
