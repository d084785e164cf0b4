// Copyright 2026 The Keypam Authors
// SPDX-License-Identifier: Apache-2.0

// Package secureopen opens administrator-controlled files for a
// privileged caller without trusting the path string.
//
// The module is invoked from a privileged authentication stack, so the
// configuration file it reads must be provably under administrator
// control: an unprivileged user who can interpose a symlink or who
// holds write permission anywhere along the path must not be able to
// feed the module a file of their choosing.
//
// [Open] walks the path one component at a time. Each intermediate
// component is opened relative to the previous directory's descriptor
// and only then inspected with fstat: it must be owned by root, be a
// directory, and carry no group or other write bit. The terminal
// component is opened with O_NOFOLLOW (a symlink there is rejected
// outright, while intermediate directories may be reached through
// symlinks) and must be a root-owned regular file, again with no
// group or other write bit.
//
// Every check runs against an already-open descriptor, never against
// the path string, so there is no window between validation and use.
// Generic safe-open helpers (os.OpenInRoot, filepath-securejoin and
// friends) are not a substitute here: they resolve symlinks at the
// root and perform no ownership or mode validation per component.
//
// A missing file or a missing ancestor is reported by an error
// satisfying errors.Is(err, fs.ErrNotExist); the caller decides
// whether absence is tolerable. Trust violations are reported as
// [ErrUntrusted].
//
// [File.ReadAll] loads the opened file whole, refusing anything
// larger than [MaxFileSize].
package secureopen
