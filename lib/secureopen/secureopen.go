// Copyright 2026 The Keypam Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package secureopen

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// MaxFileSize is the largest configuration file ReadAll will load.
// The limit is enforced before any allocation, so a huge file on disk
// cannot drive a huge allocation in a privileged process.
const MaxFileSize = 1 << 20

var (
	// ErrUntrusted reports a path whose ancestry or target fails the
	// trust predicate: not owned by root, writable by group or
	// others, wrong file type, or a symlink in terminal position.
	ErrUntrusted = errors.New("untrusted path")

	// ErrTooLarge reports a file exceeding MaxFileSize.
	ErrTooLarge = errors.New("file too large")
)

// trustedOwner is the UID every path component must be owned by.
const trustedOwner = 0

// checkOwner gates the trusted-owner validation. It is switched off
// only by this package's own tests, which exercise the walk against
// throwaway trees owned by an unprivileged user. There is no
// production toggle.
var checkOwner = true

// File is a validated, open configuration file.
type File struct {
	fd   int
	size int64
	path string
}

// Open opens path after verifying the trust predicate on every
// component from the filesystem root to the target.
//
// The path must be absolute and must not end in a separator.
// Intermediate directories may be reached through symlinks; the
// terminal component may not be one. A missing component yields an
// error satisfying errors.Is(err, fs.ErrNotExist); a trust violation
// yields ErrUntrusted.
func Open(path string) (*File, error) {
	return openInRoot("/", path)
}

// openInRoot performs the walk starting from root instead of "/".
// Tests use it to run the walk inside a temporary tree; production
// callers always go through Open. The root itself is opened
// no-follow but is not subject to the trust predicate, matching the
// treatment of "/" in Open.
func openInRoot(root, path string) (*File, error) {
	if len(path) == 0 || path[0] != '/' || path[len(path)-1] == '/' {
		return nil, fmt.Errorf("%w: %q is not an absolute file path", ErrUntrusted, path)
	}

	var parts []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: %q is not an absolute file path", ErrUntrusted, path)
	}

	dirFD, err := unix.Open(root, unix.O_RDONLY|unix.O_CLOEXEC|unix.O_DIRECTORY|unix.O_NOFOLLOW, 0)
	if err != nil {
		return nil, fmt.Errorf("opening walk root %s: %w", root, err)
	}
	defer func() {
		if dirFD != -1 {
			unix.Close(dirFD)
		}
	}()

	// Walk the intermediate directories. Each component is opened
	// first and judged afterwards, on its own descriptor: the check
	// can never race against a rename or symlink swap of the path.
	for _, part := range parts[:len(parts)-1] {
		fd, err := unix.Openat(dirFD, part, unix.O_RDONLY|unix.O_CLOEXEC|unix.O_DIRECTORY, 0)
		if err != nil {
			return nil, fmt.Errorf("opening path component %q of %s: %w", part, path, err)
		}

		var st unix.Stat_t
		if err := unix.Fstat(fd, &st); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("stating path component %q of %s: %w", part, path, err)
		}
		if err := checkTrust(&st, false, part, path); err != nil {
			unix.Close(fd)
			return nil, err
		}

		unix.Close(dirFD)
		dirFD = fd
	}

	// Terminal component: no-follow, and never a controlling
	// terminal. Unlike the directories above, a symlink here is
	// rejected, not merely distrusted.
	name := parts[len(parts)-1]
	fd, err := unix.Openat(dirFD, name, unix.O_RDONLY|unix.O_CLOEXEC|unix.O_NOCTTY|unix.O_NOFOLLOW, 0)
	if err != nil {
		if err == unix.ELOOP {
			return nil, fmt.Errorf("%w: %s is a symlink", ErrUntrusted, path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("stating %s: %w", path, err)
	}
	if err := checkTrust(&st, true, name, path); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &File{fd: fd, size: st.Size, path: path}, nil
}

// checkTrust applies the trust predicate to metadata obtained from an
// open descriptor. wantRegular selects the terminal-file rules; the
// intermediate rules accept directories and symlinks.
func checkTrust(st *unix.Stat_t, wantRegular bool, name, path string) error {
	if checkOwner && st.Uid != trustedOwner {
		return fmt.Errorf("%w: %q in %s is owned by uid %d, not uid %d",
			ErrUntrusted, name, path, st.Uid, trustedOwner)
	}

	format := st.Mode & unix.S_IFMT
	if wantRegular {
		if format != unix.S_IFREG {
			return fmt.Errorf("%w: %s is not a regular file", ErrUntrusted, path)
		}
	} else {
		if format != unix.S_IFDIR && format != unix.S_IFLNK {
			return fmt.Errorf("%w: %q in %s is not a directory", ErrUntrusted, name, path)
		}
	}

	if st.Mode&(unix.S_IWGRP|unix.S_IWOTH) != 0 {
		return fmt.Errorf("%w: %q in %s is writable by group or others (mode %04o)",
			ErrUntrusted, name, path, st.Mode&0o7777)
	}
	return nil
}

// Size returns the byte size recorded when the file was opened.
func (f *File) Size() int64 {
	return f.size
}

// ReadAll reads the whole file into memory, bounded by MaxFileSize.
// A file that turns out shorter than its recorded size (truncated
// between open and read) yields the bytes actually present, not an
// error.
func (f *File) ReadAll() ([]byte, error) {
	if f.size > MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrTooLarge, f.path, f.size, MaxFileSize)
	}

	buf := make([]byte, f.size)
	n := 0
	for n < len(buf) {
		r, err := unix.Read(f.fd, buf[n:])
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", f.path, err)
		}
		if r == 0 {
			break
		}
		n += r
	}
	return buf[:n], nil
}

// Close releases the descriptor. Safe to call more than once.
func (f *File) Close() error {
	if f.fd == -1 {
		return nil
	}
	err := unix.Close(f.fd)
	f.fd = -1
	if err != nil {
		return fmt.Errorf("closing %s: %w", f.path, err)
	}
	return nil
}
