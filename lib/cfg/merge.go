// Copyright 2026 The Keypam Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package cfg

import (
	"strconv"
	"strings"

	"github.com/keypam/keypam/lib/debugsink"
)

// normalize turns one raw configuration-file line into the canonical
// token form shared with module arguments: comment stripped, both
// sides of the first '=' trimmed, no surrounding whitespace.
//
//	"foo = bar # note" -> "foo=bar"
//	"baz"              -> "baz"
//	"# only a comment" -> ""
//
// An empty result means the line carries no entry.
func normalize(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	key, value, found := strings.Cut(line, "=")
	if !found {
		return strings.TrimSpace(key)
	}
	return strings.TrimSpace(key) + "=" + strings.TrimSpace(value)
}

// applyBuffer merges every entry of a configuration file's content
// into the record, in file order.
func (s *Settings) applyBuffer(data []byte) {
	for _, line := range strings.Split(string(data), "\n") {
		token := normalize(line)
		if token == "" {
			continue
		}
		s.apply(token)
	}
}

// apply merges one canonical token into the record. Later entries
// replace earlier ones. Unrecognized tokens are ignored: an old
// module must not reject a newer installation's configuration.
// Malformed numeric values are likewise a silent no-op, keeping the
// field at its prior value.
func (s *Settings) apply(token string) {
	key, value, hasValue := strings.Cut(token, "=")
	if !hasValue {
		switch key {
		case "manual":
			s.Manual = true
		case "nouserok":
			s.NoUserOK = true
		case "openasuser":
			s.OpenAsUser = true
		case "alwaysok":
			s.AlwaysOK = true
		case "interactive":
			s.Interactive = true
		case "cue":
			s.Cue = true
		case "nodetect":
			s.NoDetect = true
		case "expand":
			s.Expand = true
		case "sshformat":
			s.SSHFormat = true
		default:
			s.applyDebug(token)
		}
		return
	}

	switch key {
	case "max_devices":
		if n, err := strconv.ParseUint(value, 10, 32); err == nil {
			s.MaxDevices = uint(n)
		}
	case "userpresence":
		if n, err := strconv.Atoi(value); err == nil {
			s.UserPresence = n
		}
	case "userverification":
		if n, err := strconv.Atoi(value); err == nil {
			s.UserVerification = n
		}
	case "pinverification":
		if n, err := strconv.Atoi(value); err == nil {
			s.PINVerification = n
		}
	case "authfile":
		s.AuthFile = value
	case "authpending_file":
		s.AuthPendingFile = value
	case "origin":
		s.Origin = value
	case "appid":
		s.AppID = value
	case "prompt":
		s.Prompt = value
	case "cue_prompt":
		s.CuePrompt = value
	default:
		s.applyDebug(token)
	}
}

// applyDebug merges only the debug subset: the debug flag and the
// debug_file= sink selection. Used on its own during the early
// argument scan, and as the fallthrough of apply.
func (s *Settings) applyDebug(token string) {
	if token == "debug" {
		s.Debug = true
		return
	}
	if path, ok := strings.CutPrefix(token, "debug_file="); ok {
		s.DebugSink.Close()
		s.DebugSink = debugsink.Open(path)
	}
}
