// Copyright 2026 The Keypam Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package cfg

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"  foo  =  bar  # note", "foo=bar"},
		{"baz", "baz"},
		{"# only a comment", ""},
		{"", ""},
		{"   ", ""},
		{"key = value with spaces  ", "key=value with spaces"},
		{"flag # trailing", "flag"},
		{"a=b=c", "a=b=c"}, // split on the first '=' only
		{"= orphan", "=orphan"},
		{"\tdebug\t", "debug"},
	}

	for _, tc := range cases {
		if got := normalize(tc.line); got != tc.want {
			t.Errorf("normalize(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}

func newTestSettings() *Settings {
	s := &Settings{}
	s.reset()
	return s
}

func TestApplyBooleanFlags(t *testing.T) {
	flags := map[string]func(*Settings) bool{
		"debug":       func(s *Settings) bool { return s.Debug },
		"manual":      func(s *Settings) bool { return s.Manual },
		"nouserok":    func(s *Settings) bool { return s.NoUserOK },
		"openasuser":  func(s *Settings) bool { return s.OpenAsUser },
		"alwaysok":    func(s *Settings) bool { return s.AlwaysOK },
		"interactive": func(s *Settings) bool { return s.Interactive },
		"cue":         func(s *Settings) bool { return s.Cue },
		"nodetect":    func(s *Settings) bool { return s.NoDetect },
		"expand":      func(s *Settings) bool { return s.Expand },
		"sshformat":   func(s *Settings) bool { return s.SSHFormat },
	}

	for token, get := range flags {
		s := newTestSettings()
		if get(s) {
			t.Errorf("%s set before apply", token)
		}
		s.apply(token)
		if !get(s) {
			t.Errorf("apply(%q) did not set the flag", token)
		}
		s.Release()
	}
}

func TestApplyNumericValues(t *testing.T) {
	s := newTestSettings()
	defer s.Release()

	s.apply("max_devices=5")
	s.apply("userpresence=1")
	s.apply("userverification=0")
	s.apply("pinverification=-1")

	if s.MaxDevices != 5 {
		t.Errorf("MaxDevices = %d, want 5", s.MaxDevices)
	}
	if s.UserPresence != 1 || s.UserVerification != 0 || s.PINVerification != -1 {
		t.Errorf("tri-states = %d/%d/%d, want 1/0/-1",
			s.UserPresence, s.UserVerification, s.PINVerification)
	}
}

func TestApplyMalformedNumericIsNoOp(t *testing.T) {
	s := newTestSettings()
	defer s.Release()

	s.apply("max_devices=4")
	s.apply("userpresence=1")

	for _, token := range []string{
		"max_devices=many",
		"max_devices=",
		"max_devices=-2",
		"userpresence=maybe",
		"userpresence=",
	} {
		s.apply(token)
	}

	if s.MaxDevices != 4 {
		t.Errorf("MaxDevices = %d, want prior value 4", s.MaxDevices)
	}
	if s.UserPresence != 1 {
		t.Errorf("UserPresence = %d, want prior value 1", s.UserPresence)
	}
}

func TestApplyStringValues(t *testing.T) {
	s := newTestSettings()
	defer s.Release()

	s.apply("authfile=/var/lib/keypam/keys")
	s.apply("authpending_file=/run/keypam/pending")
	s.apply("origin=pam://host")
	s.apply("appid=pam://host")
	s.apply("prompt=Touch the key: ")
	s.apply("cue_prompt=Waiting for touch")

	if s.AuthFile != "/var/lib/keypam/keys" ||
		s.AuthPendingFile != "/run/keypam/pending" ||
		s.Origin != "pam://host" ||
		s.AppID != "pam://host" ||
		s.Prompt != "Touch the key: " ||
		s.CuePrompt != "Waiting for touch" {
		t.Errorf("string fields not applied: %+v", s)
	}
}

func TestApplyLastWriteWins(t *testing.T) {
	s := newTestSettings()
	defer s.Release()

	s.apply("origin=pam://first")
	s.apply("origin=pam://second")
	s.apply("max_devices=1")
	s.apply("max_devices=9")

	if s.Origin != "pam://second" {
		t.Errorf("Origin = %q, want the later value", s.Origin)
	}
	if s.MaxDevices != 9 {
		t.Errorf("MaxDevices = %d, want the later value 9", s.MaxDevices)
	}
}

func TestApplyIgnoresUnrecognizedTokens(t *testing.T) {
	s := newTestSettings()
	defer s.Release()
	before := *s

	s.apply("frobnicate")
	s.apply("frobnicate=7")
	s.apply("debug=1") // debug takes no value
	s.apply("conf=/elsewhere")
	s.apply("=bare")

	after := *s
	before.DebugSink, after.DebugSink = nil, nil
	if before != after {
		t.Errorf("unrecognized tokens changed the record: %+v", s)
	}
}

func TestApplyBufferMergesInOrder(t *testing.T) {
	s := newTestSettings()
	defer s.Release()

	s.applyBuffer([]byte("debug\n\n# header\nmax_devices = 2\nmax_devices = 6 # last wins\norigin=pam://host\n"))

	if !s.Debug {
		t.Error("debug not set from buffer")
	}
	if s.MaxDevices != 6 {
		t.Errorf("MaxDevices = %d, want 6", s.MaxDevices)
	}
	if s.Origin != "pam://host" {
		t.Errorf("Origin = %q, want pam://host", s.Origin)
	}
}

func TestApplyDebugSubsetOnly(t *testing.T) {
	s := newTestSettings()
	defer s.Release()

	s.applyDebug("debug")
	s.applyDebug("max_devices=5") // not part of the debug subset
	s.applyDebug("manual")

	if !s.Debug {
		t.Error("applyDebug did not set debug")
	}
	if s.MaxDevices != 0 || s.Manual {
		t.Error("applyDebug merged settings outside the debug subset")
	}
}
