// Copyright 2026 The Keypam Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/keypam/keypam/lib/debugsink"
	"github.com/keypam/keypam/lib/secureopen"
)

// DefaultPath is the configuration file consulted when no conf=
// module argument is given. Unlike a conf= path, it is allowed to be
// absent.
const DefaultPath = "/etc/security/keypam.conf"

// Settings is the fully merged module configuration for one
// authentication attempt. String fields are owned copies; nothing in
// the record references caller or file memory.
type Settings struct {
	Debug       bool `yaml:"debug"`
	Manual      bool `yaml:"manual"`
	NoUserOK    bool `yaml:"nouserok"`
	OpenAsUser  bool `yaml:"openasuser"`
	AlwaysOK    bool `yaml:"alwaysok"`
	Interactive bool `yaml:"interactive"`
	Cue         bool `yaml:"cue"`
	NoDetect    bool `yaml:"nodetect"`
	Expand      bool `yaml:"expand"`
	SSHFormat   bool `yaml:"sshformat"`

	// Tri-state fields: -1 means unset, any other value is an
	// explicit administrator choice passed through to the
	// authenticator device.
	UserPresence     int `yaml:"userpresence"`
	UserVerification int `yaml:"userverification"`
	PINVerification  int `yaml:"pinverification"`

	// MaxDevices caps how many attached devices are probed.
	// 0 means unset.
	MaxDevices uint `yaml:"max_devices"`

	AuthFile        string `yaml:"authfile,omitempty"`
	AuthPendingFile string `yaml:"authpending_file,omitempty"`
	Origin          string `yaml:"origin,omitempty"`
	AppID           string `yaml:"appid,omitempty"`
	Prompt          string `yaml:"prompt,omitempty"`
	CuePrompt       string `yaml:"cue_prompt,omitempty"`

	// DebugSink receives diagnostic tracing. Owned by the record;
	// replaced by debug_file= and closed by Release.
	DebugSink *debugsink.Sink `yaml:"-"`
}

// readTrusted resolves and reads the configuration file through the
// trust walk. A package variable so orchestrator tests can substitute
// synthetic content without building a root-owned /etc tree.
var readTrusted = func(path string) ([]byte, error) {
	f, err := secureopen.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.ReadAll()
}

// Init builds a Settings record from the module arguments, loading
// and merging the trusted configuration file along the way. Module
// arguments override file-provided values. On error the returned
// record is nil and every acquired resource has been released.
func Init(args []string) (*Settings, error) {
	s := &Settings{}
	s.reset()

	// Early scan: conf= selection plus the debug subset, so tracing
	// is live before the file is touched.
	confPath := ""
	explicit := false
	for _, arg := range args {
		if path, ok := strings.CutPrefix(arg, "conf="); ok {
			confPath = path
			explicit = true
		} else {
			s.applyDebug(arg)
		}
	}

	err := s.loadFile(confPath, explicit)
	if err == nil {
		// Module arguments win over the file: applied last,
		// conf= itself excluded.
		for _, arg := range args {
			if strings.HasPrefix(arg, "conf=") {
				continue
			}
			s.apply(arg)
		}
	}

	if s.Debug {
		s.dump(args)
	}

	if err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

// loadFile loads the configuration file and merges its entries.
// Absence of the default file is success with nothing applied;
// absence of an explicitly requested file is an error.
func (s *Settings) loadFile(path string, explicit bool) error {
	if !explicit {
		path = DefaultPath
	}

	data, err := readTrusted(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return fmt.Errorf("configuration file %s: %w", path, err)
			}
			return nil
		}
		return err
	}

	s.applyBuffer(data)
	return nil
}

// reset returns the record to its sentinel state: tri-state fields
// unset, a fresh default debug sink, everything else zero.
func (s *Settings) reset() {
	*s = Settings{
		UserPresence:     -1,
		UserVerification: -1,
		PINVerification:  -1,
		DebugSink:        debugsink.Default(),
	}
}

// Release closes the debug sink and resets the record. Callable any
// number of times, including on a record that never finished loading.
func (s *Settings) Release() {
	if s.DebugSink != nil {
		s.DebugSink.Close()
	}
	s.reset()
}

// dump traces the invocation and every resolved field through the
// debug sink.
func (s *Settings) dump(args []string) {
	logger := s.DebugSink.Logger()
	logger.Debug("module invoked", "argc", len(args), "argv", args)
	logger.Debug("resolved settings",
		"debug", s.Debug,
		"manual", s.Manual,
		"nouserok", s.NoUserOK,
		"openasuser", s.OpenAsUser,
		"alwaysok", s.AlwaysOK,
		"interactive", s.Interactive,
		"cue", s.Cue,
		"nodetect", s.NoDetect,
		"expand", s.Expand,
		"sshformat", s.SSHFormat,
		"userpresence", s.UserPresence,
		"userverification", s.UserVerification,
		"pinverification", s.PINVerification,
		"max_devices", s.MaxDevices,
		"authfile", s.AuthFile,
		"authpending_file", s.AuthPendingFile,
		"origin", s.Origin,
		"appid", s.AppID,
		"prompt", s.Prompt,
		"cue_prompt", s.CuePrompt,
	)
}
