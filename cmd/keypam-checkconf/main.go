// Copyright 2026 The Keypam Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

// keypam-checkconf loads the keypam configuration exactly as the
// authentication module would -- same trust walk, same merge order --
// and prints the resolved settings. It lets an administrator validate
// an /etc tree before an untrusted directory or a typo locks everyone
// out.
//
// Usage:
//
//	keypam-checkconf [--config PATH] [ARG...]
//
// ARGs are module arguments as they would appear in the PAM stack
// line, e.g.:
//
//	keypam-checkconf --config /etc/keypam/site.conf max_devices=2 cue
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/keypam/keypam/lib/cfg"
	"github.com/keypam/keypam/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var showVersion bool

	pflag.StringVar(&configPath, "config", "", "load `PATH` instead of "+cfg.DefaultPath)
	pflag.BoolVar(&showVersion, "version", false, "print version and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("keypam-checkconf %s\n", version.Info())
		return nil
	}

	// --config PATH is sugar for a leading conf= module argument; it
	// goes first so real arguments keep their override position.
	args := pflag.Args()
	if configPath != "" {
		args = append([]string{"conf=" + configPath}, args...)
	}

	settings, err := cfg.Init(args)
	if err != nil {
		return err
	}
	defer settings.Release()

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("rendering settings: %w", err)
	}
	os.Stdout.Write(out)
	return nil
}
