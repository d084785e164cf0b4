// Copyright 2026 The Keypam Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package debugsink

import (
	"fmt"
	"io"
	"log/slog"
	"log/syslog"
	"os"
)

// Sink writes diagnostic records for one settings record.
type Sink struct {
	logger *slog.Logger
	closer io.Closer // nil when the destination is not ours to close
}

func newSink(w io.Writer, closer io.Closer) *Sink {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &Sink{logger: slog.New(handler), closer: closer}
}

// Default returns a sink writing to stderr. Each call constructs a
// fresh value: records own their sinks outright and never share one.
func Default() *Sink {
	return newSink(os.Stderr, nil)
}

// Open returns a sink for the given debug_file= value. "stderr",
// "stdout" and "syslog" select those destinations; any other value is
// opened as a file path in append mode. Open never fails: if the
// destination cannot be opened, the default sink is returned and the
// failure is noted there.
func Open(path string) *Sink {
	switch path {
	case "stderr":
		return Default()
	case "stdout":
		return newSink(os.Stdout, nil)
	case "syslog":
		w, err := syslog.New(syslog.LOG_AUTHPRIV|syslog.LOG_DEBUG, "keypam")
		if err != nil {
			s := Default()
			s.Debugf("debug_file=syslog: %v", err)
			return s
		}
		return newSink(w, w)
	default:
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			s := Default()
			s.Debugf("debug_file=%s: %v", path, err)
			return s
		}
		return newSink(f, f)
	}
}

// Logger exposes the sink's structured logger.
func (s *Sink) Logger() *slog.Logger {
	return s.logger
}

// Debugf logs a formatted line at debug level.
func (s *Sink) Debugf(format string, args ...any) {
	s.logger.Debug(fmt.Sprintf(format, args...))
}

// Close releases the underlying file, if the sink owns one. The sink
// stays usable afterwards but discards everything written to it.
// Safe to call more than once.
func (s *Sink) Close() {
	if s.closer != nil {
		s.closer.Close()
		s.closer = nil
	}
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}
