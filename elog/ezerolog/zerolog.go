// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ezerolog provides a zerolog-backed logr sink.
package ezerolog

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/rs/zerolog"
)

type sink struct {
	l zerolog.Logger
}

var _ logr.LogSink = (*sink)(nil)

// NewLogger returns a logr.Logger writing through l. Verbosity 0 maps to
// zerolog's info level and everything above it to debug.
func NewLogger(l zerolog.Logger) logr.Logger {
	return logr.New(&sink{l: l})
}

func (s *sink) Init(logr.RuntimeInfo) {}

func (s *sink) Enabled(int) bool { return true }

func (s *sink) Info(level int, msg string, keysAndValues ...interface{}) {
	ev := s.l.Info()
	if level > 0 {
		ev = s.l.Debug()
	}
	addFields(ev, keysAndValues).Msg(msg)
}

func (s *sink) Error(err error, msg string, keysAndValues ...interface{}) {
	addFields(s.l.Error().Err(err), keysAndValues).Msg(msg)
}

func (s *sink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	c := s.l.With()
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		c = c.Interface(key(keysAndValues[i]), keysAndValues[i+1])
	}
	return &sink{l: c.Logger()}
}

func (s *sink) WithName(name string) logr.LogSink {
	return &sink{l: s.l.With().Str("logger", name).Logger()}
}

func addFields(ev *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		ev = ev.Interface(key(keysAndValues[i]), keysAndValues[i+1])
	}
	return ev
}

func key(k interface{}) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}
