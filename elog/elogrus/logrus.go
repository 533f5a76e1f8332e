// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package elogrus provides a logrus-backed logr sink.
package elogrus

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"
)

type sink struct {
	e *logrus.Entry
}

var _ logr.LogSink = (*sink)(nil)

// NewLogger returns a logr.Logger writing through l. Verbosity 0 maps to
// logrus's info level and everything above it to debug.
func NewLogger(l *logrus.Logger) logr.Logger {
	return logr.New(&sink{e: logrus.NewEntry(l)})
}

func (s *sink) Init(logr.RuntimeInfo) {}

func (s *sink) Enabled(level int) bool {
	return s.e.Logger.IsLevelEnabled(logrusLevel(level))
}

func (s *sink) Info(level int, msg string, keysAndValues ...interface{}) {
	s.e.WithFields(fields(keysAndValues)).Log(logrusLevel(level), msg)
}

func (s *sink) Error(err error, msg string, keysAndValues ...interface{}) {
	s.e.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func (s *sink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	return &sink{e: s.e.WithFields(fields(keysAndValues))}
}

func (s *sink) WithName(name string) logr.LogSink {
	return &sink{e: s.e.WithField("logger", name)}
}

func logrusLevel(level int) logrus.Level {
	if level > 0 {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		f[key] = keysAndValues[i+1]
	}
	return f
}
