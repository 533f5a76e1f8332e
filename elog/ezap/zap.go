// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ezap provides a zap-backed logr sink.
package ezap

import (
	"github.com/go-logr/logr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type sink struct {
	s *zap.SugaredLogger
}

var _ logr.LogSink = (*sink)(nil)

// NewLogger returns a logr.Logger writing through l. Verbosity 0 maps to
// zap's info level and everything above it to debug.
func NewLogger(l *zap.Logger) logr.Logger {
	return logr.New(&sink{s: l.Sugar()})
}

func (s *sink) Init(logr.RuntimeInfo) {}

func (s *sink) Enabled(level int) bool {
	return s.s.Desugar().Core().Enabled(zapLevel(level))
}

func (s *sink) Info(level int, msg string, keysAndValues ...interface{}) {
	if level > 0 {
		s.s.Debugw(msg, keysAndValues...)
		return
	}
	s.s.Infow(msg, keysAndValues...)
}

func (s *sink) Error(err error, msg string, keysAndValues ...interface{}) {
	s.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

func (s *sink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	return &sink{s: s.s.With(keysAndValues...)}
}

func (s *sink) WithName(name string) logr.LogSink {
	return &sink{s: s.s.Named(name)}
}

func zapLevel(level int) zapcore.Level {
	if level > 0 {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
