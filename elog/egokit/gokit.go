// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package egokit provides a go-kit log backed logr sink.
package egokit

import (
	"github.com/go-kit/kit/log"
	"github.com/go-logr/logr"
)

type sink struct {
	l    log.Logger
	name string
}

var _ logr.LogSink = (*sink)(nil)

// NewLogger returns a logr.Logger writing through l. Messages carry "msg",
// "level" and, when named, "logger" keys in go-kit's flat keyval style.
func NewLogger(l log.Logger) logr.Logger {
	return logr.New(&sink{l: l})
}

func (s *sink) Init(logr.RuntimeInfo) {}

func (s *sink) Enabled(int) bool { return true }

func (s *sink) Info(level int, msg string, keysAndValues ...interface{}) {
	lvl := "info"
	if level > 0 {
		lvl = "debug"
	}
	s.log(append([]interface{}{"level", lvl, "msg", msg}, keysAndValues...))
}

func (s *sink) Error(err error, msg string, keysAndValues ...interface{}) {
	s.log(append([]interface{}{"level", "error", "msg", msg, "err", err}, keysAndValues...))
}

func (s *sink) log(keyvals []interface{}) {
	if s.name != "" {
		keyvals = append(keyvals, "logger", s.name)
	}
	_ = s.l.Log(keyvals...)
}

func (s *sink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	return &sink{l: log.With(s.l, keysAndValues...), name: s.name}
}

func (s *sink) WithName(name string) logr.LogSink {
	if s.name != "" {
		name = s.name + "/" + name
	}
	return &sink{l: s.l, name: name}
}
