// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package elog carries the engine's logging configuration. The engine logs
// through logr.Logger; the subpackages adapt common logging backends (zap,
// zerolog, logrus, go-kit log) to it.
package elog

import (
	"sync"

	"github.com/go-logr/logr"
)

var (
	mu  sync.Mutex
	def = logr.Discard()
)

// SetDefault sets the default Logger for code that was not handed one
// explicitly.
func SetDefault(l logr.Logger) {
	mu.Lock()
	defer mu.Unlock()
	def = l
}

// Default returns the default Logger. Until SetDefault is called it
// discards everything.
func Default() logr.Logger {
	mu.Lock()
	defer mu.Unlock()
	return def
}
