// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package anvil wires the engine's platform pieces together: the active
// app adapter, the logic thread, and the logging configuration.
package anvil

import (
	"github.com/go-logr/logr"

	"github.com/itsManjeet/anvil/adapter"
	"github.com/itsManjeet/anvil/adapter/appledriver"
	"github.com/itsManjeet/anvil/logic"
)

// Host owns the engine's long-lived platform components. Exactly one Host
// exists per running app.
type Host struct {
	adapter adapter.AppAdapter
	logic   *logic.Thread
	log     logr.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host's logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(h *Host) { h.log = log }
}

// NewHost returns a Host owning a and l.
func NewHost(a adapter.AppAdapter, l *logic.Thread, opts ...Option) *Host {
	h := &Host{adapter: a, logic: l, log: logr.Discard()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Adapter returns the active app adapter.
func (h *Host) Adapter() adapter.AppAdapter { return h.adapter }

// Logic returns the logic thread.
func (h *Host) Logic() *logic.Thread { return h.logic }

// Logger returns the host's logger.
func (h *Host) Logger() logr.Logger { return h.log }

// AppleAdapter returns the concrete Apple adapter when one is active, and
// reports false when the host is bound to some other platform. Callers
// needing Apple-only entry points (TryRender, EnableResizeFriendlyMode) go
// through here rather than downcasting.
func (h *Host) AppleAdapter() (*appledriver.Adapter, bool) {
	a, ok := h.adapter.(*appledriver.Adapter)
	return a, ok
}
