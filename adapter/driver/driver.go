// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package driver provides the app adapter for the current platform.
//
// Programs that need direct access to the platform graphics device,
// such as Metal renderers, should call the platform driver's Main
// (for example appledriver.Main) instead of this package.
package driver

import (
	"github.com/itsManjeet/anvil/adapter"
	"github.com/itsManjeet/anvil/adapter/appledriver"
)

// Config configures the platform shell.
type Config struct {
	Title         string
	Width, Height int

	// FramesPerSecond is the display tick rate. Zero means the
	// platform default.
	FramesPerSecond int

	// NewRenderer builds the renderer collaborator. Renderers that
	// need the platform graphics device cannot be built through this
	// package; see the package documentation.
	NewRenderer func() (appledriver.Renderer, error)

	// Options are applied to the adapter in addition to the shell's
	// own wiring.
	Options []appledriver.Option
}

// Main runs the platform app shell and hands f the live adapter on a
// separate goroutine. Main returns when the app terminates. On
// platforms without an adapter it returns an error immediately,
// without calling f.
//
// Main must be called from the program's main goroutine.
func Main(cfg Config, f func(adapter.AppAdapter)) error {
	return main(cfg, f)
}
