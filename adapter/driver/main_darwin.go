// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin
// +build darwin

package driver

import (
	"dmitri.shuralyov.com/gpu/mtl"

	"github.com/itsManjeet/anvil/adapter"
	"github.com/itsManjeet/anvil/adapter/appledriver"
)

func main(cfg Config, f func(adapter.AppAdapter)) error {
	return appledriver.Main(appledriver.ShellConfig{
		Title:           cfg.Title,
		Width:           cfg.Width,
		Height:          cfg.Height,
		FramesPerSecond: cfg.FramesPerSecond,
		NewRenderer: func(mtl.Device) (appledriver.Renderer, error) {
			return cfg.NewRenderer()
		},
		Options: cfg.Options,
	}, func(a *appledriver.Adapter) {
		f(a)
	})
}
