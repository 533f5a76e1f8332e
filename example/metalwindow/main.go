// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin
// +build darwin

// Command metalwindow runs the native darwin shell: a GLFW window backed
// by the system Metal device, with the logic thread driving a heartbeat
// timer and the shell driving display ticks.
package main

import (
	"image"
	"image/color"
	"os"
	"time"

	"dmitri.shuralyov.com/gpu/mtl"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"github.com/itsManjeet/anvil/adapter"
	"github.com/itsManjeet/anvil/adapter/appledriver"
	"github.com/itsManjeet/anvil/apptimer"
	"github.com/itsManjeet/anvil/elog/ezap"
	"github.com/itsManjeet/anvil/logic"
)

type softRenderer struct {
	surface *image.RGBA
	frames  int
}

func (r *softRenderer) Render() error {
	shade := uint8(r.frames % 256)
	src := image.NewUniform(color.RGBA{R: 0x20, G: shade, B: 0x80, A: 0xff})
	xdraw.Draw(r.surface, r.surface.Bounds(), src, image.Point{}, xdraw.Src)
	r.frames++
	return nil
}

func (r *softRenderer) Reload(s *adapter.GraphicsSettings) error {
	r.surface = image.NewRGBA(image.Rect(0, 0, s.WidthPx, s.HeightPx))
	return nil
}

func (r *softRenderer) SurfaceSize() (int, int) {
	b := r.surface.Bounds()
	return b.Dx(), b.Dy()
}

func main() {
	zl, err := zap.NewDevelopment()
	if err != nil {
		os.Exit(1)
	}
	defer zl.Sync()
	log := ezap.NewLogger(zl)

	lt := logic.New(logic.WithLogger(log.WithName("logic")))
	go lt.Run()
	defer lt.Quit()

	cfg := appledriver.ShellConfig{
		Title:  "anvil",
		Width:  1024,
		Height: 768,
		NewRenderer: func(device mtl.Device) (appledriver.Renderer, error) {
			return &softRenderer{surface: image.NewRGBA(image.Rect(0, 0, 1024, 768))}, nil
		},
		Options: []appledriver.Option{appledriver.WithLogger(log.WithName("adapter"))},
	}
	err = appledriver.Main(cfg, func(a *appledriver.Adapter) {
		lt.PushCall(func(tok *logic.Token) {
			apptimer.NewCall(lt, tok, time.Second, true, func() {
				log.Info("heartbeat")
			})
		})
		// Quit after ten seconds of heartbeats.
		lt.PushCall(func(tok *logic.Token) {
			apptimer.NewCall(lt, tok, 10*time.Second, false, a.TerminateApp)
		})
	})
	if err != nil {
		log.Error(err, "shell failed")
		os.Exit(1)
	}
}
