// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command enginetick exercises the adapter's thread roles without a native
// shell: the main goroutine drains main-thread work, a dedicated goroutine
// plays the graphics thread, and the logic thread fires app timers. It
// renders into an in-memory surface and terminates itself after a second.
package main

import (
	"image"
	"image/color"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"github.com/itsManjeet/anvil"
	"github.com/itsManjeet/anvil/adapter"
	"github.com/itsManjeet/anvil/adapter/appledriver"
	"github.com/itsManjeet/anvil/apptimer"
	"github.com/itsManjeet/anvil/elog"
	"github.com/itsManjeet/anvil/elog/ezap"
	"github.com/itsManjeet/anvil/logic"
)

// softRenderer renders by filling an in-memory RGBA surface. All methods
// run on the graphics thread.
type softRenderer struct {
	surface *image.RGBA
	frames  int
}

func (r *softRenderer) Render() error {
	shade := uint8(r.frames % 256)
	src := image.NewUniform(color.RGBA{R: shade, G: 0x20, B: 0x80, A: 0xff})
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
	elog.SetDefault(log)

	renderer := &softRenderer{surface: image.NewRGBA(image.Rect(0, 0, 640, 480))}

	done := make(chan struct{})
	a := appledriver.New(renderer,
		appledriver.WithLogger(log.WithName("adapter")),
		appledriver.WithTerminateFunc(func() { close(done) }),
	)
	lt := logic.New(logic.WithLogger(log.WithName("logic")))
	host := anvil.NewHost(a, lt, anvil.WithLogger(log))

	go lt.Run()

	// Graphics thread: one display tick every ~16ms.
	quitRender := make(chan struct{})
	renderDone := make(chan struct{})
	go func() {
		defer close(renderDone)
		runtime.LockOSThread()
		apple, ok := host.AppleAdapter()
		if !ok {
			return
		}
		gc := apple.AttachGraphicsContext()
		ticker := time.NewTicker(16 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-quitRender:
				return
			case <-ticker.C:
				apple.TryRender(gc)
			}
		}
	}()

	// Logic thread: a repeating tick and a one-shot that shuts us down.
	lt.PushCall(func(tok *logic.Token) {
		var ticks int
		tick := apptimer.NewCall(lt, tok, 100*time.Millisecond, true, func() {
			ticks++
			log.Info("logic tick", "n", ticks)
		})
		apptimer.NewCall(lt, tok, time.Second, false, func() {
			tick.Stop(tok)
			a.TerminateApp()
		})
	})

	// Main thread: drain until termination.
	for {
		a.DrainMainThreadCalls()
		select {
		case <-done:
			close(quitRender)
			<-renderDone
			lt.Quit()
			log.Info("shut down", "frames", renderer.frames)
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}
