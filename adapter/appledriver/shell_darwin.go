// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin
// +build darwin

package appledriver

import (
	"runtime"
	"time"

	"dmitri.shuralyov.com/gpu/mtl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/xerrors"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

// ShellConfig configures the native darwin shell.
type ShellConfig struct {
	Title         string
	Width, Height int

	// FramesPerSecond is the display tick rate. Zero means 60.
	FramesPerSecond int

	// NewRenderer builds the renderer collaborator against the system
	// default Metal device.
	NewRenderer func(device mtl.Device) (Renderer, error)

	// Options are applied to the Adapter in addition to the shell's own
	// wiring.
	Options []Option
}

// Main runs the darwin platform shell: it creates the window, designates
// the display-tick goroutine as the graphics thread, and drives the
// main-thread drain loop. f runs on a separate goroutine with the live
// Adapter. Main returns when the app terminates.
//
// Main must be called from the program's main goroutine.
func Main(cfg ShellConfig, f func(*Adapter)) error {
	device, err := mtl.CreateSystemDefaultDevice()
	if err != nil {
		return xerrors.Errorf("appledriver: create system default device: %w", err)
	}

	if err := glfw.Init(); err != nil {
		return xerrors.Errorf("appledriver: glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return xerrors.Errorf("appledriver: create window: %w", err)
	}
	defer win.Destroy()

	renderer, err := cfg.NewRenderer(device)
	if err != nil {
		return xerrors.Errorf("appledriver: create renderer: %w", err)
	}

	opts := append([]Option{
		WithMainThreadWaker(glfw.PostEmptyEvent),
		WithTerminateFunc(func() { win.SetShouldClose(true) }),
		WithFullscreenFunc(func(fullscreen bool) { setWindowFullscreen(win, fullscreen) }),
		WithCursorFunc(func(visible bool) { setWindowCursor(win, visible) }),
	}, cfg.Options...)
	a := New(renderer, opts...)
	a.log.Info("metal device selected", "name", device.Name, "lowPower", device.LowPower)

	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		a.EnableResizeFriendlyMode(width, height)
		a.SendEvent(size.Event{WidthPx: width, HeightPx: height})
		a.SendEvent(paint.Event{External: true})
	})

	fps := cfg.FramesPerSecond
	if fps <= 0 {
		fps = 60
	}
	quit := make(chan struct{})
	drawDone := make(chan struct{})

	// The display tick loop is the graphics thread. It is locked to its
	// own OS thread for the lifetime of the context.
	go func() {
		defer close(drawDone)
		runtime.LockOSThread()
		gc := a.AttachGraphicsContext()
		ticker := time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				// A false result means a resize is settling; the
				// next tick retries.
				a.TryRender(gc)
			}
		}
	}()

	a.SendEvent(lifecycle.Event{From: lifecycle.StageDead, To: lifecycle.StageAlive})
	go f(a)

	for !win.ShouldClose() {
		a.DrainMainThreadCalls()
		glfw.WaitEvents()
	}
	close(quit)
	<-drawDone
	return nil
}

func setWindowFullscreen(win *glfw.Window, fullscreen bool) {
	if fullscreen {
		monitor := glfw.GetPrimaryMonitor()
		mode := monitor.GetVideoMode()
		win.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
		return
	}
	win.SetMonitor(nil, 0, 0, 1024, 768, glfw.DontCare)
}

func setWindowCursor(win *glfw.Window, visible bool) {
	if visible {
		win.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
		return
	}
	win.SetInputMode(glfw.CursorMode, glfw.CursorHidden)
}
