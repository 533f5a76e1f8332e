// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package appledriver provides the Apple platform binding of the engine's
// app-adapter contract.
//
// The native shell owns the main-thread event loop and the display tick.
// On each tick it calls TryRender from the graphics thread and
// DrainMainThreadCalls from the main thread; on window-resize
// notifications it calls EnableResizeFriendlyMode. The Adapter enforces
// thread affinity and context gating in between: work destined for another
// thread role goes through a runnable queue, and graphics-context calls are
// only issued inside a scoped allow window on the graphics thread.
//
// The renderer itself is a collaborator supplied by the caller; the driver
// only decides when a render pass may run.
package appledriver

import (
	"context"
	"image"
	"sync"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/size"

	"github.com/itsManjeet/anvil/adapter"
	"github.com/itsManjeet/anvil/internal/equeue"
	"github.com/itsManjeet/anvil/internal/runq"
)

// defaultResizeFriendlyFrames is the render budget consumed while a window
// resize settles. Overridable with WithResizeFriendlyFrames.
const defaultResizeFriendlyFrames = 5

// Renderer is the graphics collaborator. All three methods are invoked only
// on the graphics thread, inside a graphics-allowed window.
type Renderer interface {
	// Render performs one render pass.
	Render() error

	// Reload rebuilds renderer state against new graphics settings.
	Reload(s *adapter.GraphicsSettings) error

	// SurfaceSize returns the current drawable surface size in pixels.
	SurfaceSize() (width, height int)
}

// Adapter is the Apple app adapter. Create one with New and designate the
// graphics thread with AttachGraphicsContext before the first TryRender.
type Adapter struct {
	log    logr.Logger
	tracer trace.Tracer

	renderer Renderer

	mainCalls *runq.Queue
	gfxCalls  *runq.Queue
	events    *equeue.Queue

	wakeMain      func()
	terminateFunc func()
	setFullscreen func(bool)
	setCursor     func(bool)

	attachOnce sync.Once

	resizeMu          sync.Mutex
	resizeFrameBudget int
	resizeFramesLeft  int
	resizeTarget      image.Point // (-1, -1) while unset

	stateMu       sync.Mutex
	fullscreen    bool
	cursorVisible bool
	terminating   bool
}

var _ adapter.AppAdapter = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter's logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(a *Adapter) { a.log = log }
}

// WithTracer enables a span per real render pass.
func WithTracer(t trace.Tracer) Option {
	return func(a *Adapter) { a.tracer = t }
}

// WithMainThreadWaker sets the hook used to wake the native main-thread
// loop after a push, e.g. glfw.PostEmptyEvent.
func WithMainThreadWaker(wake func()) Option {
	return func(a *Adapter) { a.wakeMain = wake }
}

// WithTerminateFunc sets the hook run on the main thread when termination
// has been requested.
func WithTerminateFunc(f func()) Option {
	return func(a *Adapter) { a.terminateFunc = f }
}

// WithFullscreenFunc sets the hook run on the main thread to apply a
// fullscreen change to the native window.
func WithFullscreenFunc(f func(fullscreen bool)) Option {
	return func(a *Adapter) { a.setFullscreen = f }
}

// WithCursorFunc sets the hook run on the main thread to show or hide the
// hardware cursor.
func WithCursorFunc(f func(visible bool)) Option {
	return func(a *Adapter) { a.setCursor = f }
}

// WithResizeFriendlyFrames overrides the resize-friendly frame budget.
func WithResizeFriendlyFrames(n int) Option {
	return func(a *Adapter) { a.resizeFrameBudget = n }
}

// New returns an Adapter rendering through r.
func New(r Renderer, opts ...Option) *Adapter {
	a := &Adapter{
		log:               logr.Discard(),
		renderer:          r,
		mainCalls:         runq.New(),
		gfxCalls:          runq.New(),
		events:            equeue.New(),
		resizeFrameBudget: defaultResizeFriendlyFrames,
		resizeTarget:      image.Point{X: -1, Y: -1},
		cursorVisible:     true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GraphicsContext proves that its holder is running on the adapter's
// graphics thread. It is valid only on the goroutine that called
// AttachGraphicsContext; handing it to another goroutine is a programming
// error.
type GraphicsContext struct {
	a       *Adapter
	allowed bool
}

// AttachGraphicsContext designates the calling goroutine as the graphics
// thread and returns its capability token. Call it exactly once per
// adapter, from a goroutine locked to its OS thread with
// runtime.LockOSThread. Attaching twice panics: there is exactly one
// graphics thread per running adapter.
func (a *Adapter) AttachGraphicsContext() *GraphicsContext {
	var gc *GraphicsContext
	a.attachOnce.Do(func() { gc = &GraphicsContext{a: a} })
	if gc == nil {
		panic("appledriver: graphics context attached twice")
	}
	a.log.V(1).Info("graphics thread attached")
	return gc
}

// Allow marks the graphics context as callable for the duration of f and
// restores the prior state on every exit path, including panics. Graphics
// calls are only valid inside the window this opens.
func (gc *GraphicsContext) Allow(f func()) {
	prev := gc.allowed
	gc.allowed = true
	defer func() { gc.allowed = prev }()
	f()
}

// Allowed reports whether gc is currently inside an Allow window.
func (gc *GraphicsContext) Allowed() bool {
	return gc != nil && gc.allowed
}

// PushMainThreadRunnable implements adapter.AppAdapter.
func (a *Adapter) PushMainThreadRunnable(r adapter.Runnable) {
	a.mainCalls.Push(r)
	if a.wakeMain != nil {
		a.wakeMain()
	}
}

// PushGraphicsContextRunnable implements adapter.AppAdapter. The runnable
// executes during the next TryRender, inside its graphics-allowed window.
func (a *Adapter) PushGraphicsContextRunnable(r adapter.Runnable) {
	a.gfxCalls.Push(r)
}

// InGraphicsContext implements adapter.AppAdapter.
func (a *Adapter) InGraphicsContext(gc adapter.GraphicsContext) bool {
	t, ok := gc.(*GraphicsContext)
	return ok && t != nil && t.a == a && t.allowed
}

// DrainMainThreadCalls executes pending main-thread work. The native shell
// calls it from the main thread, once per loop iteration. It returns the
// number of runnables executed.
func (a *Adapter) DrainMainThreadCalls() int {
	return a.mainCalls.Drain()
}

// TryRender runs one display tick's worth of graphics work: queued
// graphics-context runnables first, then a render pass unless
// resize-friendly mode suppresses it. It must be called from the graphics
// thread, with the token returned by AttachGraphicsContext. TryRender
// reports whether a real render pass ran; a false return during a resize
// means the caller should simply try again next tick.
func (a *Adapter) TryRender(gc *GraphicsContext) bool {
	if gc == nil || gc.a != a {
		panic("appledriver: TryRender without this adapter's graphics context")
	}

	rendered := false
	gc.Allow(func() {
		a.gfxCalls.Drain()

		if a.skipForResize() {
			return
		}

		if a.tracer != nil {
			_, span := a.tracer.Start(context.Background(), "appledriver.render")
			defer span.End()
		}
		if err := a.renderer.Render(); err != nil {
			a.log.Error(err, "render pass failed")
			return
		}
		rendered = true
	})
	return rendered
}

// EnableResizeFriendlyMode suppresses real renders for a small number of
// frames while a window resize settles, so partially-resized frames never
// flash on screen. The main thread calls it from the platform's resize
// notification. Calling it again mid-resize restarts the budget against
// the new target.
func (a *Adapter) EnableResizeFriendlyMode(width, height int) {
	a.resizeMu.Lock()
	a.resizeTarget = image.Point{X: width, Y: height}
	a.resizeFramesLeft = a.resizeFrameBudget
	a.resizeMu.Unlock()
	a.log.V(1).Info("resize-friendly mode", "width", width, "height", height)
}

// skipForResize reports whether the current render attempt should be
// suppressed, consuming one frame of the resize budget if so. The surface
// size is read before taking the lock; the renderer is never called with a
// driver lock held.
func (a *Adapter) skipForResize() bool {
	w, h := a.renderer.SurfaceSize()

	a.resizeMu.Lock()
	defer a.resizeMu.Unlock()
	if a.resizeFramesLeft == 0 {
		return false
	}
	if w == a.resizeTarget.X && h == a.resizeTarget.Y {
		a.clearResizeLocked()
		return false
	}
	a.resizeFramesLeft--
	if a.resizeFramesLeft == 0 {
		a.clearResizeLocked()
	}
	return true
}

func (a *Adapter) clearResizeLocked() {
	a.resizeFramesLeft = 0
	a.resizeTarget = image.Point{X: -1, Y: -1}
}

// ApplyGraphicsSettings implements adapter.AppAdapter. Renderer reload and
// screen-size updates run strictly inside a graphics-allowed window: when
// the caller is already in graphics context they run synchronously,
// otherwise they are queued onto the graphics thread.
func (a *Adapter) ApplyGraphicsSettings(gc adapter.GraphicsContext, s *adapter.GraphicsSettings) {
	if a.InGraphicsContext(gc) {
		a.reloadRenderer(s)
		a.updateScreenSizes()
		return
	}
	a.PushGraphicsContextRunnable(adapter.RunnableFunc(func() {
		a.reloadRenderer(s)
		a.updateScreenSizes()
	}))
}

func (a *Adapter) reloadRenderer(s *adapter.GraphicsSettings) {
	if err := a.renderer.Reload(s); err != nil {
		a.log.Error(err, "renderer reload failed")
		return
	}
	a.log.V(1).Info("graphics settings applied",
		"width", s.WidthPx, "height", s.HeightPx, "vsync", s.VSync)
}

func (a *Adapter) updateScreenSizes() {
	w, h := a.renderer.SurfaceSize()
	a.events.Post(size.Event{WidthPx: w, HeightPx: h})
}

// SendEvent delivers an event to the main-loop event stream.
func (a *Adapter) SendEvent(event interface{}) {
	a.events.Post(event)
	if a.wakeMain != nil {
		a.wakeMain()
	}
}

// NextEvent returns the next main-loop event, blocking until one is
// available. After termination the final event is a lifecycle.Event with
// To == lifecycle.StageDead; reading past it panics.
func (a *Adapter) NextEvent() interface{} {
	return a.events.Next()
}

// ManagesMainThreadEventLoop implements adapter.AppAdapter. The native
// shell owns the main loop on Apple platforms.
func (a *Adapter) ManagesMainThreadEventLoop() bool { return false }

// HasDirectKeyboardInput implements adapter.AppAdapter.
func (a *Adapter) HasDirectKeyboardInput() bool { return true }

// ShouldUseCursor implements adapter.AppAdapter.
func (a *Adapter) ShouldUseCursor() bool { return true }

// HasHardwareCursor implements adapter.AppAdapter.
func (a *Adapter) HasHardwareCursor() bool { return true }

// SetHardwareCursorVisible implements adapter.AppAdapter. The native hook
// runs on the main thread.
func (a *Adapter) SetHardwareCursorVisible(visible bool) {
	a.stateMu.Lock()
	a.cursorVisible = visible
	hook := a.setCursor
	a.stateMu.Unlock()

	if hook != nil {
		a.PushMainThreadRunnable(adapter.RunnableFunc(func() { hook(visible) }))
	}
}

// HardwareCursorVisible reports the last requested cursor visibility.
func (a *Adapter) HardwareCursorVisible() bool {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.cursorVisible
}

// FullscreenControlAvailable implements adapter.AppAdapter.
func (a *Adapter) FullscreenControlAvailable() bool { return true }

// FullscreenControlGet implements adapter.AppAdapter.
func (a *Adapter) FullscreenControlGet() bool {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.fullscreen
}

// FullscreenControlSet implements adapter.AppAdapter. The native hook runs
// on the main thread.
func (a *Adapter) FullscreenControlSet(fullscreen bool) {
	a.stateMu.Lock()
	a.fullscreen = fullscreen
	hook := a.setFullscreen
	a.stateMu.Unlock()

	if hook != nil {
		a.PushMainThreadRunnable(adapter.RunnableFunc(func() { hook(fullscreen) }))
	}
}

// FullscreenControlKeyShortcut implements adapter.AppAdapter.
func (a *Adapter) FullscreenControlKeyShortcut() (string, bool) {
	return "Cmd+F", true
}

// TerminateApp implements adapter.AppAdapter. It is idempotent. The event
// stream closes with a dead lifecycle event, and the terminate hook is
// queued onto the main thread. Runnables pushed after this still enqueue
// but are never drained; the process is on its way out.
func (a *Adapter) TerminateApp() {
	a.stateMu.Lock()
	if a.terminating {
		a.stateMu.Unlock()
		return
	}
	a.terminating = true
	hook := a.terminateFunc
	a.stateMu.Unlock()

	a.log.Info("app termination requested")
	a.events.Close(lifecycle.Event{From: lifecycle.StageAlive, To: lifecycle.StageDead})
	if hook != nil {
		a.PushMainThreadRunnable(adapter.RunnableFunc(hook))
	}
}
