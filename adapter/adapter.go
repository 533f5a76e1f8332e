// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package adapter defines the contract between the engine and a platform
// application binding: deferred cross-thread work, the graphics-context
// capability, and the capability set every platform adapter implements.
//
// The engine runs three designated thread roles. The main thread is owned
// by the host platform and drains the adapter's main-thread queue. The
// graphics thread owns the live rendering context. The logic thread owns
// authoritative game and timer state (see the logic package). Work crosses
// these boundaries only through runnable queues; nothing here blocks the
// caller.
package adapter

// Runnable is a deferred, single-invocation unit of work. A Runnable is
// owned by the queue it was pushed to until it is dequeued; the destination
// thread then runs it exactly once.
type Runnable interface {
	Run()
}

// RunnableFunc adapts an ordinary function to the Runnable interface.
type RunnableFunc func()

// Run calls f.
func (f RunnableFunc) Run() { f() }

// GraphicsContext is a capability proving that its holder is executing on
// an adapter's graphics thread. A token is handed out once per adapter, on
// the graphics thread itself, and is not meaningful on any other goroutine.
type GraphicsContext interface {
	// Allowed reports whether the graphics context is currently valid and
	// safely callable, i.e. whether the holder is inside a scoped allow
	// window opened on the graphics thread.
	Allowed() bool
}

// GraphicsSettings is the settings object applied through
// AppAdapter.ApplyGraphicsSettings.
type GraphicsSettings struct {
	WidthPx    int
	HeightPx   int
	PixelScale float32
	VSync      bool
	MaxFPS     int
}

// AppAdapter is the capability set a platform binding implements.
//
// Operations annotated with a GraphicsContext argument accept the caller's
// token when it has one; callers off the graphics thread pass nil. Calling
// a graphics-context-only operation without a valid token queues the work
// instead of corrupting state.
type AppAdapter interface {
	// PushMainThreadRunnable queues r for execution on the main thread.
	// Callable from any goroutine; never blocks waiting for execution.
	PushMainThreadRunnable(r Runnable)

	// PushGraphicsContextRunnable queues r for execution on the graphics
	// thread, inside a graphics-allowed window. Callable from any
	// goroutine; never blocks waiting for execution.
	PushGraphicsContextRunnable(r Runnable)

	// InGraphicsContext reports whether gc proves that the caller may
	// issue graphics-context calls right now.
	InGraphicsContext(gc GraphicsContext) bool

	// ApplyGraphicsSettings applies s. It runs immediately when called in
	// graphics context and is queued onto the graphics thread otherwise.
	ApplyGraphicsSettings(gc GraphicsContext, s *GraphicsSettings)

	// ManagesMainThreadEventLoop reports whether the adapter, rather than
	// the native shell, drives the main-thread event loop.
	ManagesMainThreadEventLoop() bool

	FullscreenControlAvailable() bool
	FullscreenControlGet() bool
	FullscreenControlSet(fullscreen bool)

	// FullscreenControlKeyShortcut returns the shortcut the platform binds
	// to fullscreen toggling, if it has one.
	FullscreenControlKeyShortcut() (string, bool)

	HasDirectKeyboardInput() bool

	ShouldUseCursor() bool
	HasHardwareCursor() bool
	SetHardwareCursorVisible(visible bool)

	// TerminateApp requests app termination. Work pushed after termination
	// begins still queues silently but is never drained.
	TerminateApp()
}
