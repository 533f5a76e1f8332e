// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package appledriver

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/size"

	"github.com/itsManjeet/anvil/adapter"
)

type fakeRenderer struct {
	w, h      int
	renders   int
	renderErr error
	reloaded  []adapter.GraphicsSettings
}

func (r *fakeRenderer) Render() error { r.renders++; return r.renderErr }

func (r *fakeRenderer) Reload(s *adapter.GraphicsSettings) error {
	r.reloaded = append(r.reloaded, *s)
	r.w, r.h = s.WidthPx, s.HeightPx
	return nil
}

func (r *fakeRenderer) SurfaceSize() (int, int) { return r.w, r.h }

func TestGraphicsAllowedOnlyInsideWindow(t *testing.T) {
	a := New(&fakeRenderer{w: 640, h: 480})
	gc := a.AttachGraphicsContext()

	if a.InGraphicsContext(gc) {
		t.Error("InGraphicsContext true before Allow")
	}
	gc.Allow(func() {
		if !a.InGraphicsContext(gc) {
			t.Error("InGraphicsContext false inside Allow")
		}
		// Nesting keeps the window open and restores the outer state.
		gc.Allow(func() {})
		if !a.InGraphicsContext(gc) {
			t.Error("InGraphicsContext false after nested Allow")
		}
	})
	if a.InGraphicsContext(gc) {
		t.Error("InGraphicsContext true after Allow returned")
	}
	if a.InGraphicsContext(nil) {
		t.Error("InGraphicsContext true for nil token")
	}
}

func TestAllowRestoresOnPanic(t *testing.T) {
	a := New(&fakeRenderer{w: 640, h: 480})
	gc := a.AttachGraphicsContext()

	func() {
		defer func() { recover() }()
		gc.Allow(func() { panic("render blew up") })
	}()
	if gc.Allowed() {
		t.Error("Allowed() true after panic unwound the guard")
	}
}

func TestInGraphicsContextForeignToken(t *testing.T) {
	a := New(&fakeRenderer{w: 640, h: 480})
	b := New(&fakeRenderer{w: 640, h: 480})
	gcB := b.AttachGraphicsContext()

	gcB.Allow(func() {
		if a.InGraphicsContext(gcB) {
			t.Error("InGraphicsContext accepted another adapter's token")
		}
	})
}

func TestAttachGraphicsContextTwicePanics(t *testing.T) {
	a := New(&fakeRenderer{w: 640, h: 480})
	a.AttachGraphicsContext()
	if !panics(func() { a.AttachGraphicsContext() }) {
		t.Error("second AttachGraphicsContext did not panic")
	}
}

func TestTryRenderRequiresOwnToken(t *testing.T) {
	a := New(&fakeRenderer{w: 640, h: 480})
	b := New(&fakeRenderer{w: 640, h: 480})
	gcB := b.AttachGraphicsContext()

	if !panics(func() { a.TryRender(nil) }) {
		t.Error("TryRender(nil) did not panic")
	}
	if !panics(func() { a.TryRender(gcB) }) {
		t.Error("TryRender with a foreign token did not panic")
	}
}

func TestGraphicsRunnablesRunInAllowedWindow(t *testing.T) {
	r := &fakeRenderer{w: 640, h: 480}
	a := New(r)
	gc := a.AttachGraphicsContext()

	var sawContext bool
	a.PushGraphicsContextRunnable(adapter.RunnableFunc(func() {
		sawContext = a.InGraphicsContext(gc)
	}))

	if !a.TryRender(gc) {
		t.Fatal("TryRender returned false with no resize pending")
	}
	if !sawContext {
		t.Error("queued graphics runnable ran outside the allowed window")
	}
	if r.renders != 1 {
		t.Errorf("renders=%d, want 1", r.renders)
	}
}

// Work pushed to the graphics queue while a render drain is executing must
// wait for the next drain cycle.
func TestPushDuringRenderRunsNextDrain(t *testing.T) {
	r := &fakeRenderer{w: 640, h: 480}
	a := New(r)
	gc := a.AttachGraphicsContext()

	var got []string
	a.PushGraphicsContextRunnable(adapter.RunnableFunc(func() {
		got = append(got, "first")
		a.PushGraphicsContextRunnable(adapter.RunnableFunc(func() {
			got = append(got, "second")
		}))
	}))

	a.TryRender(gc)
	if diff := cmp.Diff([]string{"first"}, got); diff != "" {
		t.Fatalf("after first TryRender (-want, +got):\n%s", diff)
	}
	a.TryRender(gc)
	if diff := cmp.Diff([]string{"first", "second"}, got); diff != "" {
		t.Errorf("after second TryRender (-want, +got):\n%s", diff)
	}
}

func TestResizeFriendlyBudget(t *testing.T) {
	const budget = 3
	r := &fakeRenderer{w: 800, h: 600}
	a := New(r, WithResizeFriendlyFrames(budget))
	gc := a.AttachGraphicsContext()

	a.EnableResizeFriendlyMode(640, 480)
	for i := 0; i < budget; i++ {
		if a.TryRender(gc) {
			t.Fatalf("TryRender %d rendered during resize budget", i)
		}
	}
	if r.renders != 0 {
		t.Fatalf("renderer invoked %d times during resize budget", r.renders)
	}

	// Budget exhausted without the surface reaching the target: the next
	// attempt renders anyway.
	if !a.TryRender(gc) {
		t.Error("TryRender false after resize budget exhausted")
	}
	if r.renders != 1 {
		t.Errorf("renders=%d, want 1", r.renders)
	}
}

func TestResizeFriendlyTargetMatch(t *testing.T) {
	r := &fakeRenderer{w: 800, h: 600}
	a := New(r)
	gc := a.AttachGraphicsContext()

	a.EnableResizeFriendlyMode(640, 480)
	if a.TryRender(gc) {
		t.Fatal("TryRender rendered against a stale surface size")
	}

	// Surface reaches the target: rendering resumes immediately.
	r.w, r.h = 640, 480
	if !a.TryRender(gc) {
		t.Error("TryRender false after surface reached the resize target")
	}
	if r.renders != 1 {
		t.Errorf("renders=%d, want 1", r.renders)
	}
}

func TestResizeFriendlyRestartsMidResize(t *testing.T) {
	const budget = 2
	r := &fakeRenderer{w: 800, h: 600}
	a := New(r, WithResizeFriendlyFrames(budget))
	gc := a.AttachGraphicsContext()

	a.EnableResizeFriendlyMode(640, 480)
	a.TryRender(gc) // consumes one frame

	// A second resize notification restarts the budget against the new
	// target.
	a.EnableResizeFriendlyMode(320, 240)
	for i := 0; i < budget; i++ {
		if a.TryRender(gc) {
			t.Fatalf("TryRender %d rendered after budget restart", i)
		}
	}
	if r.renders != 0 {
		t.Errorf("renderer invoked %d times, want 0", r.renders)
	}
}

func TestRenderFailureReturnsFalse(t *testing.T) {
	r := &fakeRenderer{w: 640, h: 480, renderErr: errors.New("device lost")}
	a := New(r)
	gc := a.AttachGraphicsContext()

	if a.TryRender(gc) {
		t.Error("TryRender true despite renderer failure")
	}
}

func TestApplyGraphicsSettingsOffThreadQueues(t *testing.T) {
	r := &fakeRenderer{w: 800, h: 600}
	a := New(r)
	gc := a.AttachGraphicsContext()

	s := &adapter.GraphicsSettings{WidthPx: 1024, HeightPx: 768, VSync: true}
	a.ApplyGraphicsSettings(nil, s)
	if len(r.reloaded) != 0 {
		t.Fatal("settings applied outside a graphics-allowed window")
	}

	a.TryRender(gc)
	if diff := cmp.Diff([]adapter.GraphicsSettings{*s}, r.reloaded); diff != "" {
		t.Errorf("reloaded settings mismatch (-want, +got):\n%s", diff)
	}

	// The reload publishes the new surface size to the main loop.
	ev := a.NextEvent()
	want := size.Event{WidthPx: 1024, HeightPx: 768}
	if diff := cmp.Diff(want, ev); diff != "" {
		t.Errorf("size event mismatch (-want, +got):\n%s", diff)
	}
}

func TestApplyGraphicsSettingsInContext(t *testing.T) {
	r := &fakeRenderer{w: 800, h: 600}
	a := New(r)
	gc := a.AttachGraphicsContext()

	s := &adapter.GraphicsSettings{WidthPx: 640, HeightPx: 480}
	gc.Allow(func() {
		a.ApplyGraphicsSettings(gc, s)
	})
	if len(r.reloaded) != 1 {
		t.Errorf("reloads=%d, want 1 (synchronous in graphics context)", len(r.reloaded))
	}
}

func TestTerminateApp(t *testing.T) {
	var hookRuns int
	r := &fakeRenderer{w: 640, h: 480}
	a := New(r, WithTerminateFunc(func() { hookRuns++ }))

	a.TerminateApp()
	a.TerminateApp() // idempotent

	a.DrainMainThreadCalls()
	if hookRuns != 1 {
		t.Errorf("terminate hook ran %d times, want 1", hookRuns)
	}

	ev := a.NextEvent()
	le, ok := ev.(lifecycle.Event)
	if !ok || le.To != lifecycle.StageDead {
		t.Errorf("final event = %#v, want dead lifecycle event", ev)
	}

	// Pushes after shutdown queue silently; nothing crashes.
	a.PushMainThreadRunnable(adapter.RunnableFunc(func() {}))
	a.SendEvent(size.Event{WidthPx: 1, HeightPx: 1})
}

func TestTracerRecordsRenderSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	r := &fakeRenderer{w: 800, h: 600}
	a := New(r, WithTracer(tp.Tracer("appledriver")))
	gc := a.AttachGraphicsContext()

	a.EnableResizeFriendlyMode(640, 480)
	a.TryRender(gc) // suppressed: no span
	r.w, r.h = 640, 480
	a.TryRender(gc) // real render: one span

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	if got, want := spans[0].Name(), "appledriver.render"; got != want {
		t.Errorf("span name %q, want %q", got, want)
	}
}

func TestCursorAndFullscreenHooksRunOnMainThread(t *testing.T) {
	var cursor, fullscreen []bool
	a := New(&fakeRenderer{w: 640, h: 480},
		WithCursorFunc(func(v bool) { cursor = append(cursor, v) }),
		WithFullscreenFunc(func(v bool) { fullscreen = append(fullscreen, v) }),
	)

	a.SetHardwareCursorVisible(false)
	a.FullscreenControlSet(true)

	if len(cursor) != 0 || len(fullscreen) != 0 {
		t.Fatal("hooks ran before the main-thread drain")
	}
	a.DrainMainThreadCalls()

	if diff := cmp.Diff([]bool{false}, cursor); diff != "" {
		t.Errorf("cursor hook calls (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{true}, fullscreen); diff != "" {
		t.Errorf("fullscreen hook calls (-want, +got):\n%s", diff)
	}
	if a.HardwareCursorVisible() {
		t.Error("HardwareCursorVisible() true after hiding")
	}
	if !a.FullscreenControlGet() {
		t.Error("FullscreenControlGet() false after enabling")
	}
}

func panics(f func()) (res bool) {
	defer func() {
		if e := recover(); e != nil {
			res = true
		}
	}()
	f()
	return false
}
