// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package apptimer provides a handle-based bridge to the logic thread's
// timer table.
//
// A Timer is a weak reference plus a destruction obligation: the logic
// thread exclusively owns the underlying entry, indexed by id, while the
// handle's creator exclusively owns the handle and must eventually Stop
// it. Every operation here must run on the logic goroutine, proven by a
// logic.Token; calling from anywhere else panics.
package apptimer

import (
	"time"

	"github.com/itsManjeet/anvil/adapter"
	"github.com/itsManjeet/anvil/logic"
)

// Timer is a handle to a logic-thread timer entry.
type Timer struct {
	logic   *logic.Thread
	id      int
	stopped bool
}

// New registers a timer with the logic thread and returns its handle.
func New(t *logic.Thread, tok *logic.Token, length time.Duration, repeat bool, r adapter.Runnable) *Timer {
	return &Timer{logic: t, id: t.NewAppTimer(tok, length, repeat, r)}
}

// NewCall is the closure convenience form of New.
func NewCall(t *logic.Thread, tok *logic.Token, length time.Duration, repeat bool, f func()) *Timer {
	return New(t, tok, length, repeat, adapter.RunnableFunc(f))
}

// ID returns the underlying entry's id.
func (tm *Timer) ID() int { return tm.id }

// SetLength updates the entry in place, preserving its repeat and runnable
// binding. Resizing a stopped handle, or one whose one-shot entry already
// expired, is a precondition violation and panics.
func (tm *Timer) SetLength(tok *logic.Token, length time.Duration) {
	if tm.stopped {
		panic("apptimer: SetLength on a stopped timer")
	}
	tm.logic.SetAppTimerLength(tok, tm.id, length)
}

// Stop discharges the handle's destruction obligation, deleting the
// logic-side entry. Stopping a handle whose one-shot entry already fired
// is a no-op, and Stop itself is idempotent; once it returns on the logic
// goroutine the timer fires no more.
func (tm *Timer) Stop(tok *logic.Token) {
	if tm.stopped {
		return
	}
	tm.stopped = true
	tm.logic.DeleteAppTimer(tok, tm.id)
}
