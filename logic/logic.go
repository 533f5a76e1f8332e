// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logic owns the engine's authoritative logic-thread state: the
// logic event loop and the app-timer table.
//
// All timer mutation happens on the logic goroutine, which makes timer
// operations totally ordered without a lock of their own. Affinity is
// proven by a Token rather than by runtime thread-id comparison: the loop
// hands its token to the work it executes, and every thread-restricted
// operation demands one. Calling such an operation without the right token
// is a programming error and panics.
package logic

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/itsManjeet/anvil/adapter"
	"github.com/itsManjeet/anvil/internal/runq"
)

// Token proves that its holder is executing on a Thread's loop goroutine.
// It is obtained only through PushCall; there is no way to mint one off
// the logic thread.
type Token struct {
	t *Thread
}

// Thread is the logic thread: a runnable mailbox plus the timer table,
// drained and fired by a single loop goroutine.
type Thread struct {
	log   logr.Logger
	calls *runq.Queue
	wake  chan struct{}
	quit  chan struct{}

	quitOnce sync.Once

	// Everything below is touched only by the Run goroutine.
	tok    *Token
	nextID int
	timers map[int]*appTimer
}

type appTimer struct {
	id       int
	length   time.Duration
	repeat   bool
	deadline time.Time
	runnable adapter.Runnable
}

// Option configures a Thread.
type Option func(*Thread)

// WithLogger sets the thread's logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(t *Thread) { t.log = log }
}

// New returns a Thread. Call Run on the goroutine that is to be the logic
// thread.
func New(opts ...Option) *Thread {
	t := &Thread{
		log:    logr.Discard(),
		calls:  runq.New(),
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		timers: make(map[int]*appTimer),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Push queues r for execution on the logic goroutine. Callable from any
// goroutine; never blocks waiting for execution.
func (t *Thread) Push(r adapter.Runnable) {
	t.calls.Push(r)
	t.wakeUp()
}

// PushCall queues f for execution on the logic goroutine, handing it the
// thread's affinity token.
func (t *Thread) PushCall(f func(tok *Token)) {
	t.Push(adapter.RunnableFunc(func() { f(t.tok) }))
}

func (t *Thread) wakeUp() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// InLogicThread reports whether tok proves logic-thread affinity for t.
func (t *Thread) InLogicThread(tok *Token) bool {
	return tok != nil && tok.t == t
}

func (t *Thread) checkToken(tok *Token, op string) {
	if !t.InLogicThread(tok) {
		panic("logic: " + op + " called off the logic thread")
	}
}

// NewAppTimer registers a timer firing r after length, repeating if repeat
// is set, and returns its id. Must be called on the logic goroutine.
func (t *Thread) NewAppTimer(tok *Token, length time.Duration, repeat bool, r adapter.Runnable) int {
	t.checkToken(tok, "NewAppTimer")
	t.nextID++
	id := t.nextID
	t.timers[id] = &appTimer{
		id:       id,
		length:   length,
		repeat:   repeat,
		deadline: time.Now().Add(length),
		runnable: r,
	}
	t.log.V(1).Info("app timer created", "id", id, "length", length, "repeat", repeat)
	return id
}

// SetAppTimerLength updates the timer's length in place, preserving its
// repeat and runnable binding, and reschedules it from now. Must be called
// on the logic goroutine. Resizing an expired or unknown timer is a
// precondition violation and panics.
func (t *Thread) SetAppTimerLength(tok *Token, id int, length time.Duration) {
	t.checkToken(tok, "SetAppTimerLength")
	tm, ok := t.timers[id]
	if !ok {
		panic(fmt.Sprintf("logic: SetAppTimerLength on unknown timer %d", id))
	}
	tm.length = length
	tm.deadline = time.Now().Add(length)
	t.wakeUp()
}

// DeleteAppTimer removes the timer. Must be called on the logic goroutine.
// Deleting an unknown id is a no-op: a one-shot timer deletes itself after
// firing, and its handle still owes a delete. Once DeleteAppTimer returns,
// the timer fires no more.
func (t *Thread) DeleteAppTimer(tok *Token, id int) {
	t.checkToken(tok, "DeleteAppTimer")
	delete(t.timers, id)
}

// Run executes the logic loop on the calling goroutine until Quit. Queued
// runnables drain in push order; due timers fire in deadline order, always
// on this goroutine.
func (t *Thread) Run() {
	t.tok = &Token{t: t}
	t.log.V(1).Info("logic loop started")
	for {
		t.calls.Drain()
		t.fireDueTimers()

		var timerC <-chan time.Time
		var pending *time.Timer
		if d, ok := t.nextDeadline(); ok {
			pending = time.NewTimer(d)
			timerC = pending.C
		}
		select {
		case <-t.quit:
			if pending != nil {
				pending.Stop()
			}
			t.log.V(1).Info("logic loop stopped")
			return
		case <-t.wake:
		case <-timerC:
		}
		if pending != nil {
			pending.Stop()
		}
	}
}

// Quit stops the loop. Safe to call from any goroutine, more than once.
func (t *Thread) Quit() {
	t.quitOnce.Do(func() { close(t.quit) })
}

func (t *Thread) nextDeadline() (time.Duration, bool) {
	var next time.Time
	for _, tm := range t.timers {
		if next.IsZero() || tm.deadline.Before(next) {
			next = tm.deadline
		}
	}
	if next.IsZero() {
		return 0, false
	}
	d := time.Until(next)
	if d < 0 {
		d = 0
	}
	return d, true
}

func (t *Thread) fireDueTimers() {
	now := time.Now()
	var due []int
	for id, tm := range t.timers {
		if !tm.deadline.After(now) {
			due = append(due, id)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		a, b := t.timers[due[i]], t.timers[due[j]]
		if !a.deadline.Equal(b.deadline) {
			return a.deadline.Before(b.deadline)
		}
		return a.id < b.id
	})

	for _, id := range due {
		tm, ok := t.timers[id]
		if !ok {
			// Deleted by an earlier callback in this cycle.
			continue
		}
		if tm.repeat {
			tm.deadline = now.Add(tm.length)
		} else {
			// One-shot timers self-delete before firing; a later
			// delete through their handle is then a no-op.
			delete(t.timers, id)
		}
		tm.runnable.Run()
	}
}
