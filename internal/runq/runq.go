// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runq provides the mutex-guarded runnable mailbox used to move
// deferred work between thread roles.
package runq

import (
	"sync"

	"github.com/itsManjeet/anvil/adapter"
)

// Queue is an ordered mailbox of pending runnables. Pushes may come from
// any goroutine; Drain is called only by the destination thread's own loop.
type Queue struct {
	mu      sync.Mutex
	pending []adapter.Runnable
}

// New returns an empty queue.
func New() *Queue { return &Queue{} }

// Push appends r to the backlog. It returns immediately and never blocks
// waiting for execution; queuing always succeeds.
func (q *Queue) Push(r adapter.Runnable) {
	q.mu.Lock()
	q.pending = append(q.pending, r)
	q.mu.Unlock()
}

// Drain swaps out the entire backlog as of one observation point, then runs
// each runnable in push order. Execution happens outside the lock, so a
// runnable may push more work onto q without deadlocking; such work lands
// in the next drain cycle. Drain returns the number of runnables executed.
func (q *Queue) Drain() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, r := range batch {
		r.Run()
	}
	return len(batch)
}

// Len reports the current backlog size.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
