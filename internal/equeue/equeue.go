// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package equeue provides an infinitely buffered queue for the adapter's
// main-loop event stream.
package equeue

import "sync"

// Queue is an ordered infinite queue of events. Post never blocks waiting
// for Next, so a producer goroutine can always hand off an event and move
// on.
type Queue struct {
	cond    sync.Cond
	backlog []interface{}
	closed  bool
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{cond: sync.Cond{L: new(sync.Mutex)}}
}

// Post adds an event to the queue. Events posted after Close are dropped.
func (q *Queue) Post(event interface{}) {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	if q.closed {
		return
	}
	q.backlog = append(q.backlog, event)
	q.cond.Signal()
}

// Next returns the next event in the queue, blocking until one is
// available. Calling Next again after a closed queue has delivered its
// final event panics.
func (q *Queue) Next() interface{} {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	for len(q.backlog) == 0 {
		if q.closed {
			panic("equeue: queue closed, no more events to deliver")
		}
		q.cond.Wait()
	}

	event := q.backlog[0]
	q.backlog = q.backlog[1:]
	return event
}

// Close drops any pending events and delivers final as the last event.
func (q *Queue) Close(final interface{}) {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	if q.closed {
		return
	}
	q.backlog = append(q.backlog[:0], final)
	q.closed = true
	q.cond.Signal()
}
