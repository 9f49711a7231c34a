// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfq provides an unbounded, lock-free multi-producer
// multi-consumer FIFO queue.
//
// # Quick Start
//
//	q := lfq.NewUnbounded[Event]()
//	q.Enqueue(ev)
//	if d := q.Dequeue(); d.Status == lfq.DequeueData {
//	    process(d.Value)
//	}
//
// # Core Queue
//
// [Unbounded] is a node-based linked queue rather than a ring buffer: it
// has no capacity limit and no back-pressure, so Enqueue always
// succeeds and never blocks. Retired nodes are recycled through an
// internal cache instead of being allocated on every Enqueue.
//
// Dequeue never returns an error. Instead it reports one of three
// outcomes through [DequeueStatus]:
//
//	DequeueEmpty - the queue was observed empty
//	DequeueSpin  - a concurrent enqueue or dequeue left the queue in a
//	               transiently inconsistent state; retry
//	DequeueData  - the caller now exclusively owns Value
//
//	d := q.Dequeue()
//	switch d.Status {
//	case lfq.DequeueData:
//	    process(d.Value)
//	case lfq.DequeueSpin:
//	    // retry immediately or after a short backoff
//	case lfq.DequeueEmpty:
//	    // nothing to do right now
//	}
//
// [Unbounded.DequeueSpin] bounds how long a caller is willing to
// spin-wait, at each point Dequeue would otherwise have to wait on a
// concurrent enqueue to finish publishing, before giving up and
// reporting DequeueSpin:
//
//	d := q.DequeueSpin(16) // spin up to 16 times per wait point
//
// [Dequeue.Data] projects a [Dequeue] value down to (T, bool), treating
// every non-DequeueData status as absent:
//
//	if v, ok := q.Dequeue().Data(); ok {
//	    process(v)
//	}
//
// Call [Unbounded.Close] once no other goroutine will use the queue
// again to release retired nodes held in the recycle cache
// deterministically, rather than waiting on the garbage collector.
//
// # Synchronized Queue
//
// [SynchronizedQueue] wraps an [Unbounded] queue to add blocking, timed,
// and asynchronous dequeue on top of the core queue's non-blocking
// primitives:
//
//	sq := lfq.NewSynchronized[Event]()
//	go func() { sq.Enqueue(ev) }()
//
//	ev := sq.Dequeue()                       // blocks until data
//	d := sq.DequeueTimeout(time.Second)       // blocks with a deadline
//	v, err := sq.DequeueAsync().Await(ctx)    // cancellation-safe wait
//
// DequeueTimeout reports an expired deadline the same way the core
// queue reports an empty queue: Dequeue{Status: DequeueEmpty}.
//
// [DequeueFuture] is the awaitable returned by DequeueAsync /
// DequeueAsyncSpin. Drive it with Poll for a custom event loop, or
// Await to block the calling goroutine while still honoring context
// cancellation:
//
//	f := sq.DequeueAsync()
//	for {
//	    if v, ready := f.Poll(); ready {
//	        process(v)
//	        break
//	    }
//	    select {
//	    case <-f.NotifyChannel():
//	    case <-ctx.Done():
//	        return ctx.Err()
//	    }
//	}
//
// # Thread Safety
//
// Enqueue and Dequeue may be called concurrently from any number of
// goroutines without external synchronization. There is no access
// pattern to violate: unlike a fixed-capacity ring buffer, this queue
// places no constraint on how many producers or consumers may call it.
//
// # Race Detection
//
// Go's race detector is not designed for lock-free algorithm
// verification. It tracks explicit synchronization primitives (mutex,
// channels, WaitGroup) but cannot observe happens-before relationships
// established purely through atomic memory orderings (the
// acquire-release publication of node.index and waker.notified). Tests
// whose correctness argument rests on that ordering check [RaceEnabled]
// and skip themselves when the race detector is active.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives
// with explicit memory ordering and [code.hybscloud.com/spin] for
// CPU pause instructions during bounded spin-waits.
package lfq
