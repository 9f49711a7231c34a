// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import "context"

// dequeueFutureState tracks whether a DequeueFuture has registered a
// waker on its queue's wakeQueue yet.
type dequeueFutureState int

const (
	dequeueFutureInitial dequeueFutureState = iota
	dequeueFutureRegistered
)

// DequeueFuture is an awaitable, cancellation-safe view over an
// asynchronous dequeue on a [SynchronizedQueue]. It is a poll-based
// state machine with two states — Initial (no waker registered) and
// Registered (a waker is parked on the queue's wakeQueue) — driven
// explicitly by the caller via Poll or Await rather than by a runtime
// scheduler.
//
// A DequeueFuture may be dropped after a cancelled Await: Await aborts
// the registered waker before returning ctx's error, so the next
// producer's EnqueueNotifySpin sees its wake return false and moves on
// to the next waker. A future dropped after Poll registered a waker,
// without a cancelled Await, leaves that waker on wakeQueue un-aborted:
// the next producer's wake succeeds on it (the channel is buffered, so
// the send never blocks) and EnqueueNotifySpin stops there without
// waking another waiting consumer.
type DequeueFuture[T any] struct {
	queue *SynchronizedQueue[T]
	spin  int
	state dequeueFutureState
	waker *waker
}

// Poll attempts to make progress without blocking. ready reports
// whether value is valid. The first call that does not immediately
// find data registers a waker; callers driving their own event loop
// should wait on NotifyChannel before calling Poll again.
func (f *DequeueFuture[T]) Poll() (value T, ready bool) {
	if d := f.queue.TryDequeueSpin(f.spin); d.Status == DequeueData {
		if f.waker != nil {
			f.waker.abort()
			f.waker = nil
		}
		v, _ := d.Data()
		return v, true
	}

	if f.state == dequeueFutureInitial {
		f.waker = newWaker(wakerAsync)
		f.queue.wakeQueue.Enqueue(f.waker)
		f.state = dequeueFutureRegistered

		if d := f.queue.TryDequeueSpin(f.spin); d.Status == DequeueData {
			f.waker.abort()
			f.waker = nil
			v, _ := d.Data()
			return v, true
		}
	}

	var zero T
	return zero, false
}

// NotifyChannel returns the channel that receives once this future's
// registered waker is woken by a producer, or nil if Poll has not yet
// registered one. It is meant to be used in a select alongside
// ctx.Done() by callers that want Await's cancellation behavior without
// its blocking loop.
func (f *DequeueFuture[T]) NotifyChannel() <-chan struct{} {
	if f.waker == nil {
		return nil
	}
	return f.waker.ch
}

// Await drives the future to completion, returning ctx's error if ctx
// is done before a value arrives. On cancellation the registered waker
// is aborted and the future returns to its Initial state, so dropping
// it afterwards is safe — see the DequeueFuture doc comment.
func (f *DequeueFuture[T]) Await(ctx context.Context) (T, error) {
	for {
		if v, ready := f.Poll(); ready {
			return v, nil
		}
		select {
		case <-f.NotifyChannel():
		case <-ctx.Done():
			if f.waker != nil {
				f.waker.abort()
				f.waker = nil
				f.state = dequeueFutureInitial
			}
			var zero T
			return zero, ctx.Err()
		}
	}
}
