// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"time"

	"code.hybscloud.com/atomix"
)

// wakerKind distinguishes what a waker's notification channel is being
// waited on by: a goroutine blocked on dequeueSync, or a DequeueFuture
// driven by Poll/Await. Both kinds notify through the same buffered
// channel; the kind only changes what abort does on a lost race (see
// waker.abort).
type wakerKind int

const (
	wakerBlocking wakerKind = iota
	wakerAsync
)

// waker is a single-shot notification handle parked on a
// SynchronizedQueue's wake_queue. notified is a latch: exactly one of
// wake or abort performs the corresponding side effect, the other
// observes it already happened.
type waker struct {
	kind     wakerKind
	notified atomix.Bool
	ch       chan struct{}
}

func newWaker(kind wakerKind) *waker {
	return &waker{kind: kind, ch: make(chan struct{}, 1)}
}

// swapNotified sets notified to true and reports whether it was already
// true. notified only ever transitions false->true, so a single
// compare-and-swap attempt from false is enough to implement a swap.
func (w *waker) swapNotified() (was bool) {
	if w.notified.CompareAndSwapAcqRel(false, true) {
		return false
	}
	return true
}

// wake delivers the notification if it has not already fired. Returns
// true iff this call was the one that transitioned the latch.
func (w *waker) wake() bool {
	if w.swapNotified() {
		return false
	}
	select {
	case w.ch <- struct{}{}:
	default:
	}
	return true
}

// abort retracts a waker that is no longer needed (its owner got a
// value on some other path). If wake() had already raced ahead and
// fired, the notification is sitting unread on ch; for a blocking
// waker, abort absorbs it here so a later park doesn't mistake it for a
// fresh wakeup. Async wakers have no parked goroutine to protect and
// need not absorb anything.
func (w *waker) abort() {
	if w.swapNotified() && w.kind == wakerBlocking {
		<-w.ch
	}
}

// SynchronizedQueue wraps an [Unbounded] queue and a second Unbounded
// queue of wakers to provide blocking, timed, and asynchronous dequeue
// on top of the core queue's non-blocking primitives.
//
// Enqueue pops wakers from wakeQueue until one of them is woken, so it
// wakes at most one; dequeueSync always registers a waker before
// re-checking the queue, and aborts that waker when it stops waiting
// on it without having been woken.
// That "enqueue waker, then re-check" paired with "enqueue value, then
// wake one waker" ordering ensures no lost wakeup: either the consumer
// observes the value on its re-check, or the producer observes the
// waker it registered.
type SynchronizedQueue[T any] struct {
	inner     *Unbounded[T]
	wakeQueue *Unbounded[*waker]
}

// NewSynchronized creates an empty synchronized queue.
func NewSynchronized[T any]() *SynchronizedQueue[T] {
	return &SynchronizedQueue[T]{
		inner:     NewUnbounded[T](),
		wakeQueue: NewUnbounded[*waker](),
	}
}

// EnqueueNotifySpin enqueues v, then pops wakers from the internal wake
// queue (with spin budget spin per pop) and wakes each one until one of
// them returns true. Wakers that already fired on some other path
// (e.g. a consumer that got its value on dequeueSync's fast path and
// called abort) return false from wake, so EnqueueNotifySpin skips past
// them rather than stopping at the first one popped.
func (q *SynchronizedQueue[T]) EnqueueNotifySpin(v T, spin int) {
	q.inner.Enqueue(v)
	for {
		d := q.wakeQueue.DequeueSpin(spin)
		w, ok := d.Data()
		if !ok {
			return
		}
		if w.wake() {
			return
		}
	}
}

// Enqueue is EnqueueNotifySpin(v, 0).
func (q *SynchronizedQueue[T]) Enqueue(v T) {
	q.EnqueueNotifySpin(v, 0)
}

// TryDequeueSpin is a non-blocking dequeue; it never parks.
func (q *SynchronizedQueue[T]) TryDequeueSpin(spin int) Dequeue[T] {
	return q.inner.DequeueSpin(spin)
}

// TryDequeue is TryDequeueSpin(0).
func (q *SynchronizedQueue[T]) TryDequeue() Dequeue[T] {
	return q.TryDequeueSpin(0)
}

// dequeueSync implements the double-check park pattern shared by
// DequeueSpin and DequeueTimeoutSpin. deadline is nil for an untimed
// wait.
func (q *SynchronizedQueue[T]) dequeueSync(spin int, deadline *time.Time) Dequeue[T] {
	for {
		if d := q.TryDequeueSpin(spin); d.Status == DequeueData {
			return d
		}

		w := newWaker(wakerBlocking)
		q.wakeQueue.Enqueue(w)

		if d := q.TryDequeueSpin(spin); d.Status == DequeueData {
			w.abort()
			return d
		}

		if deadline == nil {
			<-w.ch
			continue
		}

		remaining := time.Until(*deadline)
		if remaining <= 0 {
			w.abort()
			return q.TryDequeueSpin(spin)
		}
		timer := time.NewTimer(remaining)
		select {
		case <-w.ch:
			timer.Stop()
		case <-timer.C:
			w.abort()
		}
		if !time.Now().Before(*deadline) {
			return q.TryDequeueSpin(spin)
		}
	}
}

// DequeueSpin blocks until a value is available, spinning up to spin
// times at each of DequeueSpin's internal wait points before parking.
func (q *SynchronizedQueue[T]) DequeueSpin(spin int) T {
	v, _ := q.dequeueSync(spin, nil).Data()
	return v
}

// Dequeue is DequeueSpin(0).
func (q *SynchronizedQueue[T]) Dequeue() T {
	return q.DequeueSpin(0)
}

// DequeueTimeoutSpin blocks until a value is available or timeout
// elapses, whichever comes first. A timeout is reported as
// Dequeue{Status: DequeueEmpty}.
func (q *SynchronizedQueue[T]) DequeueTimeoutSpin(timeout time.Duration, spin int) Dequeue[T] {
	deadline := time.Now().Add(timeout)
	return q.dequeueSync(spin, &deadline)
}

// DequeueTimeout is DequeueTimeoutSpin(timeout, 0).
func (q *SynchronizedQueue[T]) DequeueTimeout(timeout time.Duration) Dequeue[T] {
	return q.DequeueTimeoutSpin(timeout, 0)
}

// DequeueAsyncSpin returns a [DequeueFuture] that yields a value without
// parking an OS thread. Drive it with Poll (for a custom event loop) or
// Await (to block the calling goroutine while still honoring context
// cancellation).
func (q *SynchronizedQueue[T]) DequeueAsyncSpin(spin int) *DequeueFuture[T] {
	return &DequeueFuture[T]{queue: q, spin: spin}
}

// DequeueAsync is DequeueAsyncSpin(0).
func (q *SynchronizedQueue[T]) DequeueAsync() *DequeueFuture[T] {
	return q.DequeueAsyncSpin(0)
}
