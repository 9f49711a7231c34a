// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wyfo/umpmc"
)

// TestSynchronizedBlocking is scenario S4: a consumer blocks on Dequeue
// before any value is available; a producer enqueues shortly after and
// the consumer unblocks with that value.
func TestSynchronizedBlocking(t *testing.T) {
	q := lfq.NewSynchronized[int]()

	go func() {
		time.Sleep(10 * time.Microsecond)
		q.Enqueue(0)
	}()

	if got := q.Dequeue(); got != 0 {
		t.Fatalf("Dequeue: got %d, want 0", got)
	}
}

// TestSynchronizedAsync is scenario S5: the same handoff as S4, but the
// consumer awaits DequeueAsync instead of blocking a goroutine on
// Dequeue.
func TestSynchronizedAsync(t *testing.T) {
	q := lfq.NewSynchronized[int]()

	go func() {
		time.Sleep(10 * time.Microsecond)
		q.Enqueue(0)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := q.DequeueAsync().Await(ctx)
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if got != 0 {
		t.Fatalf("Await: got %d, want 0", got)
	}
}

// TestSynchronizedTimeout is scenario S6: a timed dequeue on an empty
// queue reports Empty once the deadline passes, and a timed dequeue
// that races an immediately-preceding enqueue observes the value.
func TestSynchronizedTimeout(t *testing.T) {
	q := lfq.NewSynchronized[int]()

	if d := q.DequeueTimeout(10 * time.Millisecond); d.Status != lfq.DequeueEmpty {
		t.Fatalf("DequeueTimeout on empty: got %v, want Empty", d.Status)
	}

	q.Enqueue(7)
	d := q.DequeueTimeout(10 * time.Millisecond)
	if d.Status != lfq.DequeueData || d.Value != 7 {
		t.Fatalf("DequeueTimeout after Enqueue: got %+v, want Data(7)", d)
	}
}

// TestSynchronizedTryDequeue exercises the non-blocking surface
// directly: it must never park even when empty.
func TestSynchronizedTryDequeue(t *testing.T) {
	q := lfq.NewSynchronized[int]()

	if d := q.TryDequeue(); d.Status != lfq.DequeueEmpty {
		t.Fatalf("TryDequeue on empty: got %v, want Empty", d.Status)
	}

	q.Enqueue(42)
	if d := q.TryDequeue(); d.Status != lfq.DequeueData || d.Value != 42 {
		t.Fatalf("TryDequeue: got %+v, want Data(42)", d)
	}
}

// TestSynchronizedNoLostWakeup is invariant I6: a consumer parked on an
// empty queue must always unsuspend once a producer completes its
// enqueue, across many repetitions, to catch the race window between
// the consumer's fast-path check and its waker registration.
func TestSynchronizedNoLostWakeup(t *testing.T) {
	const rounds = 200
	for i := 0; i < rounds; i++ {
		q := lfq.NewSynchronized[int]()
		done := make(chan int, 1)

		go func() {
			done <- q.Dequeue()
		}()

		q.Enqueue(i)

		select {
		case got := <-done:
			if got != i {
				t.Fatalf("round %d: got %d, want %d", i, got, i)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("round %d: consumer never woke up", i)
		}
	}
}

// TestSynchronizedAtMostOneNotifyPerEnqueue is invariant I5: each
// EnqueueNotifySpin call wakes at most one waker. n parked consumers and
// n enqueues must let every consumer return with a value. Each consumer
// counts itself once, so the count detects a missing wakeup; it cannot
// exceed n even if some enqueue woke more than one waker.
func TestSynchronizedAtMostOneNotifyPerEnqueue(t *testing.T) {
	const n = 16
	q := lfq.NewSynchronized[int]()

	var wakeups atomic.Int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			q.Dequeue()
			wakeups.Add(1)
		}()
	}
	close(start)
	time.Sleep(10 * time.Millisecond) // let consumers register their wakers

	for i := 0; i < n; i++ {
		q.Enqueue(i)
	}

	wg.Wait()
	if got := wakeups.Load(); got != n {
		t.Fatalf("wakeups: got %d, want %d", got, n)
	}
}

// TestSynchronizedAsyncCancellation verifies that Await returns the
// context's error on cancellation without leaving the queue in a state
// that breaks a later, unrelated consumer — the registered waker must
// be consumable (as a no-op) by the next enqueue.
func TestSynchronizedAsyncCancellation(t *testing.T) {
	q := lfq.NewSynchronized[int]()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.DequeueAsync().Await(ctx)
	if err == nil {
		t.Fatalf("Await after cancel: got nil error, want context error")
	}

	// The cancelled future's waker (if any was registered) must not
	// prevent a fresh consumer from being woken normally.
	go func() {
		time.Sleep(10 * time.Microsecond)
		q.Enqueue(99)
	}()
	if got := q.Dequeue(); got != 99 {
		t.Fatalf("Dequeue after cancelled Await: got %d, want 99", got)
	}
}

// TestDequeueFuturePoll drives a DequeueFuture directly through its
// Initial/Registered states without Await, mirroring how a custom event
// loop would use it.
func TestDequeueFuturePoll(t *testing.T) {
	q := lfq.NewSynchronized[int]()
	f := q.DequeueAsync()

	if _, ready := f.Poll(); ready {
		t.Fatalf("Poll on empty queue: got ready=true, want false")
	}
	notify := f.NotifyChannel()
	if notify == nil {
		t.Fatalf("NotifyChannel: got nil after Poll registered a waker")
	}

	q.Enqueue(5)
	select {
	case <-notify:
	case <-time.After(5 * time.Second):
		t.Fatalf("notify channel never fired after Enqueue")
	}

	v, ready := f.Poll()
	if !ready || v != 5 {
		t.Fatalf("Poll after notify: got (%d, %v), want (5, true)", v, ready)
	}
}
