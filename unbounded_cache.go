// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import "sync/atomic"

// nodeCache is a lock-free Treiber stack of retired nodes, reused to
// avoid allocating on the unbounded queue's hot path. Nodes are chained
// through their own prev field while cached — the same field used as
// the doubly-linked back-link once a node is published.
//
// Safety depends on the assumption that no goroutine can still be
// dereferencing a node once it has been retired into the cache. Put is only called after a dequeuer has exclusively claimed a
// node, so this holds without a hazard-pointer or epoch-based
// reclamation layer (see DESIGN.md for the reasoning).
type nodeCache[T any] struct {
	head atomic.Pointer[node[T]]
}

// get pops the top of the stack, or allocates a fresh node on a miss.
func (c *nodeCache[T]) get() *node[T] {
	for {
		head := c.head.Load()
		if head == nil {
			return new(node[T])
		}
		if c.head.CompareAndSwap(head, head.prev) {
			return head
		}
	}
}

// put pushes n onto the stack for later reuse.
func (c *nodeCache[T]) put(n *node[T]) {
	for {
		head := c.head.Load()
		n.prev = head
		if c.head.CompareAndSwap(head, n) {
			return
		}
	}
}

// clear pops every cached node so they can be collected. Used by
// Unbounded.Close to release retired nodes deterministically instead of
// waiting on the garbage collector.
func (c *nodeCache[T]) clear() {
	for {
		head := c.head.Load()
		if head == nil {
			return
		}
		c.head.CompareAndSwap(head, head.prev)
	}
}
