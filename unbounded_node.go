// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// nodeIndex is a write-once-per-occupancy sequence number. set publishes
// the value with release ordering; get observes it with acquire ordering.
// Observing isSet true synchronizes-with the producer's writes of prev,
// value, and the head CAS that published the owning node — see node[T].
//
// A node's index is unset on retirement and set again exactly once per
// later occupancy, so the zero value (unset) is the correct state for a
// freshly allocated or freshly retired node.
type nodeIndex struct {
	value uint64
	isSet atomix.Bool
}

// get returns the published value and whether one is currently set.
func (n *nodeIndex) get() (uint64, bool) {
	if n.isSet.LoadAcquire() {
		return n.value, true
	}
	return 0, false
}

// set publishes value. Callers must ensure no concurrent reader can
// observe a torn value: set is only ever called by the producer that
// enqueued the node, once per occupancy, right after its head CAS and
// before any reader can see isSet true.
func (n *nodeIndex) set(value uint64) {
	n.value = value
	n.isSet.StoreRelease(true)
}

// unset clears the published flag ahead of node retirement. The bits of
// value are left behind but become logically absent.
func (n *nodeIndex) unset() {
	n.isSet.StoreRelease(false)
}

// node carries one queued value plus the bookkeeping the unbounded queue
// needs to place it in FIFO order and eventually recycle it.
//
//   - value is valid only between enqueue publication and dequeue
//     extraction.
//   - index is this node's monotonically assigned (mod 2^64) FIFO
//     position, assigned once per occupancy.
//   - prev is a plain back-link to the node that was at head when this
//     node was inserted. It is written only by the enqueuer that owns
//     the node before publication, and is reused as the cache's Treiber
//     stack link once the node is retired — see nodeCache.
//   - next is the atomic forward-link, written exactly once by the next
//     enqueuer after it has linked itself in.
type node[T any] struct {
	value T
	index nodeIndex
	prev  *node[T]
	next  atomic.Pointer[node[T]]
}
