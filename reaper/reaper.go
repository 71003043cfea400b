// Package reaper implements the background subtree destroyer update_root
// hands discarded branches to during tree reuse (spec.md §4.8): a bounded
// worker queue that frees a subtree's nodes off the calling goroutine and
// keeps the shared node counter consistent once drained.
package reaper

import (
	"sync"

	"gosai/node"
)

// Reaper is a FIFO of background-destruction tasks, each owning one
// subtree. Destruction order within a subtree is unconstrained; across
// tasks it is first-in-first-out only because the queue is a channel, not
// because ordering matters to any caller.
type Reaper struct {
	tasks chan *node.Node
	count *node.NodeCounter

	wg       sync.WaitGroup // outstanding (enqueued, not yet freed) tasks
	stop     chan struct{}
	workerWg sync.WaitGroup
}

// New starts a Reaper with the given number of worker goroutines, each
// pulling subtree-roots off the queue and freeing them. count is
// decremented by the number of nodes freed in each subtree, so
// Search.UpdateRoot's node_count invariant survives tree reuse only once
// Drain has returned.
func New(workers int, count *node.NodeCounter) *Reaper {
	if workers < 1 {
		workers = 1
	}
	r := &Reaper{
		tasks: make(chan *node.Node, 256),
		count: count,
		stop:  make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		r.workerWg.Add(1)
		go r.worker()
	}
	return r
}

func (r *Reaper) worker() {
	defer r.workerWg.Done()
	for {
		select {
		case <-r.stop:
			return
		case n := <-r.tasks:
			freed := freeSubtree(n)
			r.count.Add(-freed)
			r.wg.Done()
		}
	}
}

// Enqueue hands a discarded subtree root to the background workers.
// Non-blocking from the caller's perspective unless the queue is full, in
// which case it blocks until a worker drains a slot — update_root never
// enqueues faster than the prior think() call could have grown the tree, so
// this is not expected to stall in practice.
func (r *Reaper) Enqueue(n *node.Node) {
	if n == nil {
		return
	}
	r.wg.Add(1)
	r.tasks <- n
}

// Drain blocks until every enqueued subtree has been freed and count has
// been fully adjusted. update_root calls this before replaying moves onto
// the retained root so node_count is consistent (spec.md §4.8).
func (r *Reaper) Drain() {
	r.wg.Wait()
}

// Close stops the worker pool. Any tasks already enqueued but not yet
// picked up are abandoned (left for the garbage collector, node_count not
// adjusted for them) — callers must Drain before Close if they need the
// counter to reflect every enqueued subtree.
func (r *Reaper) Close() {
	close(r.stop)
	r.workerWg.Wait()
}

// freeSubtree walks n's already-inflated descendants, counting nodes and
// clearing the children slice as it goes so nothing below n is reachable
// afterward. Deflated children are not inflated just to be counted: they
// were never instantiated as Nodes and contribute nothing to node_count.
func freeSubtree(n *node.Node) int64 {
	if n == nil {
		return 0
	}
	var total int64 = 1
	for i := range n.Children {
		if child := n.Children[i].Get(); child != nil {
			total += freeSubtree(child)
		}
	}
	n.Children = nil
	return total
}
