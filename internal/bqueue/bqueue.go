// Package bqueue implements one worker's Backpropagation Queue: a
// depth-ordered collection of pending Positions whose freshly-updated
// Evaluation needs to be walked back up toward their parents. Dequeue
// always returns the deepest pending depth first, so backpropagation
// settles the leaves of a subtree before the ancestors that depend on them.
//
// A position can be enqueued for backprop more than once — every expansion
// worker that updates one of its children enqueues it again — so the queue
// also tracks the deepest depth seen per position and, at enqueue time,
// removes a superseded shallower (position, depth) pair instead of
// processing the same backprop twice.
package bqueue

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/btree"

	"github.com/chessgraph/engine/internal/position"
)

type depthSet struct {
	depth int
	set   map[position.Position]struct{}
}

func (d *depthSet) Less(than btree.Item) bool {
	return d.depth < than.(*depthSet).depth
}

// Queue is one worker's Backpropagation Queue.
type Queue struct {
	mu      sync.Mutex
	tree    *btree.BTree
	buckets map[int]*depthSet
	seen    map[position.Position]int // deepest depth currently pending per position

	maxInterval time.Duration
}

// New builds an empty Backpropagation Queue. maxInterval bounds the backoff
// Dequeue applies while polling an empty queue; zero selects a 250ms cap.
func New(maxInterval time.Duration) *Queue {
	if maxInterval <= 0 {
		maxInterval = 250 * time.Millisecond
	}
	return &Queue{
		tree:        btree.New(32),
		buckets:     make(map[int]*depthSet),
		seen:        make(map[position.Position]int),
		maxInterval: maxInterval,
	}
}

// Enqueue requests backpropagation of p starting from depth. If p is
// already pending at depth >= the requested depth, this is a no-op: that
// pending entry will propagate at least as far as this one would.
func (q *Queue) Enqueue(depth int, p position.Position) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if cur, ok := q.seen[p]; ok {
		if cur >= depth {
			return
		}
		q.removeFromBucket(p, cur)
	}
	q.seen[p] = depth
	b, ok := q.buckets[depth]
	if !ok {
		b = &depthSet{depth: depth, set: make(map[position.Position]struct{})}
		q.buckets[depth] = b
		q.tree.ReplaceOrInsert(b)
	}
	b.set[p] = struct{}{}
}

// removeFromBucket drops p from the bucket at depth, deleting the bucket
// itself once empty. Caller must hold q.mu.
func (q *Queue) removeFromBucket(p position.Position, depth int) {
	b, ok := q.buckets[depth]
	if !ok {
		return
	}
	delete(b.set, p)
	if len(b.set) == 0 {
		q.tree.Delete(b)
		delete(q.buckets, depth)
	}
}

// TryDequeue removes and returns one Position from the deepest pending
// depth, skipping stale entries superseded by a deeper re-enqueue.
func (q *Queue) TryDequeue() (p position.Position, depth int, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		item := q.tree.Max()
		if item == nil {
			return position.Position{}, 0, false
		}
		b := item.(*depthSet)
		for candidate := range b.set {
			p = candidate
			break
		}
		delete(b.set, p)
		if len(b.set) == 0 {
			q.tree.Delete(b)
			delete(q.buckets, b.depth)
		}
		if q.seen[p] != b.depth {
			continue // superseded by a deeper enqueue; let that one fire instead
		}
		delete(q.seen, p)
		return p, b.depth, true
	}
}

// Filter drops every pending position for which keep returns false. Used
// by the root-change coordinator to discard backpropagation work for
// positions a prune has just made unreachable.
func (q *Queue) Filter(keep func(position.Position) bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	type entry struct {
		p     position.Position
		depth int
	}
	var kept []entry
	for depth, b := range q.buckets {
		for p := range b.set {
			if keep(p) {
				kept = append(kept, entry{p, depth})
			}
		}
	}

	q.tree = btree.New(32)
	q.buckets = make(map[int]*depthSet)
	q.seen = make(map[position.Position]int)
	for _, e := range kept {
		b, ok := q.buckets[e.depth]
		if !ok {
			b = &depthSet{depth: e.depth, set: make(map[position.Position]struct{})}
			q.buckets[e.depth] = b
			q.tree.ReplaceOrInsert(b)
		}
		b.set[e.p] = struct{}{}
		q.seen[e.p] = e.depth
	}
}

// Len reports the total number of pending (position, depth) entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.seen)
}

// Dequeue blocks, polling with bounded exponential backoff, until a
// Position is available or ctx is cancelled.
func (q *Queue) Dequeue(ctx context.Context) (position.Position, int, bool) {
	eb := backoff.NewExponentialBackOff()
	eb.MaxInterval = q.maxInterval
	eb.MaxElapsedTime = 0

	for {
		if p, depth, ok := q.TryDequeue(); ok {
			return p, depth, true
		}
		wait := eb.NextBackOff()
		select {
		case <-ctx.Done():
			return position.Position{}, 0, false
		case <-time.After(wait):
		}
	}
}
