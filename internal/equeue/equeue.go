// Package equeue implements one worker's Expansion Queue: a depth-ordered
// collection of pending ExpandItems to run through the Oracle. Dequeue
// always returns the shallowest pending depth first, approximating
// breadth-first best-first expansion without the cost of a single
// globally-shared priority queue.
package equeue

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/btree"

	"github.com/chessgraph/engine/internal/position"
)

// Item is one pending expansion: a child position reached from an optional
// parent at a given depth. ParentScoreHint is opaque scheduling metadata
// (not read by the core); correctness never depends on it.
type Item struct {
	Parent          *position.Position
	Child           position.Position
	Depth           int
	ParentScoreHint int32
}

// depthBucket orders itself by depth inside the btree; its own FIFO list of
// pending items is not part of the ordering key.
type depthBucket struct {
	depth int
	fifo  *list.List
}

func (d *depthBucket) Less(than btree.Item) bool {
	return d.depth < than.(*depthBucket).depth
}

// Queue is one worker's Expansion Queue.
type Queue struct {
	mu      sync.Mutex
	tree    *btree.BTree
	buckets map[int]*depthBucket

	// maxInterval bounds the exponential backoff applied between empty-queue
	// poll attempts in Dequeue, per spec.md §5's "bounded backoff, not
	// indefinite" requirement.
	maxInterval time.Duration
}

// New builds an empty Expansion Queue. maxInterval bounds the backoff
// Dequeue applies while polling an empty queue; zero selects a 250ms cap.
func New(maxInterval time.Duration) *Queue {
	if maxInterval <= 0 {
		maxInterval = 250 * time.Millisecond
	}
	return &Queue{
		tree:        btree.New(32),
		buckets:     make(map[int]*depthBucket),
		maxInterval: maxInterval,
	}
}

// Enqueue adds item at item.Depth.
func (q *Queue) Enqueue(item Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	b, ok := q.buckets[item.Depth]
	if !ok {
		b = &depthBucket{depth: item.Depth, fifo: list.New()}
		q.buckets[item.Depth] = b
		q.tree.ReplaceOrInsert(b)
	}
	b.fifo.PushBack(item)
}

// TryDequeue removes and returns the oldest Item at the shallowest pending
// depth, or ok == false if the queue is currently empty.
func (q *Queue) TryDequeue() (item Item, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	node := q.tree.Min()
	if node == nil {
		return Item{}, false
	}
	b := node.(*depthBucket)
	front := b.fifo.Front()
	item = front.Value.(Item)
	b.fifo.Remove(front)
	if b.fifo.Len() == 0 {
		q.tree.Delete(b)
		delete(q.buckets, b.depth)
	}
	return item, true
}

// Filter drops every pending item for which keep returns false, preserving
// relative depth and FIFO order among the items that remain. Used by the
// root-change coordinator to discard expansion work for positions a prune
// has just made unreachable.
func (q *Queue) Filter(keep func(Item) bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var kept []Item
	for {
		node := q.tree.Min()
		if node == nil {
			break
		}
		b := node.(*depthBucket)
		front := b.fifo.Front()
		item := front.Value.(Item)
		b.fifo.Remove(front)
		if b.fifo.Len() == 0 {
			q.tree.Delete(b)
			delete(q.buckets, b.depth)
		}
		if keep(item) {
			kept = append(kept, item)
		}
	}
	for _, item := range kept {
		b, ok := q.buckets[item.Depth]
		if !ok {
			b = &depthBucket{depth: item.Depth, fifo: list.New()}
			q.buckets[item.Depth] = b
			q.tree.ReplaceOrInsert(b)
		}
		b.fifo.PushBack(item)
	}
}

// Len reports the total number of pending items across all depths.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, b := range q.buckets {
		n += b.fifo.Len()
	}
	return n
}

// Dequeue blocks, polling with bounded exponential backoff, until an item
// is available or ctx is cancelled.
func (q *Queue) Dequeue(ctx context.Context) (Item, bool) {
	eb := backoff.NewExponentialBackOff()
	eb.MaxInterval = q.maxInterval
	eb.MaxElapsedTime = 0 // bounded interval, not bounded retries

	for {
		if item, ok := q.TryDequeue(); ok {
			return item, true
		}
		wait := eb.NextBackOff()
		select {
		case <-ctx.Done():
			return Item{}, false
		case <-time.After(wait):
		}
	}
}
