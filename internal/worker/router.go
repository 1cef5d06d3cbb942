// Package worker implements the expansion and backpropagation loop bodies
// of spec.md §4.4/§4.5, run by the engine's worker pool. Each worker owns
// its own EQ and BQ shard and its own scratch counters; all of them share
// only the Position Graph and the Oracle, mirroring the teacher engine's
// per-worker-state-plus-shared-tables shape (internal/engine/worker.go's
// Worker, adapted from Lazy-SMP search state to expand/backprop state).
package worker

import (
	"time"

	"github.com/chessgraph/engine/internal/bqueue"
	"github.com/chessgraph/engine/internal/equeue"
	"github.com/chessgraph/engine/internal/position"
)

// Router fans work out across N per-worker EQ/BQ shards, sharding
// producer-side by position hash so that the same position tends to land
// on the same worker (spec.md §4.2/§4.3).
type Router struct {
	EQ []*equeue.Queue
	BQ []*bqueue.Queue
}

// NewRouter builds n parallel EQ/BQ shard pairs, each polling with the
// given bounded backoff interval.
func NewRouter(n int, maxBackoff time.Duration) *Router {
	r := &Router{EQ: make([]*equeue.Queue, n), BQ: make([]*bqueue.Queue, n)}
	for i := 0; i < n; i++ {
		r.EQ[i] = equeue.New(maxBackoff)
		r.BQ[i] = bqueue.New(maxBackoff)
	}
	return r
}

func (r *Router) eqFor(p position.Position) *equeue.Queue {
	return r.EQ[p.Hash()%uint64(len(r.EQ))]
}

func (r *Router) bqFor(p position.Position) *bqueue.Queue {
	return r.BQ[p.Hash()%uint64(len(r.BQ))]
}

// EnqueueExpand routes item to the EQ shard owned by item.Child's hash.
func (r *Router) EnqueueExpand(item equeue.Item) {
	r.eqFor(item.Child).Enqueue(item)
}

// EnqueueBackprop routes (p, depth) to the BQ shard owned by p's hash.
func (r *Router) EnqueueBackprop(depth int, p position.Position) {
	r.bqFor(p).Enqueue(depth, p)
}

// N reports the number of EQ/BQ shard pairs.
func (r *Router) N() int { return len(r.EQ) }

// PruneStale drops every pending EQ/BQ entry whose position keep rejects.
// Called by the root-change coordinator right after graph.Graph.Prune, so
// queued work never resurrects a vertex the prune just discarded.
func (r *Router) PruneStale(keep func(position.Position) bool) {
	for _, q := range r.EQ {
		q.Filter(func(item equeue.Item) bool { return keep(item.Child) })
	}
	for _, q := range r.BQ {
		q.Filter(keep)
	}
}
