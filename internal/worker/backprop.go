package worker

import (
	"context"
	"sync/atomic"

	"github.com/chessgraph/engine/internal/graph"
	"github.com/chessgraph/engine/internal/oracle"
	"github.com/chessgraph/engine/internal/position"
)

// Backprop drains one BQ shard, implementing spec.md §4.5's loop body: for
// the dequeued position, recompute its best child from the backed-up
// evaluations of its own children, and if that changes anything, push its
// parents back onto BQ one depth shallower.
type Backprop struct {
	ID     int
	Graph  *graph.Graph
	Router *Router
	Gate   *Gate

	updated atomic.Uint64
	busy    atomic.Bool
}

// Updated returns the number of times this worker has changed a vertex's
// best_child record, for the dashboard's per-thread counters.
func (w *Backprop) Updated() uint64 { return w.updated.Load() }

// Busy reports whether this worker is currently inside step.
func (w *Backprop) Busy() bool { return w.busy.Load() }

// Run drains this worker's BQ shard until ctx is cancelled.
func (w *Backprop) Run(ctx context.Context) {
	in := w.Router.BQ[w.ID]
	for {
		p, depth, ok := in.Dequeue(ctx)
		if !ok {
			return
		}
		release := w.Gate.Checkpoint()
		w.busy.Store(true)
		w.step(p, depth)
		w.busy.Store(false)
		release()
	}
}

func (w *Backprop) step(p position.Position, depth int) {
	h, ok := w.Graph.Get(p)
	if !ok {
		return // pruned since it was enqueued
	}
	v, ok := h.Get()
	if !ok {
		return
	}

	bestChild, bestEval, found := w.childVerdict(v)
	if !found {
		return // no child has reached a backed-up value yet
	}

	if !v.SetBestChild(bestChild, bestEval) {
		return
	}
	w.updated.Add(1)

	for _, parent := range v.Parents() {
		w.Router.EnqueueBackprop(depth-1, parent)
	}
}

// childVerdict scans v's children for the one with the best backed-up
// evaluation from v's own perspective, per spec.md §4.5 step 2: a child's
// recorded best_child evaluation (or, absent that, its own static_eval for
// a not-yet-backpropagated leaf) inverted to v's side to move.
func (w *Backprop) childVerdict(v *graph.Vertex) (best position.Position, bestEval oracle.Evaluation, found bool) {
	for _, c := range v.Children {
		ch, ok := w.Graph.Get(c)
		if !ok {
			continue
		}
		cv, ok := ch.Get()
		if !ok || !cv.Expanded() {
			continue
		}

		eval := cv.StaticEval
		if _, be, ok := cv.BestChild(); ok {
			eval = be
		}
		inverted := eval.Invert()

		if !found || bestEval.Less(inverted) {
			best, bestEval, found = c, inverted, true
		}
	}
	return
}
