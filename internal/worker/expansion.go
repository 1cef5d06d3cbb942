package worker

import (
	"context"
	"sync/atomic"

	"github.com/chessgraph/engine/internal/equeue"
	"github.com/chessgraph/engine/internal/graph"
	"github.com/chessgraph/engine/internal/oracle"
	"github.com/chessgraph/engine/internal/position"
)

// Oracle is the pure move-generator/evaluator collaborator the expansion
// worker calls. internal/oracle.Oracle satisfies this.
type Oracle interface {
	Evaluate(position.Position) (oracle.Evaluation, []position.Position)
}

// Expansion drains one EQ shard, implementing spec.md §4.4's loop body.
type Expansion struct {
	ID     int
	Graph  *graph.Graph
	Oracle Oracle
	Router *Router
	Gate   *Gate

	evaluated atomic.Uint64
	busy      atomic.Bool
}

// Evaluated returns the number of positions this worker has run through the
// Oracle, for the dashboard's per-thread counters.
func (w *Expansion) Evaluated() uint64 { return w.evaluated.Load() }

// Busy reports whether this worker is currently inside step, between
// dequeuing an item and finishing it — used by Engine.Quiescent to decide
// whether "empty queues" really means "settled" or just "between items".
func (w *Expansion) Busy() bool { return w.busy.Load() }

// Run drains this worker's EQ shard until ctx is cancelled.
func (w *Expansion) Run(ctx context.Context) {
	in := w.Router.EQ[w.ID]
	for {
		item, ok := in.Dequeue(ctx)
		if !ok {
			return
		}
		release := w.Gate.Checkpoint()
		w.busy.Store(true)
		w.step(item)
		w.busy.Store(false)
		release()
	}
}

func (w *Expansion) step(item equeue.Item) {
	h, created := w.Graph.Edit(item.Child)

	if created {
		eval, successors := w.Oracle.Evaluate(item.Child)
		v, ok := h.Get()
		if !ok {
			panic(&graph.LogicViolation{Msg: "freshly-edited handle failed to resolve"})
		}
		v.Initialize(eval, successors)
		w.evaluated.Add(1)

		if item.Parent != nil {
			v.AddParent(*item.Parent)
			w.Router.EnqueueBackprop(item.Depth-1, *item.Parent)
		}
		for _, s := range successors {
			w.Router.EnqueueExpand(equeue.Item{
				Parent:          &item.Child,
				Child:           s,
				Depth:           item.Depth + 1,
				ParentScoreHint: eval.CompactScore(),
			})
		}
		return
	}

	v, ok := h.Get()
	if !ok {
		return // transient absence: pruned between Edit and Get
	}
	if item.Parent == nil {
		return
	}
	before := len(v.Parents())
	v.AddParent(*item.Parent)
	if len(v.Parents()) == before {
		return // not a new back-edge
	}
	for _, p := range v.Parents() {
		w.Router.EnqueueBackprop(item.Depth-1, p)
	}
}
