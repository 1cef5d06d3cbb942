// Package coordinator implements the root-change pause/prune/resume
// protocol of spec.md §4.6: when the game's root position advances, every
// Arrangement bucket the new root can no longer reach is provably dead
// weight, and gets dropped from the Position Graph and from every worker's
// queues. Grounded on the pack's shard-registry "partition the key space,
// stream decisions to one writer" idiom and its health-monitor's
// ctx-friendly pause shape, adapted from cluster rebalancing to game-tree
// pruning.
package coordinator

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/chessgraph/engine/internal/arrangement"
	"github.com/chessgraph/engine/internal/graph"
	"github.com/chessgraph/engine/internal/position"
	"github.com/chessgraph/engine/internal/worker"
)

// Coordinator owns the pause gate, the graph, and the worker queues it must
// keep consistent across a root change.
type Coordinator struct {
	Graph  *graph.Graph
	Router *worker.Router
	Gate   *worker.Gate

	// Checkers bounds how many CanReach evaluations run concurrently during
	// a prune's partition step; spec.md §4.6 calls for fanning the check
	// out across the worker pool minus one (the coordinator's own
	// goroutine occupies the Nth slot). Zero selects GOMAXPROCS-1.
	Checkers int
}

// New builds a Coordinator over an already-running Graph and Router.
func New(g *graph.Graph, r *worker.Router, gate *worker.Gate) *Coordinator {
	return &Coordinator{Graph: g, Router: r, Gate: gate}
}

func (c *Coordinator) checkers() int {
	if c.Checkers > 0 {
		return c.Checkers
	}
	if n := runtime.GOMAXPROCS(0) - 1; n > 0 {
		return n
	}
	return 1
}

// CommitMove pauses every worker, partitions the graph's live Arrangements
// into reachable and unreachable from newRoot, prunes the unreachable ones
// from both the graph and every EQ/BQ shard, and resumes. It blocks for the
// duration of the partition step; workers already mid-item finish that item
// before the pause takes effect (spec.md §4.6's "drain in flight, then
// freeze").
func (c *Coordinator) CommitMove(ctx context.Context, newRoot position.Position) error {
	resume := c.Gate.Pause()
	defer resume()

	newArr := arrangement.Of(newRoot)
	live := c.Graph.Arrangements()

	keep := make(map[arrangement.Arrangement]bool, len(live))
	results := make(chan arrangement.Arrangement, len(live))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.checkers())
	for _, arr := range live {
		arr := arr
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if arr == newArr || arrangement.CanReach(newArr, arr) {
				results <- arr
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		err := g.Wait()
		close(results)
		done <- err
	}()

	// Single-writer aggregation: only this goroutine ever touches keep,
	// even though many checkers feed it concurrently.
	for arr := range results {
		keep[arr] = true
	}
	if err := <-done; err != nil {
		return err
	}

	c.Graph.Prune(func(a arrangement.Arrangement) bool { return keep[a] })
	c.Router.PruneStale(func(p position.Position) bool { return arrangement.CanReach(newArr, arrangement.Of(p)) })
	return nil
}
