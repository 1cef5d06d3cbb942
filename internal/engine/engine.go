// Package engine wires the Position Graph, the Expansion/Backpropagation
// Queues, the worker pool, and the root-change coordinator into the single
// public surface spec.md §6 describes. Grounded on the teacher's
// internal/engine/engine.go: one Engine struct owning a worker slice and
// the shared tables they all read and write.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chessgraph/engine/internal/coordinator"
	"github.com/chessgraph/engine/internal/equeue"
	"github.com/chessgraph/engine/internal/graph"
	"github.com/chessgraph/engine/internal/position"
	"github.com/chessgraph/engine/internal/worker"
)

// Oracle is the pure position evaluator/generator the engine drives.
type Oracle = worker.Oracle

// Config controls pool sizing; see internal/config for the env/flag
// surface that produces one of these.
type Config struct {
	Workers     int
	GraphShards int
	MaxBackoff  time.Duration
}

// Engine is the running search: a Position Graph, N worker pairs draining
// their own EQ/BQ shard, and a root-change coordinator serializing prunes
// against them.
type Engine struct {
	graph       *graph.Graph
	router      *worker.Router
	gate        *worker.Gate
	coordinator *coordinator.Coordinator
	oracle      Oracle

	expansion []*worker.Expansion
	backprop  []*worker.Backprop

	mu     sync.RWMutex
	root   position.Position
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New builds an Engine ready to Start. It does not itself insert a root or
// spawn workers.
func New(cfg Config, o Oracle) *Engine {
	n := cfg.Workers // may legitimately be zero: spec.md §8 requires this to be safe, just inert
	routerShards := n
	if routerShards <= 0 {
		routerShards = 1
	}
	shards := cfg.GraphShards
	if shards <= 0 {
		shards = routerShards * 4
	}

	g := graph.New(shards)
	gate := worker.NewGate()
	router := worker.NewRouter(routerShards, cfg.MaxBackoff)

	e := &Engine{
		graph:       g,
		router:      router,
		gate:        gate,
		coordinator: coordinator.New(g, router, gate),
		oracle:      o,
		expansion:   make([]*worker.Expansion, n),
		backprop:    make([]*worker.Backprop, n),
	}
	for i := 0; i < n; i++ {
		e.expansion[i] = &worker.Expansion{ID: i, Graph: g, Oracle: o, Router: router, Gate: gate}
		e.backprop[i] = &worker.Backprop{ID: i, Graph: g, Router: router, Gate: gate}
	}
	return e
}

// ErrAlreadyStarted is returned by Start if the worker pool is already
// running.
var ErrAlreadyStarted = errors.New("engine: already started")

// Start seeds root into the Position Graph (if not already present) and
// launches every expansion/backpropagation worker under ctx. It returns
// once the pool is running; call Stop to tear it down.
func (e *Engine) Start(ctx context.Context, root position.Position) error {
	e.mu.Lock()
	if e.cancel != nil {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.root = root
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	if _, created := e.graph.Edit(root); created {
		e.router.EnqueueExpand(equeue.Item{Child: root, Depth: 0})
	}

	g, gctx := errgroup.WithContext(runCtx)
	for _, w := range e.expansion {
		w := w
		g.Go(func() error { w.Run(gctx); return nil })
	}
	for _, w := range e.backprop {
		w := w
		g.Go(func() error { w.Run(gctx); return nil })
	}

	e.mu.Lock()
	e.group = g
	e.mu.Unlock()
	return nil
}

// Stop cancels every worker and waits for the pool to drain.
func (e *Engine) Stop() error {
	e.mu.Lock()
	cancel, g := e.cancel, e.group
	e.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	if g == nil {
		return nil
	}
	return g.Wait()
}

// CommitMove advances the root to newRoot, pausing the worker pool for the
// coordinator's partition-and-prune step, then reseeds newRoot into the
// graph (and its expansion, if it hasn't already been reached by search)
// before resuming.
func (e *Engine) CommitMove(ctx context.Context, newRoot position.Position) error {
	if err := e.coordinator.CommitMove(ctx, newRoot); err != nil {
		return err
	}
	e.mu.Lock()
	e.root = newRoot
	e.mu.Unlock()
	if _, created := e.graph.Edit(newRoot); created {
		e.router.EnqueueExpand(equeue.Item{Child: newRoot, Depth: 0})
	}
	return nil
}

// Root returns the engine's current root position.
func (e *Engine) Root() position.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.root
}

// BestLine walks best_child pointers from the root to produce a principal
// variation, stopping at maxPlies, an unexpanded vertex, or a repeated
// position (cycles are possible in a merged graph).
func (e *Engine) BestLine(maxPlies int) []position.Position {
	cur := e.Root()
	seen := map[position.Position]bool{cur: true}
	var line []position.Position
	for i := 0; i < maxPlies; i++ {
		h, ok := e.graph.Get(cur)
		if !ok {
			break
		}
		v, ok := h.Get()
		if !ok {
			break
		}
		child, _, ok := v.BestChild()
		if !ok || seen[child] {
			break
		}
		line = append(line, child)
		seen[child] = true
		cur = child
	}
	return line
}

// Quiescent reports whether every EQ/BQ shard is empty and no worker is
// currently mid-step: the search has settled and nothing is pending.
func (e *Engine) Quiescent() bool {
	for _, w := range e.expansion {
		if w.Busy() {
			return false
		}
	}
	for _, w := range e.backprop {
		if w.Busy() {
			return false
		}
	}
	for _, q := range e.router.EQ {
		if q.Len() > 0 {
			return false
		}
	}
	for _, q := range e.router.BQ {
		if q.Len() > 0 {
			return false
		}
	}
	return true
}

// WorkerStat is one expansion worker's running flag and lifetime evaluated
// count, for the dashboard's per-thread row.
type WorkerStat struct {
	ID        int
	Busy      bool
	Evaluated uint64
}

// BackpropStat is one backpropagation worker's running flag and lifetime
// best_child-write count.
type BackpropStat struct {
	ID      int
	Busy    bool
	Updated uint64
}

// Snapshot is a point-in-time read of the engine's counters, for the
// dashboard and the metrics/status HTTP server.
type Snapshot struct {
	Root            position.Position
	GraphVertices   int
	Evaluated       uint64
	BestChildWrites uint64
	EQPending       []int
	BQPending       []int
	Quiescent       bool
	Expansion       []WorkerStat
	Backprop        []BackpropStat
}

// Snapshot captures the engine's current counters.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{Root: e.Root(), GraphVertices: e.graph.Len(), Quiescent: e.Quiescent()}
	s.Expansion = make([]WorkerStat, len(e.expansion))
	for i, w := range e.expansion {
		s.Expansion[i] = WorkerStat{ID: w.ID, Busy: w.Busy(), Evaluated: w.Evaluated()}
		s.Evaluated += w.Evaluated()
	}
	s.Backprop = make([]BackpropStat, len(e.backprop))
	for i, w := range e.backprop {
		s.Backprop[i] = BackpropStat{ID: w.ID, Busy: w.Busy(), Updated: w.Updated()}
		s.BestChildWrites += w.Updated()
	}
	s.EQPending = make([]int, len(e.router.EQ))
	for i, q := range e.router.EQ {
		s.EQPending[i] = q.Len()
	}
	s.BQPending = make([]int, len(e.router.BQ))
	for i, q := range e.router.BQ {
		s.BQPending[i] = q.Len()
	}
	return s
}
