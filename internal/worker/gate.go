package worker

import "sync"

// Gate is the pause mechanism the root-change coordinator uses to freeze
// every expansion/backpropagation worker during a prune (spec.md §4.6):
// the coordinator takes a write lock around partition-and-prune, while each
// worker takes a read lock for the span of one queue item. Workers never
// block each other; only the coordinator's write lock stalls them, and only
// for the duration of one prune.
type Gate struct {
	mu sync.RWMutex
}

// NewGate returns an open Gate.
func NewGate() *Gate { return &Gate{} }

// Checkpoint blocks until no coordinator pause is in progress, then returns
// a function the worker must call when it has finished the current item.
func (g *Gate) Checkpoint() (release func()) {
	g.mu.RLock()
	return g.mu.RUnlock
}

// Pause blocks until every in-flight checkpoint has released, then holds
// off new ones until resume is called. Used by the coordinator around a
// root-change partition-and-prune.
func (g *Gate) Pause() (resume func()) {
	g.mu.Lock()
	return g.mu.Unlock
}
