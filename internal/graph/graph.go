// Package graph implements the Position Graph: a sharded concurrent map
// from Position to Vertex, partitioned into top-level shards by hash(p) —
// each shard then keyed secondarily by Arrangement (the color-symmetric
// material-equivalence class), so root-change pruning can act one
// Arrangement bucket at a time without the whole graph sharing that
// bucket's lock. Vertices live in paged, append-only arrays so a Handle's
// backing memory never moves once written, letting readers walk the graph
// lock-free everywhere except bucket-index lookups and the two per-vertex
// mutable fields (parents, best_child).
package graph

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chessgraph/engine/internal/arrangement"
	"github.com/chessgraph/engine/internal/oracle"
	"github.com/chessgraph/engine/internal/position"
)

// pageSize is the number of vertices per page of an arrangementBucket's
// vertex array. Pages are allocated lazily and never resized, so a Vertex's
// address is stable for the bucket's lifetime.
const pageSize = 4096

// handleCacheSize bounds the per-shard (Position -> Handle) memo cache; it
// is pure performance, never authoritative, so a miss just falls through to
// the bucket maps.
const handleCacheSize = 4096

// Vertex is one node of the Position Graph.
type Vertex struct {
	Position   position.Position
	StaticEval oracle.Evaluation
	Children   []position.Position // set exactly once, by SetChildren
	expanded   atomic.Bool

	parentsMu sync.Mutex
	parents   []position.Position

	bestMu    sync.Mutex
	bestChild *position.Position
	bestEval  oracle.Evaluation
}

// Expanded reports whether Initialize has already run for this vertex.
func (v *Vertex) Expanded() bool { return v.expanded.Load() }

// Initialize performs the expansion worker's one-time write of static_eval
// and children, per spec.md §4.4 step 2: "under the new vertex's write
// access (one-time initialization), set static_eval := eval, children :=
// successors." A second call on the same vertex is a logic violation, since
// both fields are immutable after insertion.
func (v *Vertex) Initialize(eval oracle.Evaluation, children []position.Position) {
	if !v.expanded.CompareAndSwap(false, true) {
		panic(&LogicViolation{Msg: "Initialize called twice on the same vertex"})
	}
	v.StaticEval = eval
	v.Children = children
}

// AddParent appends a back-edge. Append-only: a position may be reached via
// more than one parent move, and every one of them is recorded.
func (v *Vertex) AddParent(p position.Position) {
	v.parentsMu.Lock()
	defer v.parentsMu.Unlock()
	for _, existing := range v.parents {
		if existing == p {
			return
		}
	}
	v.parents = append(v.parents, p)
}

// Parents returns a snapshot of this vertex's recorded parents.
func (v *Vertex) Parents() []position.Position {
	v.parentsMu.Lock()
	defer v.parentsMu.Unlock()
	out := make([]position.Position, len(v.parents))
	copy(out, v.parents)
	return out
}

// BestChild returns the best known child and its backed-up evaluation, if
// backpropagation has reached this vertex at least once.
func (v *Vertex) BestChild() (position.Position, oracle.Evaluation, bool) {
	v.bestMu.Lock()
	defer v.bestMu.Unlock()
	if v.bestChild == nil {
		return position.Position{}, oracle.Evaluation{}, false
	}
	return *v.bestChild, v.bestEval, true
}

// SetBestChild applies spec.md §4.5 step 3's update rule: unset becomes
// set; a refreshed evaluation of the *same* child always overwrites (so a
// child's improving value keeps propagating even when the ranking among
// children hasn't changed); a strictly better child overwrites; anything
// else is left untouched. Returns true ("dirty") exactly when the record
// changed, which is the backpropagation worker's signal to keep propagating
// to this vertex's parents.
func (v *Vertex) SetBestChild(child position.Position, eval oracle.Evaluation) bool {
	v.bestMu.Lock()
	defer v.bestMu.Unlock()
	overwrite := v.bestChild == nil || *v.bestChild == child || v.bestEval.Less(eval)
	if !overwrite {
		return false
	}
	c := child
	v.bestChild = &c
	v.bestEval = eval
	return true
}

// LogicViolation marks an invariant break in the graph's own bookkeeping —
// never raised by caller-supplied chess input.
type LogicViolation struct{ Msg string }

func (e *LogicViolation) Error() string { return "graph: logic violation: " + e.Msg }

// Handle is a weak locator for a Vertex. Resolving it after its bucket has
// been pruned by the root-change coordinator returns ok == false rather
// than a stale or dangling Vertex.
type Handle struct {
	bucket *arrangementBucket
	index  uint32
}

// Get resolves the Handle to its live Vertex.
func (h Handle) Get() (*Vertex, bool) {
	if h.bucket == nil {
		return nil, false
	}
	h.bucket.mu.RLock()
	defer h.bucket.mu.RUnlock()
	if !h.bucket.alive {
		return nil, false
	}
	return h.bucket.vertexAt(h.index), true
}

type page struct {
	vertices [pageSize]Vertex
}

// arrangementBucket holds every Vertex sharing one Arrangement.
type arrangementBucket struct {
	mu    sync.RWMutex
	alive bool
	index map[position.Position]uint32
	pages []*page
	count uint32
}

func newArrangementBucket() *arrangementBucket {
	return &arrangementBucket{alive: true, index: make(map[position.Position]uint32)}
}

func (b *arrangementBucket) vertexAt(idx uint32) *Vertex {
	page := b.pages[idx/pageSize]
	return &page.vertices[idx%pageSize]
}

// insert appends a fresh, not-yet-expanded Vertex and returns its index.
// Caller must hold b.mu for writing.
func (b *arrangementBucket) insert(p position.Position) uint32 {
	idx := b.count
	if idx%pageSize == 0 {
		b.pages = append(b.pages, &page{})
	}
	v := b.vertexAt(idx)
	v.Position = p
	b.index[p] = idx
	b.count++
	return idx
}

type shard struct {
	mu        sync.RWMutex
	buckets   map[arrangement.Arrangement]*arrangementBucket
	handleLRU *lru.Cache[position.Position, Handle]
}

func newShard() *shard {
	cache, _ := lru.New[position.Position, Handle](handleCacheSize)
	return &shard{buckets: make(map[arrangement.Arrangement]*arrangementBucket), handleLRU: cache}
}

// Graph is the top-level sharded Position Graph.
type Graph struct {
	shards []*shard
}

// New builds a Graph with numShards top-level shards, hashed on the whole
// Position. numShards should be a small multiple of worker count, per
// spec.md §4.1.
func New(numShards int) *Graph {
	if numShards < 1 {
		numShards = 1
	}
	g := &Graph{shards: make([]*shard, numShards)}
	for i := range g.shards {
		g.shards[i] = newShard()
	}
	return g
}

// shardFor picks the top-level shard by hashing the whole position, per
// spec.md §4.1 ("partitioned into K top-level shards chosen by hash(p) mod
// K"). Arrangement is only the secondary key nested inside that shard —
// sharding on it instead would force every transposition of one material
// count through a single shard's lock, defeating K-way concurrency.
func (g *Graph) shardFor(p position.Position) *shard {
	return g.shards[p.Hash()%uint64(len(g.shards))]
}

// Get resolves an existing Position to its Handle without creating one.
func (g *Graph) Get(p position.Position) (Handle, bool) {
	s := g.shardFor(p)
	if h, ok := s.handleLRU.Get(p); ok {
		if _, live := h.Get(); live {
			return h, true
		}
		s.handleLRU.Remove(p)
	}

	s.mu.RLock()
	bucket, ok := s.buckets[arrangement.Of(p)]
	s.mu.RUnlock()
	if !ok {
		return Handle{}, false
	}

	bucket.mu.RLock()
	idx, ok := bucket.index[p]
	bucket.mu.RUnlock()
	if !ok {
		return Handle{}, false
	}
	h := Handle{bucket: bucket, index: idx}
	s.handleLRU.Add(p, h)
	return h, true
}

// Edit resolves p to its Handle, atomically inserting a fresh, empty
// Vertex if this is the first time p has been seen — spec.md §4.1's
// edit(p) contract. created reports which branch was taken: the expansion
// worker only calls the Oracle and runs Vertex.Initialize when created is
// true.
func (g *Graph) Edit(p position.Position) (h Handle, created bool) {
	if h, ok := g.Get(p); ok {
		return h, false
	}

	arr := arrangement.Of(p)
	s := g.shardFor(p)

	s.mu.Lock()
	bucket, ok := s.buckets[arr]
	if !ok {
		bucket = newArrangementBucket()
		s.buckets[arr] = bucket
	}
	s.mu.Unlock()

	bucket.mu.Lock()
	if idx, ok := bucket.index[p]; ok {
		bucket.mu.Unlock()
		h := Handle{bucket: bucket, index: idx}
		s.handleLRU.Add(p, h)
		return h, false
	}
	idx := bucket.insert(p)
	bucket.mu.Unlock()

	h = Handle{bucket: bucket, index: idx}
	s.handleLRU.Add(p, h)
	return h, true
}

// Prune removes every Arrangement bucket for which keep returns false,
// marking their handles permanently dead. Used exclusively by
// internal/coordinator during a root change; never called from the
// expansion/backpropagation hot path.
func (g *Graph) Prune(keep func(arrangement.Arrangement) bool) {
	for _, s := range g.shards {
		s.mu.Lock()
		for arr, bucket := range s.buckets {
			if keep(arr) {
				continue
			}
			bucket.mu.Lock()
			bucket.alive = false
			bucket.mu.Unlock()
			delete(s.buckets, arr)
		}
		s.mu.Unlock()
		s.handleLRU.Purge()
	}
}

// Arrangements returns every Arrangement currently holding at least one
// live vertex, for the root-change coordinator's partition step. Like Len,
// this is O(shards) and never called from the hot path.
func (g *Graph) Arrangements() []arrangement.Arrangement {
	var out []arrangement.Arrangement
	for _, s := range g.shards {
		s.mu.RLock()
		for arr := range s.buckets {
			out = append(out, arr)
		}
		s.mu.RUnlock()
	}
	return out
}

// Len returns the total number of live vertices across every shard, for
// the dashboard and tests. It takes every shard's read lock in turn —
// O(shards), never called from the hot path.
func (g *Graph) Len() int {
	total := 0
	for _, s := range g.shards {
		s.mu.RLock()
		for _, bucket := range s.buckets {
			bucket.mu.RLock()
			total += int(bucket.count)
			bucket.mu.RUnlock()
		}
		s.mu.RUnlock()
	}
	return total
}
