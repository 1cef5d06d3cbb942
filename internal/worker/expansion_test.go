package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chessgraph/engine/internal/equeue"
	"github.com/chessgraph/engine/internal/graph"
	"github.com/chessgraph/engine/internal/oracle"
	"github.com/chessgraph/engine/internal/position"
)

func testPosition(seed byte) position.Position {
	var sq [64]byte
	sq[4] = position.MakeSquare(position.King, position.White, false)
	sq[60] = position.MakeSquare(position.King, position.Black, false)
	return position.Position{Squares: sq, SideToMove: position.White, HalfMoveClock: seed}
}

// fakeOracle evaluates exactly the positions it's told to, by value.
type fakeOracle struct {
	verdicts map[position.Position]oracle.Evaluation
	children map[position.Position][]position.Position
}

func (f *fakeOracle) Evaluate(p position.Position) (oracle.Evaluation, []position.Position) {
	return f.verdicts[p], f.children[p]
}

func newExpansionFixture() (*graph.Graph, *Router, *fakeOracle, *Expansion) {
	g := graph.New(2)
	r := NewRouter(1, 10*time.Millisecond)
	o := &fakeOracle{verdicts: map[position.Position]oracle.Evaluation{}, children: map[position.Position][]position.Position{}}
	w := &Expansion{ID: 0, Graph: g, Oracle: o, Router: r, Gate: NewGate()}
	return g, r, o, w
}

func TestExpansionCreatesVertexAndEnqueuesSuccessors(t *testing.T) {
	g, r, o, w := newExpansionFixture()
	root := testPosition(0)
	c1, c2 := testPosition(1), testPosition(2)
	o.verdicts[root] = oracle.Evaluation{Kind: oracle.Scored, Score: 10}
	o.children[root] = []position.Position{c1, c2}

	w.step(equeue.Item{Child: root, Depth: 0})

	h, ok := g.Get(root)
	require.True(t, ok)
	v, ok := h.Get()
	require.True(t, ok)
	require.True(t, v.Expanded())
	require.Equal(t, int32(10), v.StaticEval.Score)
	require.Equal(t, []position.Position{c1, c2}, v.Children)

	require.Equal(t, 2, r.EQ[0].Len())
	require.Equal(t, 0, r.BQ[0].Len())
	require.EqualValues(t, 1, w.Evaluated())
}

func TestExpansionEnqueuesBackpropForParent(t *testing.T) {
	_, r, o, w := newExpansionFixture()
	parent := testPosition(9)
	child := testPosition(10)
	o.verdicts[child] = oracle.Evaluation{Kind: oracle.Draw}

	w.step(equeue.Item{Parent: &parent, Child: child, Depth: 3})

	require.Equal(t, 1, r.BQ[0].Len())
	p, depth, ok := r.BQ[0].TryDequeue()
	require.True(t, ok)
	require.Equal(t, parent, p)
	require.Equal(t, 2, depth)
}

func TestExpansionPresentBranchNewParentRequeuesBackprop(t *testing.T) {
	g, r, o, w := newExpansionFixture()
	existing := testPosition(20)
	firstParent := testPosition(21)
	o.verdicts[existing] = oracle.Evaluation{Kind: oracle.Draw}

	// First visit creates the vertex with one parent.
	w.step(equeue.Item{Parent: &firstParent, Child: existing, Depth: 1})
	require.Equal(t, 1, r.BQ[0].Len())
	r.BQ[0].TryDequeue() // drain

	// A second path to the same position, via a different parent.
	secondParent := testPosition(22)
	w.step(equeue.Item{Parent: &secondParent, Child: existing, Depth: 5})

	h, _ := g.Get(existing)
	v, _ := h.Get()
	require.ElementsMatch(t, []position.Position{firstParent, secondParent}, v.Parents())
	// Every known parent is re-queued, one depth shallower than the child.
	require.Equal(t, 2, r.BQ[0].Len())
	var requeued []position.Position
	for i := 0; i < 2; i++ {
		p, depth, ok := r.BQ[0].TryDequeue()
		require.True(t, ok)
		require.Equal(t, 4, depth)
		requeued = append(requeued, p)
	}
	require.ElementsMatch(t, []position.Position{firstParent, secondParent}, requeued)
}

func TestExpansionPresentBranchKnownParentDoesNotRequeue(t *testing.T) {
	_, r, o, w := newExpansionFixture()
	existing := testPosition(30)
	parent := testPosition(31)
	o.verdicts[existing] = oracle.Evaluation{Kind: oracle.Draw}

	w.step(equeue.Item{Parent: &parent, Child: existing, Depth: 1})
	r.BQ[0].TryDequeue() // drain the first requeue

	w.step(equeue.Item{Parent: &parent, Child: existing, Depth: 1})
	require.Equal(t, 0, r.BQ[0].Len())
}
