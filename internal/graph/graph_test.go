package graph

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chessgraph/engine/internal/arrangement"
	"github.com/chessgraph/engine/internal/oracle"
	"github.com/chessgraph/engine/internal/position"
)

func samplePosition(halfMove uint8) position.Position {
	var sq [64]byte
	sq[4] = position.MakeSquare(position.King, position.White, false)
	sq[60] = position.MakeSquare(position.King, position.Black, false)
	return position.Position{Squares: sq, SideToMove: position.White, HalfMoveClock: halfMove}
}

func TestEditIsIdempotent(t *testing.T) {
	g := New(4)
	p := samplePosition(0)

	h1, created1 := g.Edit(p)
	require.True(t, created1)

	h2, created2 := g.Edit(p)
	require.False(t, created2)

	v1, ok := h1.Get()
	require.True(t, ok)
	v2, ok := h2.Get()
	require.True(t, ok)
	require.Same(t, v1, v2)
}

func TestGetMissingReturnsFalse(t *testing.T) {
	g := New(4)
	_, ok := g.Get(samplePosition(0))
	require.False(t, ok)
}

func TestGetAfterEditFindsVertex(t *testing.T) {
	g := New(4)
	p := samplePosition(0)
	g.Edit(p)

	h, ok := g.Get(p)
	require.True(t, ok)
	v, ok := h.Get()
	require.True(t, ok)
	require.Equal(t, p, v.Position)
}

func TestInitializeTwicePanics(t *testing.T) {
	g := New(1)
	h, _ := g.Edit(samplePosition(0))
	v, _ := h.Get()
	v.Initialize(oracle.Evaluation{Kind: oracle.Draw}, nil)
	require.True(t, v.Expanded())
	require.Panics(t, func() { v.Initialize(oracle.Evaluation{Kind: oracle.Draw}, nil) })
}

func TestAddParentDeduplicates(t *testing.T) {
	g := New(1)
	h, _ := g.Edit(samplePosition(0))
	v, _ := h.Get()

	parent := samplePosition(1)
	v.AddParent(parent)
	v.AddParent(parent)
	require.Len(t, v.Parents(), 1)
}

func TestSetBestChildOnlyImprovesOrFirstWrite(t *testing.T) {
	g := New(1)
	h, _ := g.Edit(samplePosition(0))
	v, _ := h.Get()

	worse := samplePosition(1)
	better := samplePosition(2)

	changed := v.SetBestChild(worse, oracle.Evaluation{Kind: oracle.Scored, Score: 5})
	require.True(t, changed)

	changed = v.SetBestChild(better, oracle.Evaluation{Kind: oracle.Scored, Score: 1})
	require.False(t, changed)

	child, eval, ok := v.BestChild()
	require.True(t, ok)
	require.Equal(t, worse, child)
	require.Equal(t, int32(5), eval.Score)

	// A refreshed evaluation of the *same* child always overwrites, even
	// when the score is unchanged or worse.
	changed = v.SetBestChild(worse, oracle.Evaluation{Kind: oracle.Scored, Score: 5})
	require.True(t, changed)

	changed = v.SetBestChild(better, oracle.Evaluation{Kind: oracle.Scored, Score: 10})
	require.True(t, changed)
}

func TestPruneMarksHandlesDead(t *testing.T) {
	g := New(1)
	p := samplePosition(0)
	h, _ := g.Edit(p)

	g.Prune(func(arrangement.Arrangement) bool { return false })

	_, ok := h.Get()
	require.False(t, ok)
	_, ok = g.Get(p)
	require.False(t, ok)
}

func TestPruneKeepsSurvivingArrangements(t *testing.T) {
	g := New(1)
	p := samplePosition(0)
	h, _ := g.Edit(p)
	keepArr := arrangement.Of(p)

	g.Prune(func(a arrangement.Arrangement) bool { return a == keepArr })

	_, ok := h.Get()
	require.True(t, ok)
}

func TestConcurrentEditSamePosition(t *testing.T) {
	g := New(4)
	p := samplePosition(0)

	var wg sync.WaitGroup
	handles := make([]Handle, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, _ := g.Edit(p)
			handles[i] = h
		}(i)
	}
	wg.Wait()

	first, _ := handles[0].Get()
	for _, h := range handles[1:] {
		v, ok := h.Get()
		require.True(t, ok)
		require.Same(t, first, v)
	}
	require.Equal(t, 1, g.Len())
}
