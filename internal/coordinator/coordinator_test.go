package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chessgraph/engine/internal/graph"
	"github.com/chessgraph/engine/internal/oracle"
	"github.com/chessgraph/engine/internal/position"
	"github.com/chessgraph/engine/internal/worker"
)

func kingsOnly(whitePawns, blackPawns uint8) position.Position {
	var sq [64]byte
	sq[4] = position.MakeSquare(position.King, position.White, false)
	sq[60] = position.MakeSquare(position.King, position.Black, false)
	for i := uint8(0); i < whitePawns; i++ {
		sq[8+i] = position.MakeSquare(position.Pawn, position.White, false)
	}
	for i := uint8(0); i < blackPawns; i++ {
		sq[48+i] = position.MakeSquare(position.Pawn, position.Black, false)
	}
	return position.Position{Squares: sq, SideToMove: position.White}
}

func TestCommitMovePrunesUnreachableArrangements(t *testing.T) {
	g := graph.New(4)
	r := worker.NewRouter(2, 10*time.Millisecond)
	gate := worker.NewGate()
	c := New(g, r, gate)

	root := kingsOnly(8, 8)      // full pawn complement both sides
	reachable := kingsOnly(7, 8) // one white pawn traded off: reachable

	hRoot, _ := g.Edit(root)
	vRoot, _ := hRoot.Get()
	vRoot.Initialize(oracle.Evaluation{Kind: oracle.Scored}, nil)

	hReach, _ := g.Edit(reachable)
	vReach, _ := hReach.Get()
	vReach.Initialize(oracle.Evaluation{Kind: oracle.Scored}, nil)

	// Build a position whose arrangement can never follow from root: more
	// total material than root has (material only ever decreases, modulo
	// promotion, and there's no pawn deficit here to explain a gain).
	var unreachSquares [64]byte
	unreachSquares[4] = position.MakeSquare(position.King, position.White, false)
	unreachSquares[60] = position.MakeSquare(position.King, position.Black, false)
	for i := 0; i < 8; i++ {
		unreachSquares[8+i] = position.MakeSquare(position.Pawn, position.White, false)
		unreachSquares[48+i] = position.MakeSquare(position.Pawn, position.Black, false)
	}
	unreachSquares[1] = position.MakeSquare(position.Queen, position.White, false)
	unreachable := position.Position{Squares: unreachSquares, SideToMove: position.White}

	hUnreach, _ := g.Edit(unreachable)
	vUnreach, _ := hUnreach.Get()
	vUnreach.Initialize(oracle.Evaluation{Kind: oracle.Scored}, nil)

	require.NoError(t, c.CommitMove(context.Background(), root))

	_, ok := g.Get(root)
	require.True(t, ok)
	_, ok = g.Get(reachable)
	require.True(t, ok)
	_, ok = g.Get(unreachable)
	require.False(t, ok)
}

func TestCommitMovePrunesStaleQueueEntries(t *testing.T) {
	g := graph.New(2)
	r := worker.NewRouter(1, 10*time.Millisecond)
	gate := worker.NewGate()
	c := New(g, r, gate)

	root := kingsOnly(8, 8)

	var unreachSquares [64]byte
	unreachSquares[4] = position.MakeSquare(position.King, position.White, false)
	unreachSquares[60] = position.MakeSquare(position.King, position.Black, false)
	for i := 0; i < 8; i++ {
		unreachSquares[8+i] = position.MakeSquare(position.Pawn, position.White, false)
		unreachSquares[48+i] = position.MakeSquare(position.Pawn, position.Black, false)
	}
	unreachSquares[1] = position.MakeSquare(position.Queen, position.White, false)
	unreachable := position.Position{Squares: unreachSquares, SideToMove: position.White}

	r.EnqueueBackprop(0, unreachable)
	require.Equal(t, 1, r.BQ[0].Len())

	require.NoError(t, c.CommitMove(context.Background(), root))

	require.Equal(t, 0, r.BQ[0].Len())
}
