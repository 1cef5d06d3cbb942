package oracle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chessgraph/engine/internal/board"
	"github.com/chessgraph/engine/internal/position"
)

func TestConvertRoundTripStartingPosition(t *testing.T) {
	bp := board.NewPosition()
	p := toPosition(bp)
	back := toBoard(p)

	require.Equal(t, bp.SideToMove, back.SideToMove)
	require.Equal(t, bp.CastlingRights, back.CastlingRights)
	require.Equal(t, bp.AllOccupied, back.AllOccupied)
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			require.Equal(t, bp.Pieces[c][pt], back.Pieces[c][pt], "color %v piece %v", c, pt)
		}
	}
}

func TestEvaluateStartingPositionHasTwentyMoves(t *testing.T) {
	o := New(nil)
	bp := board.NewPosition()
	eval, successors := o.Evaluate(toPosition(bp))

	require.Equal(t, Scored, eval.Kind)
	require.Len(t, successors, 20)
}

func TestEvaluateFoolsMateIsLossForSideToMove(t *testing.T) {
	bp, err := board.ParseFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	require.NoError(t, err)
	o := New(nil)

	eval, successors := o.Evaluate(toPosition(bp))
	require.Equal(t, Loss, eval.Kind)
	require.Zero(t, eval.Mate)
	require.Empty(t, successors)
}

func TestEvaluateStalemateIsDraw(t *testing.T) {
	// Black king h8, White king f7 and queen g6: no check, no escape square.
	bp, err := board.ParseFEN("7k/5K2/6Q1/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)
	o := New(nil)

	eval, successors := o.Evaluate(toPosition(bp))
	require.Equal(t, Draw, eval.Kind)
	require.Empty(t, successors)
}

func TestEvaluateFiftyMoveRuleIsDrawWithNoSuccessors(t *testing.T) {
	// Bare kings, plenty of legal moves available, but the half-move clock
	// has already hit the fifty-move threshold: this is a terminal draw,
	// not a position to keep expanding.
	bp, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 100 60")
	require.NoError(t, err)
	o := New(nil)

	eval, successors := o.Evaluate(toPosition(bp))
	require.Equal(t, Draw, eval.Kind)
	require.Empty(t, successors)
}

func TestApplyUserMovePawnDoubleStep(t *testing.T) {
	bp := board.NewPosition()
	p := toPosition(bp)

	next, ok := ApplyUserMove(p, "e2-e4")
	require.True(t, ok)
	require.Equal(t, position.Black, next.SideToMove)
}

func TestEvaluationInvertRoundTrip(t *testing.T) {
	win := Evaluation{Kind: Win, Mate: 3}
	require.Equal(t, Evaluation{Kind: Loss, Mate: 4}, win.Invert())

	scored := Evaluation{Kind: Scored, Score: 42}
	require.Equal(t, Evaluation{Kind: Scored, Score: -42}, scored.Invert())

	draw := Evaluation{Kind: Draw}
	require.Equal(t, draw, draw.Invert())
}

func TestEvaluationOrdering(t *testing.T) {
	require.True(t, (Evaluation{Kind: Loss}).Less(Evaluation{Kind: Draw}))
	require.True(t, (Evaluation{Kind: Draw}).Less(Evaluation{Kind: Scored}))
	require.True(t, (Evaluation{Kind: Scored, Score: 100}).Less(Evaluation{Kind: Win}))
	require.True(t, (Evaluation{Kind: Win, Mate: 5}).Less(Evaluation{Kind: Win, Mate: 1}))
}
