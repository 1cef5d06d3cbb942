// Package oracle is the external move-generator/evaluator collaborator
// spec.md leaves pluggable: a pure function from a Position to its
// Evaluation and legal successor Positions. This implementation is backed
// by internal/board's bitboard legal-move generator and internal/boardeval's
// static evaluator, both adapted from the teacher engine; internal/bookcache
// is consulted only to bias successor ordering, never to filter the set.
package oracle

import (
	"github.com/chessgraph/engine/internal/board"
	"github.com/chessgraph/engine/internal/boardeval"
	"github.com/chessgraph/engine/internal/position"
)

// Book is the subset of internal/bookcache's API the Oracle needs: a
// best-known reply for a position, used only to order successors for
// display, never to prune them.
type Book interface {
	BestMove(key uint64) (from, to int, ok bool)
}

// Oracle evaluates positions and generates their legal successors.
type Oracle struct {
	book Book
}

// New builds an Oracle. book may be nil, in which case successors are
// returned in board order with no bias.
func New(book Book) *Oracle {
	return &Oracle{book: book}
}

// StartingPosition returns the standard chess starting position, encoded
// as the graph's canonical Position.
func StartingPosition() position.Position {
	return toPosition(board.NewPosition())
}

// FromFEN parses a FEN string into the graph's canonical Position.
func FromFEN(fen string) (position.Position, error) {
	bp, err := board.ParseFEN(fen)
	if err != nil {
		return position.Position{}, err
	}
	return toPosition(bp), nil
}

// drawHalfMoveClock is the half-move count at which the fifty-move rule
// forces a draw, expressed on the Position's own uint8 clock.
const drawHalfMoveClock = 100

// Evaluate returns the Evaluation of p from the perspective of the side to
// move in p, plus every legal successor position, normalized so that
// en-passant rights older than one ply never leak into the key (handled by
// toPosition, which only ever sets the "just double moved" bit on the pawn
// that produced the current en-passant target, if any).
func (o *Oracle) Evaluate(p position.Position) (Evaluation, []position.Position) {
	bp := toBoard(p)
	moves := bp.GenerateLegalMoves()

	if moves.Len() == 0 {
		if bp.InCheck() {
			return Evaluation{Kind: Loss, Mate: 0}, nil
		}
		return Evaluation{Kind: Draw}, nil
	}
	if bp.HalfMoveClock >= drawHalfMoveClock {
		return Evaluation{Kind: Draw}, nil
	}

	score := boardeval.Evaluate(bp)
	return Evaluation{Kind: Scored, Score: int32(score)}, o.successors(bp, moves)
}

func (o *Oracle) successors(bp *board.Position, moves *board.MoveList) []position.Position {
	out := make([]position.Position, 0, moves.Len())
	if o.book != nil {
		if from, to, ok := o.book.BestMove(bp.PolyglotHash()); ok {
			reorderBookMoveFirst(moves, from, to)
		}
	}
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := bp.MakeMove(m)
		out = append(out, toPosition(bp))
		bp.UnmakeMove(m, undo)
	}
	return out
}

// reorderBookMoveFirst moves the book's suggested from/to move to the front
// of the list, if it is present among the legal moves. Pure display bias:
// the set of successors returned is unaffected.
func reorderBookMoveFirst(moves *board.MoveList, from, to int) {
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if int(m.From()) == from && int(m.To()) == to {
			if i != 0 {
				first := moves.Get(0)
				moves.Set(0, m)
				moves.Set(i, first)
			}
			return
		}
	}
}

// ApplyUserMove parses a "<from>-<to>" or "<from><to>" coordinate move
// (e.g. "e2-e4" or "e2e4") typed at the dashboard's move prompt against p
// and returns the resulting position, for root-change. Promotions append a
// piece letter, e.g. "e7-e8q".
func ApplyUserMove(p position.Position, notation string) (position.Position, bool) {
	bp := toBoard(p)
	move, err := board.ParseMove(stripDash(notation), bp)
	if err != nil {
		return position.Position{}, false
	}
	if !bp.IsLegal(move) {
		return position.Position{}, false
	}
	bp.MakeMove(move)
	return toPosition(bp), true
}

func stripDash(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
