package oracle

import (
	"github.com/chessgraph/engine/internal/board"
	"github.com/chessgraph/engine/internal/position"
)

// pieceKind maps a board.PieceType (0-indexed, Pawn=0..King=5) to a
// position square kind byte (0 reserved for "empty", Pawn=1..King=6).
var pieceKind = [6]byte{
	position.Pawn, position.Knight, position.Bishop,
	position.Rook, position.Queen, position.King,
}

// kindToPieceType is the inverse of pieceKind.
var kindToPieceType = map[byte]board.PieceType{
	position.Pawn:   board.Pawn,
	position.Knight: board.Knight,
	position.Bishop: board.Bishop,
	position.Rook:   board.Rook,
	position.Queen:  board.Queen,
	position.King:   board.King,
}

func sideOf(c board.Color) position.Side {
	if c == board.Black {
		return position.Black
	}
	return position.White
}

func colorOf(s position.Side) board.Color {
	if s == position.Black {
		return board.Black
	}
	return board.White
}

// toPosition converts the Oracle's internal bitboard representation into
// the graph's canonical Position. The en-passant target square (if any)
// becomes the "just double moved" bit on the pawn that sits on it one rank
// behind the target, per the Squares encoding in internal/position.
func toPosition(bp *board.Position) position.Position {
	var p position.Position
	for sq := 0; sq < 64; sq++ {
		piece := bp.PieceAt(board.Square(sq))
		if piece == board.NoPiece {
			continue
		}
		kind := pieceKind[piece.Type()]
		p.Squares[sq] = position.MakeSquare(kind, sideOf(piece.Color()), false)
	}
	if bp.EnPassant != board.NoSquare {
		// The pawn that just double-moved sits one rank behind the en
		// passant target, on the mover's side (the side NOT to move, since
		// the double move already happened).
		mover := bp.SideToMove.Other()
		delta := 8
		if mover == board.White {
			delta = -8
		}
		pawnSq := int(bp.EnPassant) + delta
		if pawnSq >= 0 && pawnSq < 64 {
			p.Squares[pawnSq] = position.MakeSquare(position.Kind(p.Squares[pawnSq]), sideOf(mover), true)
		}
	}
	p.SideToMove = sideOf(bp.SideToMove)
	p.Castling = position.Rights(bp.CastlingRights)
	if bp.HalfMoveClock > 255 {
		p.HalfMoveClock = 255
	} else {
		p.HalfMoveClock = uint8(bp.HalfMoveClock)
	}
	return p
}

// toBoard converts a canonical Position back into the richer bitboard
// representation for move generation and evaluation. The en-passant target
// square is reconstructed from whichever pawn carries the "just double
// moved" bit; at most one pawn should ever carry it, since the Oracle
// clears it on every other pawn each time it produces a successor.
func toBoard(p position.Position) *board.Position {
	bp := &board.Position{}
	bp.Clear()
	for sq := 0; sq < 64; sq++ {
		b := p.Squares[sq]
		kind := position.Kind(b)
		if kind == position.NoPiece {
			continue
		}
		pt, ok := kindToPieceType[kind]
		if !ok {
			continue
		}
		c := colorOf(position.Occupant(b))
		bb := board.SquareBB(board.Square(sq))
		bp.Pieces[c][pt] |= bb
		bp.Occupied[c] |= bb
		bp.AllOccupied |= bb
		if pt == board.King {
			bp.KingSquare[c] = board.Square(sq)
		}

		if kind == position.Pawn && position.JustDoubleMoved(b) {
			owner := position.Occupant(b)
			delta := -8
			if owner == position.Black {
				delta = 8
			}
			bp.EnPassant = board.Square(sq + delta)
		}
	}
	bp.SideToMove = colorOf(p.SideToMove)
	bp.CastlingRights = board.CastlingRights(p.Castling)
	bp.HalfMoveClock = int(p.HalfMoveClock)
	bp.FullMoveNumber = 1
	bp.UpdateCheckers()
	return bp
}
