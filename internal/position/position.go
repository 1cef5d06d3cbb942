// Package position defines the canonical, graph-key position encoding: a
// fixed-size, comparable value type distinct from the richer bitboard
// representation internal/board uses for move generation. Every vertex in
// the Position Graph, every queue item in the EQ/BQ, and every Arrangement
// bucket is keyed on a Position value.
package position

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Side identifies which color is to move.
type Side uint8

const (
	White Side = iota
	Black
)

// Other returns the opposing side.
func (s Side) Other() Side {
	return s ^ 1
}

func (s Side) String() string {
	if s == Black {
		return "b"
	}
	return "w"
}

// Rights is a 4-bit castling-rights mask: K, Q, k, q.
type Rights uint8

const (
	WhiteKingside Rights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside
)

func (r Rights) String() string {
	if r == 0 {
		return "-"
	}
	var b strings.Builder
	if r&WhiteKingside != 0 {
		b.WriteByte('K')
	}
	if r&WhiteQueenside != 0 {
		b.WriteByte('Q')
	}
	if r&BlackKingside != 0 {
		b.WriteByte('k')
	}
	if r&BlackQueenside != 0 {
		b.WriteByte('q')
	}
	return b.String()
}

// Square byte layout: bits0-2 piece kind (1-6, 0 = empty), bit3 color
// (0=white, 1=black), bit4 "just moved two squares" (en passant target,
// pawns only). Bits 5-7 are unused.
const (
	pieceMask = 0x07
	colorBit  = 1 << 3
	doubleBit = 1 << 4
)

// Piece kinds as stored in a Squares byte. Zero means empty square.
const (
	NoPiece byte = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Position is the literal 64-square-array encoding the Position Graph,
// Expansion Queue, and Backpropagation Queue key on. All fields are
// fixed-size and comparable: Position is a valid Go map key, and `==` is
// position equality.
type Position struct {
	Squares       [64]byte
	SideToMove    Side
	Castling      Rights
	HalfMoveClock uint8
}

// MakeSquare packs a piece kind, color, and en-passant-eligible flag into a
// single Squares byte.
func MakeSquare(kind byte, side Side, justDoubleMoved bool) byte {
	if kind == NoPiece {
		return NoPiece
	}
	b := kind & pieceMask
	if side == Black {
		b |= colorBit
	}
	if justDoubleMoved {
		b |= doubleBit
	}
	return b
}

// Kind returns the piece kind on a Squares byte (NoPiece if empty).
func Kind(sq byte) byte { return sq & pieceMask }

// Occupant reports the side occupying a Squares byte; only meaningful when
// Kind(sq) != NoPiece.
func Occupant(sq byte) Side {
	if sq&colorBit != 0 {
		return Black
	}
	return White
}

// JustDoubleMoved reports whether the pawn on this square double-stepped on
// the immediately preceding ply, i.e. whether it is a legal en passant
// target this move.
func JustDoubleMoved(sq byte) bool { return sq&doubleBit != 0 }

// ClearDoubleMoved strips the en-passant flag from a Squares byte, leaving
// the piece kind and color unchanged.
func ClearDoubleMoved(sq byte) byte { return sq &^ doubleBit }

// Hash returns a fast, well-distributed hash of the position's bytes
// (squares in index order, then side, castling, and half-move clock) for use
// as a shard/cache key. It is not a Zobrist incremental
// hash — Position is recomputed, not incrementally updated, since the
// Oracle only ever hands the graph whole successor positions.
func (p Position) Hash() uint64 {
	var buf [67]byte
	copy(buf[:64], p.Squares[:])
	buf[64] = byte(p.SideToMove)
	buf[65] = byte(p.Castling)
	buf[66] = byte(p.HalfMoveClock)
	return xxhash.Sum64(buf[:])
}

var kindChar = [7]byte{'.', 'P', 'N', 'B', 'R', 'Q', 'K'}

// String renders the position as an 8x8 ASCII board plus side-to-move,
// castling rights, and half-move clock, for log lines and dashboard debug
// dumps — not a FEN (the Oracle's board.Position owns FEN parsing/printing).
func (p Position) String() string {
	var b strings.Builder
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&b, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sq := p.Squares[rank*8+file]
			c := kindChar[Kind(sq)]
			if Kind(sq) != NoPiece && Occupant(sq) == Black {
				c = c | 0x20 // lowercase for black
			}
			b.WriteByte(c)
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "side=%s castling=%s halfmove=%d", p.SideToMove, p.Castling, p.HalfMoveClock)
	return b.String()
}
