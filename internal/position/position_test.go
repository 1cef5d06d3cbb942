package position

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func startingSquares() [64]byte {
	var sq [64]byte
	back := []byte{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for file := 0; file < 8; file++ {
		sq[file] = MakeSquare(back[file], White, false)
		sq[8+file] = MakeSquare(Pawn, White, false)
		sq[48+file] = MakeSquare(Pawn, Black, false)
		sq[56+file] = MakeSquare(back[file], Black, false)
	}
	return sq
}

func TestMakeSquareRoundTrip(t *testing.T) {
	b := MakeSquare(Knight, Black, true)
	require.Equal(t, Knight, Kind(b))
	require.Equal(t, Black, Occupant(b))
	require.True(t, JustDoubleMoved(b))

	cleared := ClearDoubleMoved(b)
	require.False(t, JustDoubleMoved(cleared))
	require.Equal(t, Knight, Kind(cleared))
	require.Equal(t, Black, Occupant(cleared))
}

func TestMakeSquareEmpty(t *testing.T) {
	require.Equal(t, NoPiece, MakeSquare(NoPiece, White, true))
}

func TestPositionEquality(t *testing.T) {
	p1 := Position{Squares: startingSquares(), SideToMove: White, Castling: WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside}
	p2 := p1
	require.Equal(t, p1, p2)
	require.Equal(t, p1.Hash(), p2.Hash())

	p2.HalfMoveClock = 1
	require.NotEqual(t, p1, p2)
	require.NotEqual(t, p1.Hash(), p2.Hash())
}

func TestPositionIsMapKey(t *testing.T) {
	m := map[Position]int{}
	p := Position{Squares: startingSquares(), SideToMove: White}
	m[p] = 1
	q := p
	require.Equal(t, 1, m[q])
}

func TestRightsString(t *testing.T) {
	require.Equal(t, "-", Rights(0).String())
	require.Equal(t, "KQkq", (WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside).String())
	require.Equal(t, "Kq", (WhiteKingside | BlackQueenside).String())
}

func TestSideOther(t *testing.T) {
	require.Equal(t, Black, White.Other())
	require.Equal(t, White, Black.Other())
}

func TestStringDoesNotPanic(t *testing.T) {
	p := Position{Squares: startingSquares(), SideToMove: White, Castling: WhiteKingside}
	require.NotEmpty(t, p.String())
}
