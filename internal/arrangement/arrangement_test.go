package arrangement

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chessgraph/engine/internal/position"
)

func square(kind byte, side position.Side) byte {
	return position.MakeSquare(kind, side, false)
}

func startingPosition() position.Position {
	var sq [64]byte
	back := []byte{position.Rook, position.Knight, position.Bishop, position.Queen, position.King, position.Bishop, position.Knight, position.Rook}
	for file := 0; file < 8; file++ {
		sq[file] = square(back[file], position.White)
		sq[8+file] = square(position.Pawn, position.White)
		sq[48+file] = square(position.Pawn, position.Black)
		sq[56+file] = square(back[file], position.Black)
	}
	return position.Position{Squares: sq, SideToMove: position.White}
}

func TestOfIsColorSymmetric(t *testing.T) {
	p := startingPosition()
	a := Of(p)

	// Swap every occupied square's color bit to flip which color is White;
	// the Arrangement must be identical since it never labels sides by color.
	var flipped [64]byte
	for i, sq := range p.Squares {
		if position.Kind(sq) == position.NoPiece {
			continue
		}
		other := position.Black
		if position.Occupant(sq) == position.Black {
			other = position.White
		}
		flipped[i] = position.MakeSquare(position.Kind(sq), other, false)
	}
	q := position.Position{Squares: flipped, SideToMove: position.Black}
	b := Of(q)

	require.Equal(t, a, b)
}

func TestOfStartingPositionIsBalanced(t *testing.T) {
	a := Of(startingPosition())
	require.Equal(t, a.Side[0], a.Side[1])
	require.EqualValues(t, 8, a.Side[0].PawnCount)
	require.Equal(t, [4]uint8{2, 2, 2, 1}, a.Side[0].NonPawn)
}

func TestCanReachPawnCountNeverIncreases(t *testing.T) {
	src := SideShape{PawnCount: 3}
	dst := SideShape{PawnCount: 4}
	require.False(t, canReachShape(src, dst))
}

func TestCanReachPromotionExplainsNonPawnGain(t *testing.T) {
	src := SideShape{PawnCount: 2, NonPawn: [4]uint8{1, 1, 2, 1}}
	// one pawn promotes to a queen: pawn count -1, queen count +1.
	dst := SideShape{PawnCount: 1, NonPawn: [4]uint8{1, 1, 2, 2}}
	require.True(t, canReachShape(src, dst))
}

func TestCanReachRejectsUnexplainedNonPawnGain(t *testing.T) {
	src := SideShape{PawnCount: 0, NonPawn: [4]uint8{1, 1, 2, 1}}
	dst := SideShape{PawnCount: 0, NonPawn: [4]uint8{1, 1, 2, 2}}
	require.False(t, canReachShape(src, dst))
}

func TestCanReachArrangementTriesBothPairings(t *testing.T) {
	strong := SideShape{NonPawn: [4]uint8{2, 2, 2, 1}}
	weak := SideShape{PawnCount: 5}

	src := Arrangement{Side: [2]SideShape{strong, weak}}
	// after heavy simplification, the shapes have swapped which is "larger".
	dstFromStrong := SideShape{NonPawn: [4]uint8{0, 0, 0, 1}}
	dstFromWeak := SideShape{PawnCount: 5}
	dst := Arrangement{Side: [2]SideShape{dstFromWeak, dstFromStrong}}

	require.True(t, CanReach(src, dst))
}

func TestCanReachRejectsImpossibleArrangement(t *testing.T) {
	src := Arrangement{Side: [2]SideShape{{PawnCount: 1}, {PawnCount: 1}}}
	dst := Arrangement{Side: [2]SideShape{{PawnCount: 1, NonPawn: [4]uint8{0, 0, 0, 1}}, {PawnCount: 1, NonPawn: [4]uint8{0, 0, 0, 1}}}}
	require.False(t, CanReach(src, dst))
}
