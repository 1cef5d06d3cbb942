// Package arrangement implements the color-symmetric equivalence class a
// Position is sharded and pruned by: two positions share an Arrangement iff
// they have the same material on both sides, independent of which color is
// "White" in the encoding. It also implements can_reach, a conservative
// (never-false-negative) over-approximation of "some pseudo-legal game
// could ever move material from one Arrangement to the other", used by the
// root-change coordinator to prune buckets that can provably never be
// reached from the new root.
package arrangement

import (
	"github.com/cespare/xxhash/v2"

	"github.com/chessgraph/engine/internal/position"
)

// SideShape is the piece-count profile of one side: pawns plus the four
// promotable non-pawn kinds. Kings are implicit (every legal position has
// exactly one per side) and excluded from the shape.
type SideShape struct {
	PawnCount uint8
	NonPawn   [4]uint8 // knight, bishop, rook, queen
}

func (s SideShape) total() int {
	n := int(s.PawnCount)
	for _, c := range s.NonPawn {
		n += int(c)
	}
	return n
}

// less orders two shapes so arrangement construction is deterministic
// regardless of which side is larger: more total material first, ties
// broken lexicographically by pawn count then each non-pawn kind in turn.
func (s SideShape) less(o SideShape) bool {
	if s.total() != o.total() {
		return s.total() < o.total()
	}
	if s.PawnCount != o.PawnCount {
		return s.PawnCount < o.PawnCount
	}
	for i := range s.NonPawn {
		if s.NonPawn[i] != o.NonPawn[i] {
			return s.NonPawn[i] < o.NonPawn[i]
		}
	}
	return false
}

// Arrangement is the shard/prune key: Side[0] is always the
// not-smaller-than-Side[1] shape, so swapping which color is White never
// changes the Arrangement.
type Arrangement struct {
	Side [2]SideShape
}

// Hash returns a stable hash of the Arrangement. internal/graph does not
// use it: its top-level shard comes from the Position's own Hash.
func (a Arrangement) Hash() uint64 {
	var buf [10]byte
	buf[0] = a.Side[0].PawnCount
	copy(buf[1:5], a.Side[0].NonPawn[:])
	buf[5] = a.Side[1].PawnCount
	copy(buf[6:10], a.Side[1].NonPawn[:])
	return xxhash.Sum64(buf[:])
}

var nonPawnKind = [4]byte{position.Knight, position.Bishop, position.Rook, position.Queen}

func shapeOf(p position.Position, side position.Side) SideShape {
	var s SideShape
	for _, sq := range p.Squares {
		if position.Kind(sq) == position.NoPiece || position.Occupant(sq) != side {
			continue
		}
		switch position.Kind(sq) {
		case position.Pawn:
			s.PawnCount++
		case position.Knight:
			s.NonPawn[0]++
		case position.Bishop:
			s.NonPawn[1]++
		case position.Rook:
			s.NonPawn[2]++
		case position.Queen:
			s.NonPawn[3]++
		}
	}
	return s
}

// Of computes the Arrangement of a position.
func Of(p position.Position) Arrangement {
	white := shapeOf(p, position.White)
	black := shapeOf(p, position.Black)
	if white.less(black) {
		return Arrangement{Side: [2]SideShape{black, white}}
	}
	return Arrangement{Side: [2]SideShape{white, black}}
}

// canReachShape conservatively over-approximates "a side with shape src can
// reach shape dst via some sequence of legal moves": pawns never increase
// in number (captures and promotions both strictly remove a pawn from the
// board, promotion removes it from the pawn count), and any increase in
// non-pawn count can only come from a pawn promoting, so the total
// non-pawn increase can never exceed the number of pawns lost.
func canReachShape(src, dst SideShape) bool {
	pawnsLost := int(src.PawnCount) - int(dst.PawnCount)
	if pawnsLost < 0 {
		return false
	}
	nonPawnGain := 0
	for i := range src.NonPawn {
		if d := int(dst.NonPawn[i]) - int(src.NonPawn[i]); d > 0 {
			nonPawnGain += d
		}
	}
	return nonPawnGain <= pawnsLost
}

// CanReach conservatively over-approximates whether the Arrangement src can
// ever transition to dst. It considers both ways of pairing src's two side
// shapes against dst's (material reshuffling never swaps which physical
// color owns which shape, but Arrangement itself is already
// color-unlabeled, so both pairings are legitimate candidates) and accepts
// if either pairing is individually reachable per side. False means dst is
// provably unreachable from src and its bucket is safe to prune; true may
// still be a false positive (by design — §4.6 requires never discarding a
// reachable subtree).
func CanReach(src, dst Arrangement) bool {
	direct := canReachShape(src.Side[0], dst.Side[0]) && canReachShape(src.Side[1], dst.Side[1])
	crossed := canReachShape(src.Side[0], dst.Side[1]) && canReachShape(src.Side[1], dst.Side[0])
	return direct || crossed
}
