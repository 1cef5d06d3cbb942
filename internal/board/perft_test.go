package board

import "testing"

// perft counts leaf nodes reachable in exactly depth plies — the standard
// cross-check for move generator correctness against known node counts.
func perft(p *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}
	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}
	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := p.MakeMove(m)
		nodes += perft(p, depth-1)
		p.UnmakeMove(m, undo)
	}
	return nodes
}

type perftCase struct {
	fen    string
	counts map[int]int64
}

func runPerftCase(t *testing.T, tc perftCase) {
	t.Helper()
	fen := tc.fen
	if fen == "" {
		fen = StartFEN
	}
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("parsing FEN %q: %v", fen, err)
	}
	for depth, want := range tc.counts {
		depth, want := depth, want
		t.Run("", func(t *testing.T) {
			if got := perft(pos, depth); got != want {
				t.Errorf("perft(%d) = %d, want %d", depth, got, want)
			}
		})
	}
}

func TestPerftStartingPosition(t *testing.T) {
	runPerftCase(t, perftCase{
		counts: map[int]int64{1: 20, 2: 400, 3: 8902, 4: 197281},
	})
}

// TestPerftKiwipete exercises the well-known Kiwipete position, which packs
// in castling, promotions, and en-passant in a single move generation pass.
func TestPerftKiwipete(t *testing.T) {
	runPerftCase(t, perftCase{
		fen:    "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
		counts: map[int]int64{1: 48, 2: 2039, 3: 97862},
	})
}

// TestPerftPosition3 targets en-passant edge cases.
func TestPerftPosition3(t *testing.T) {
	runPerftCase(t, perftCase{
		fen:    "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
		counts: map[int]int64{1: 14, 2: 191, 3: 2812, 4: 43238},
	})
}

// TestPerftEnPassantPin checks a horizontal-pin edge case: the black pawn on
// e4 could capture en passant onto d3, but doing so would slide the white
// rook on h4 straight into the black king on a4 once both pawns vanish.
func TestPerftEnPassantPin(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("parsing FEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsEnPassant() {
			t.Errorf("en passant move %v should be illegal (horizontal pin)", m)
		}
	}

	runPerftCase(t, perftCase{
		fen:    "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
		counts: map[int]int64{1: 6, 2: 94},
	})
}
