package board

// Polyglot keys are a separate table from the internal Zobrist keys: they
// follow the Polyglot opening-book specification's exact PRNG seed and
// piece ordering so PolyglotHash can look positions up in standard books.
var (
	polyglotPieces     [12][64]uint64 // index: polyglotPieceIndex(color, pt), then square
	polyglotCastling   [4]uint64      // white-king, white-queen, black-king, black-queen side
	polyglotEnPassant  [8]uint64      // one per file
	polyglotSideToMove uint64
)

func init() {
	initPolyglotKeys()
}

// polyglotPieceIndex maps (color, type) to Polyglot's piece ordering:
// black pawn..king occupy 0-5, white pawn..king occupy 6-11.
func polyglotPieceIndex(c Color, pt PieceType) int {
	if c == White {
		return int(pt) + 6
	}
	return int(pt)
}

var polyglotCastlingFlags = [4]CastlingRights{
	WhiteKingSideCastle, WhiteQueenSideCastle, BlackKingSideCastle, BlackQueenSideCastle,
}

// epCapturablePawns returns the enemy pawn(s) that could legally execute
// the en-passant capture on p.EnPassant right now, ignoring pins — Polyglot
// only folds the en-passant key in when such a pawn exists.
func (p *Position) epCapturablePawns() Bitboard {
	if p.EnPassant == NoSquare {
		return 0
	}
	file := p.EnPassant.File()
	us := p.SideToMove
	originRank := 4
	if us == Black {
		originRank = 3
	}

	var neighbors Bitboard
	if file > 0 {
		neighbors |= SquareBB(NewSquare(file-1, originRank))
	}
	if file < 7 {
		neighbors |= SquareBB(NewSquare(file+1, originRank))
	}
	return neighbors & p.Pieces[us][Pawn]
}

// PolyglotHash computes the position's key under the Polyglot opening-book
// format, independent of the engine's own Hash field.
func (p *Position) PolyglotHash() uint64 {
	var hash uint64

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			idx := polyglotPieceIndex(c, pt)
			for bb != 0 {
				hash ^= polyglotPieces[idx][bb.PopLSB()]
			}
		}
	}

	for i, flag := range polyglotCastlingFlags {
		if p.CastlingRights&flag != 0 {
			hash ^= polyglotCastling[i]
		}
	}

	if p.epCapturablePawns() != 0 {
		hash ^= polyglotEnPassant[p.EnPassant.File()]
	}

	if p.SideToMove == White {
		hash ^= polyglotSideToMove
	}

	return hash
}

func initPolyglotKeys() {
	rng := newKeyGen(0x37b4a4b3f0d1c0d0)

	for piece := 0; piece < 12; piece++ {
		for sq := 0; sq < 64; sq++ {
			polyglotPieces[piece][sq] = rng.next()
		}
	}
	for i := 0; i < 4; i++ {
		polyglotCastling[i] = rng.next()
	}
	for i := 0; i < 8; i++ {
		polyglotEnPassant[i] = rng.next()
	}
	polyglotSideToMove = rng.next()
}
