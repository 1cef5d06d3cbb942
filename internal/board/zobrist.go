package board

// Zobrist keys, generated once at init from a fixed-seed PRNG so hashes are
// reproducible across runs (and across processes comparing the same
// position).
var (
	zobristPiece      [2][7][64]uint64 // [Color][PieceType][Square]; 7 keeps NoPieceType in bounds
	zobristEnPassant  [8]uint64        // one per file
	zobristCastling   [16]uint64       // one per castling-rights combination
	zobristSideToMove uint64
)

func init() {
	initZobrist()
}

// keyGen is an xorshift64* generator; deterministic across runs given the
// same seed, which is all Zobrist key generation needs.
type keyGen struct {
	state uint64
}

func newKeyGen(seed uint64) *keyGen {
	return &keyGen{state: seed}
}

func (g *keyGen) next() uint64 {
	g.state ^= g.state >> 12
	g.state ^= g.state << 25
	g.state ^= g.state >> 27
	return g.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newKeyGen(0x98F107A2BEEF1234)

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for file := 0; file < 8; file++ {
		zobristEnPassant[file] = rng.next()
	}
	for i := 0; i < 16; i++ {
		zobristCastling[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

func ZobristPiece(c Color, pt PieceType, sq Square) uint64 { return zobristPiece[c][pt][sq] }
func ZobristEnPassant(file int) uint64                     { return zobristEnPassant[file] }
func ZobristCastling(cr CastlingRights) uint64              { return zobristCastling[cr] }
func ZobristSideToMove() uint64                             { return zobristSideToMove }
