package book

import (
	"encoding/binary"
	"io"
	"math/rand"
	"os"
	"sort"

	"github.com/chessgraph/engine/internal/board"
)

// BookEntry is one candidate reply for a position, as Polyglot stores it:
// a move plus the relative weight it should be picked with.
type BookEntry struct {
	Move   board.Move
	Weight uint16
}

// Book is an in-memory Polyglot opening book, keyed by Polyglot hash.
type Book struct {
	byKey map[uint64][]BookEntry
}

func New() *Book {
	return &Book{byKey: make(map[uint64][]BookEntry)}
}

func LoadPolyglot(filename string) (*Book, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadPolyglotReader(file)
}

// polyglotRecordSize is the fixed 16-byte width of one Polyglot book entry:
// 8-byte key, 2-byte move, 2-byte weight, 4 bytes of learn data we ignore.
const polyglotRecordSize = 16

func LoadPolyglotReader(r io.Reader) (*Book, error) {
	b := New()
	var record [polyglotRecordSize]byte

	for {
		if _, err := io.ReadFull(r, record[:]); err != nil {
			if err == io.EOF {
				return b, nil
			}
			return nil, err
		}

		key := binary.BigEndian.Uint64(record[0:8])
		move := decodePolyglotMove(binary.BigEndian.Uint16(record[8:10]))
		weight := binary.BigEndian.Uint16(record[10:12])
		if move == board.NoMove {
			continue
		}
		b.byKey[key] = append(b.byKey[key], BookEntry{Move: move, Weight: weight})
	}
}

// polyglotCastlingRetarget maps Polyglot's king-captures-rook castling
// encoding, keyed by (origin, destination), onto this engine's
// king-steps-two-squares encoding.
var polyglotCastlingRetarget = map[[2]board.Square]board.Square{
	{board.E1, board.H1}: board.G1,
	{board.E1, board.A1}: board.C1,
	{board.E8, board.H8}: board.G8,
	{board.E8, board.A8}: board.C8,
}

var polyglotPromotionPieces = [5]board.PieceType{
	board.NoPieceType, board.Knight, board.Bishop, board.Rook, board.Queen,
}

// decodePolyglotMove unpacks a 16-bit Polyglot move: bits 0-5 destination,
// 6-11 origin, 12-14 promotion piece.
func decodePolyglotMove(data uint16) board.Move {
	from := board.NewSquare(int((data>>6)&7), int((data>>9)&7))
	to := board.NewSquare(int(data&7), int((data>>3)&7))
	promo := (data >> 12) & 7

	if retarget, isCastle := polyglotCastlingRetarget[[2]board.Square{from, to}]; isCastle {
		to = retarget
	}

	if promo > 0 && int(promo) < len(polyglotPromotionPieces) {
		return board.NewPromotion(from, to, polyglotPromotionPieces[promo])
	}
	return board.NewMove(from, to)
}

func byWeightDescending(entries []BookEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Weight > entries[j].Weight })
}

// Probe returns a weighted-random book move for pos, or (NoMove, false) if
// the position isn't in the book.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	if b == nil {
		return board.NoMove, false
	}
	entries := b.byKey[pos.PolyglotHash()]
	if len(entries) == 0 {
		return board.NoMove, false
	}
	byWeightDescending(entries)

	var total uint32
	for _, e := range entries {
		total += uint32(e.Weight)
	}
	if total == 0 {
		return reconcileWithLegalMoves(pos, entries[0].Move), true
	}

	roll := rand.Uint32() % total
	var cumulative uint32
	for _, e := range entries {
		cumulative += uint32(e.Weight)
		if roll < cumulative {
			return reconcileWithLegalMoves(pos, e.Move), true
		}
	}
	return reconcileWithLegalMoves(pos, entries[0].Move), true
}

// ProbeAll returns every book move for pos, heaviest weight first.
func (b *Book) ProbeAll(pos *board.Position) []BookEntry {
	if b == nil {
		return nil
	}
	entries := b.byKey[pos.PolyglotHash()]
	if len(entries) == 0 {
		return nil
	}
	out := make([]BookEntry, len(entries))
	copy(out, entries)
	byWeightDescending(out)
	return out
}

// reconcileWithLegalMoves finds the legal move sharing move's from/to/
// promotion, which carries the castling/en-passant flags Polyglot's bare
// encoding drops.
func reconcileWithLegalMoves(pos *board.Position, move board.Move) board.Move {
	from, to := move.From(), move.To()
	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		candidate := legal.Get(i)
		if candidate.From() != from || candidate.To() != to {
			continue
		}
		if move.IsPromotion() != candidate.IsPromotion() {
			continue
		}
		if move.IsPromotion() && move.Promotion() != candidate.Promotion() {
			continue
		}
		return candidate
	}
	return board.NoMove
}

// Entries exposes every loaded position's book entries, keyed by Polyglot
// hash. Used by internal/bookcache to flatten a Polyglot file into its
// badger-backed lookup table.
func (b *Book) Entries() map[uint64][]BookEntry {
	return b.byKey
}

// Size returns the number of distinct positions the book covers.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.byKey)
}
