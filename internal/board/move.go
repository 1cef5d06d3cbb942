package board

import "fmt"

// Move packs a chess move into 16 bits:
//
//	bits 0-5:   origin square
//	bits 6-11:  destination square
//	bits 12-13: promotion piece, Knight=0 through Queen=3
//	bits 14-15: kind (normal, promotion, en passant, castling)
type Move uint16

const (
	kindNormal    uint16 = 0 << 14
	kindPromotion uint16 = 1 << 14
	kindEnPassant uint16 = 2 << 14
	kindCastling  uint16 = 3 << 14
)

// NoMove is the zero value, used as a sentinel for "no move."
const NoMove Move = 0

func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

func NewPromotion(from, to Square, promo PieceType) Move {
	rank := promo - Knight
	return Move(from) | Move(to)<<6 | Move(rank)<<12 | Move(kindPromotion)
}

func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(kindEnPassant)
}

func NewCastling(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(kindCastling)
}

func (m Move) From() Square { return Square(m & 0x3F) }
func (m Move) To() Square   { return Square((m >> 6) & 0x3F) }

// Flag reports the move's kind bits (compare against the Flag constants
// this package exposes via Is* predicates rather than directly).
func (m Move) Flag() uint16 { return uint16(m) & 0xC000 }

// Promotion reports the promoted-to piece type; only meaningful when
// IsPromotion is true.
func (m Move) Promotion() PieceType {
	return PieceType((m>>12)&3) + Knight
}

func (m Move) IsPromotion() bool { return m.Flag() == kindPromotion }
func (m Move) IsCastling() bool  { return m.Flag() == kindCastling }
func (m Move) IsEnPassant() bool { return m.Flag() == kindEnPassant }

// IsCapture reports whether playing m on pos removes an enemy piece.
func (m Move) IsCapture(pos *Position) bool {
	return m.IsEnPassant() || !pos.IsEmpty(m.To())
}

// IsQuiet reports whether m is neither a capture nor a promotion.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// String renders m in UCI notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	out := m.From().String() + m.To().String()
	if m.IsPromotion() {
		out += string([]byte{'n', 'b', 'r', 'q'}[m.Promotion()-Knight])
	}
	return out
}

// ParseMove decodes a UCI move string against pos, inferring castling and
// en-passant flags from the piece standing on the origin square.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotion(from, to, promo), nil
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()

	if pt == King && absInt(int(to)-int(from)) == 2 {
		return NewCastling(from, to), nil
	}
	if pt == Pawn && to == pos.EnPassant {
		return NewEnPassant(from, to), nil
	}
	return NewMove(from, to), nil
}

// MoveList is a fixed-capacity, allocation-free buffer of pseudo-legal moves.
type MoveList struct {
	buf [256]Move
	n   int
}

func NewMoveList() *MoveList { return &MoveList{} }

func (l *MoveList) Add(m Move) {
	l.buf[l.n] = m
	l.n++
}

func (l *MoveList) Len() int          { return l.n }
func (l *MoveList) Get(i int) Move    { return l.buf[i] }
func (l *MoveList) Set(i int, m Move) { l.buf[i] = m }
func (l *MoveList) Swap(i, j int)     { l.buf[i], l.buf[j] = l.buf[j], l.buf[i] }
func (l *MoveList) Clear()            { l.n = 0 }

func (l *MoveList) Contains(m Move) bool {
	for i := 0; i < l.n; i++ {
		if l.buf[i] == m {
			return true
		}
	}
	return false
}

// Slice exposes the list's live moves; callers must not retain it past the
// next Add or Clear.
func (l *MoveList) Slice() []Move {
	return l.buf[:l.n]
}

// UndoInfo captures everything MakeMove mutates so UnmakeMove can restore
// the position exactly, including a full snapshot of the piece bitboards
// rather than trying to replay the move's individual bit flips in reverse.
type UndoInfo struct {
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
	PawnKey        uint64
	Checkers       Bitboard
	KingSquare     [2]Square
	Pieces         [2][6]Bitboard
	Occupied       [2]Bitboard
	AllOccupied    Bitboard
	Valid          bool
}
