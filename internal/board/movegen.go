package board

// GenerateLegalMoves returns every fully legal move available to the side to
// move: pseudo-legal generation followed by a make/unmake legality filter.
func (p *Position) GenerateLegalMoves() *MoveList {
	pseudo := NewMoveList()
	p.generatePseudoLegal(pseudo)
	return p.filterLegalMoves(pseudo)
}

// GeneratePseudoLegalMoves returns every pseudo-legal move: it may leave the
// mover's own king in check, and callers must filter via IsLegal before use.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	list := NewMoveList()
	p.generatePseudoLegal(list)
	return list
}

// GenerateCaptures returns every legal capturing move (including promotion
// captures and pushes to the promotion rank), for quiescence-style callers
// that only care about forcing moves.
func (p *Position) GenerateCaptures() *MoveList {
	captures := NewMoveList()
	p.generateNoisyMoves(captures)
	return p.filterLegalMoves(captures)
}

// generatePseudoLegal appends every piece-type's pseudo-legal moves to list.
func (p *Position) generatePseudoLegal(list *MoveList) {
	us := p.SideToMove
	occupied := p.AllOccupied
	enemies := p.Occupied[us.Other()]

	p.generatePawnMoves(list, us, enemies, occupied)
	p.generateSliderOrLeaperMoves(list, Knight, us, ^p.Occupied[us], func(sq Square, _ Bitboard) Bitboard { return KnightAttacks(sq) })
	p.generateSliderOrLeaperMoves(list, Bishop, us, ^p.Occupied[us], BishopAttacks)
	p.generateSliderOrLeaperMoves(list, Rook, us, ^p.Occupied[us], RookAttacks)
	p.generateSliderOrLeaperMoves(list, Queen, us, ^p.Occupied[us], QueenAttacks)
	p.generateKingMoves(list, us)
	p.generateCastlingMoves(list, us)
}

// generateSliderOrLeaperMoves walks every piece of type pt belonging to us,
// applies attacksFn to find its reachable squares, masks them against mask
// (own-occupancy exclusion for quiet+capture generation, enemy-only for
// generateNoisyMoves), and appends the resulting moves.
func (p *Position) generateSliderOrLeaperMoves(list *MoveList, pt PieceType, us Color, mask Bitboard, attacksFn func(Square, Bitboard) Bitboard) {
	pieces := p.Pieces[us][pt]
	for pieces != 0 {
		from := pieces.PopLSB()
		targets := attacksFn(from, p.AllOccupied) & mask
		for targets != 0 {
			list.Add(NewMove(from, targets.PopLSB()))
		}
	}
}

// pawnShape captures the direction-dependent bitboards a pawn-move scan
// needs, computed once per side to move instead of branching per-square.
type pawnShape struct {
	push1, push2, captureLeft, captureRight Bitboard
	promotionRank                           Bitboard
	pushDir                                 int
}

func (p *Position) pawnShapeFor(us Color, pawns, enemies, occupied Bitboard) pawnShape {
	empty := ^occupied
	if us == White {
		push1 := pawns.North() & empty
		return pawnShape{
			push1:         push1,
			push2:         (push1 & Rank3).North() & empty,
			captureLeft:   pawns.NorthWest() & enemies,
			captureRight:  pawns.NorthEast() & enemies,
			promotionRank: Rank8,
			pushDir:       8,
		}
	}
	push1 := pawns.South() & empty
	return pawnShape{
		push1:         push1,
		push2:         (push1 & Rank6).South() & empty,
		captureLeft:   pawns.SouthWest() & enemies,
		captureRight:  pawns.SouthEast() & enemies,
		promotionRank: Rank1,
		pushDir:       -8,
	}
}

// generatePawnMoves appends pushes, captures, promotions and en-passant
// captures for the side to move's pawns.
func (p *Position) generatePawnMoves(list *MoveList, us Color, enemies, occupied Bitboard) {
	shape := p.pawnShapeFor(us, p.Pieces[us][Pawn], enemies, occupied)

	addShifted(list, shape.push1&^shape.promotionRank, shape.pushDir, false)
	addShifted(list, shape.push2, 2*shape.pushDir, false)
	addShifted(list, shape.captureLeft&^shape.promotionRank, shape.pushDir-1, false)
	addShifted(list, shape.captureRight&^shape.promotionRank, shape.pushDir+1, false)
	addShifted(list, shape.push1&shape.promotionRank, shape.pushDir, true)
	addShifted(list, shape.captureLeft&shape.promotionRank, shape.pushDir-1, true)
	addShifted(list, shape.captureRight&shape.promotionRank, shape.pushDir+1, true)

	p.addEnPassant(list, us, p.Pieces[us][Pawn])
}

// addShifted walks every set bit of targets, reconstructs its origin square
// by undoing delta, and emits either a quiet/capture move or all four
// promotions depending on promotion.
func addShifted(list *MoveList, targets Bitboard, delta int, promotion bool) {
	for targets != 0 {
		to := targets.PopLSB()
		from := Square(int(to) - delta)
		if promotion {
			addPromotions(list, from, to)
		} else {
			list.Add(NewMove(from, to))
		}
	}
}

// addEnPassant appends an en-passant capture for every pawn attacking the
// live en-passant target, if one exists.
func (p *Position) addEnPassant(list *MoveList, us Color, pawns Bitboard) {
	if p.EnPassant == NoSquare {
		return
	}
	target := SquareBB(p.EnPassant)
	var attackers Bitboard
	if us == White {
		attackers = (target.SouthWest() | target.SouthEast()) & pawns
	} else {
		attackers = (target.NorthWest() | target.NorthEast()) & pawns
	}
	for attackers != 0 {
		list.Add(NewEnPassant(attackers.PopLSB(), p.EnPassant))
	}
}

// addPromotions appends the four under/over-promotion choices for one
// from/to pair, queen first since that's almost always the right answer.
func addPromotions(list *MoveList, from, to Square) {
	list.Add(NewPromotion(from, to, Queen))
	list.Add(NewPromotion(from, to, Rook))
	list.Add(NewPromotion(from, to, Bishop))
	list.Add(NewPromotion(from, to, Knight))
}

// generateKingMoves appends the king's non-castling steps.
func (p *Position) generateKingMoves(list *MoveList, us Color) {
	from := p.KingSquare[us]
	targets := KingAttacks(from) & ^p.Occupied[us]
	for targets != 0 {
		list.Add(NewMove(from, targets.PopLSB()))
	}
}

// castleOption names the squares one castling direction depends on: the two
// or three that must be empty, and the (up to) three the king sweeps through
// that must not be attacked.
type castleOption struct {
	right        CastlingRights
	emptyMask    Bitboard
	safe         [3]Square
	from, dest   Square
}

// generateCastlingMoves appends whichever of the side's two castling moves
// are currently available: the right hasn't been forfeited, the squares
// between king and rook are empty, and the king doesn't cross an attacked
// square along the way.
func (p *Position) generateCastlingMoves(list *MoveList, us Color) {
	them := us.Other()
	rank := E1.Rank()
	if us == Black {
		rank = E8.Rank()
	}
	sq := func(file int) Square { return NewSquare(file, rank) }

	options := [2]castleOption{
		{right: WhiteKingSideCastle, emptyMask: SquareBB(sq(5)) | SquareBB(sq(6)), safe: [3]Square{sq(4), sq(5), sq(6)}, from: sq(4), dest: sq(6)},
		{right: WhiteQueenSideCastle, emptyMask: SquareBB(sq(1)) | SquareBB(sq(2)) | SquareBB(sq(3)), safe: [3]Square{sq(4), sq(3), sq(2)}, from: sq(4), dest: sq(2)},
	}
	if us == Black {
		options[0].right, options[1].right = BlackKingSideCastle, BlackQueenSideCastle
	}

	for _, opt := range options {
		if p.CastlingRights&opt.right == 0 {
			continue
		}
		if p.AllOccupied&opt.emptyMask != 0 {
			continue
		}
		if p.IsSquareAttacked(opt.safe[0], them) || p.IsSquareAttacked(opt.safe[1], them) || p.IsSquareAttacked(opt.safe[2], them) {
			continue
		}
		list.Add(NewCastling(opt.from, opt.dest))
	}
}

// generateNoisyMoves appends every capture, promotion (quiet or capturing)
// and en-passant capture available to the side to move.
func (p *Position) generateNoisyMoves(list *MoveList) {
	us := p.SideToMove
	enemies := p.Occupied[us.Other()]
	pawns := p.Pieces[us][Pawn]
	shape := p.pawnShapeFor(us, pawns, enemies, p.AllOccupied)

	addShifted(list, shape.captureLeft&^shape.promotionRank, shape.pushDir-1, false)
	addShifted(list, shape.captureRight&^shape.promotionRank, shape.pushDir+1, false)
	addShifted(list, shape.captureLeft&shape.promotionRank, shape.pushDir-1, true)
	addShifted(list, shape.captureRight&shape.promotionRank, shape.pushDir+1, true)
	addShifted(list, shape.push1&shape.promotionRank, shape.pushDir, true) // quiet promotion, still forcing
	p.addEnPassant(list, us, pawns)

	p.generateSliderOrLeaperMoves(list, Knight, us, enemies, func(sq Square, _ Bitboard) Bitboard { return KnightAttacks(sq) })
	p.generateSliderOrLeaperMoves(list, Bishop, us, enemies, BishopAttacks)
	p.generateSliderOrLeaperMoves(list, Rook, us, enemies, RookAttacks)
	p.generateSliderOrLeaperMoves(list, Queen, us, enemies, QueenAttacks)

	from := p.KingSquare[us]
	targets := KingAttacks(from) & enemies
	for targets != 0 {
		list.Add(NewMove(from, targets.PopLSB()))
	}
}

// filterLegalMoves keeps only the moves in list that don't leave the mover's
// own king in check.
func (p *Position) filterLegalMoves(list *MoveList) *MoveList {
	out := NewMoveList()
	for i := 0; i < list.Len(); i++ {
		if m := list.Get(i); p.IsLegal(m) {
			out.Add(m)
		}
	}
	return out
}

// IsLegal reports whether m is legal in p: king moves are checked by
// re-evaluating attacks on the destination with the king already lifted off
// its origin square; every other move is verified by actually playing it and
// checking whether the mover's king ends up attacked.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	king := p.KingSquare[us]

	if m.From() == king {
		if m.IsCastling() {
			return true // squares already vetted during generation
		}
		withoutKing := p.AllOccupied &^ SquareBB(m.From())
		return p.AttackersByColor(m.To(), them, withoutKing) == 0
	}

	undo := p.MakeMove(m)
	if !undo.Valid {
		return false
	}
	attacked := p.IsSquareAttacked(king, them)
	p.UnmakeMove(m, undo)
	return !attacked
}

// MakeMove applies m to p in place and returns the information UnmakeMove
// needs to reverse it. The Zobrist hash is maintained incrementally rather
// than recomputed.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		CapturedPiece:  NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		Checkers:       p.Checkers,
	}

	us, them := p.SideToMove, p.SideToMove.Other()
	from, to := m.From(), m.To()
	piece := p.PieceAt(from)
	if piece == NoPiece {
		return undo // malformed move: leave the position untouched, undo.Valid stays false
	}
	undo.Valid = true
	pt := piece.Type()

	p.Hash ^= zobristSideToMove
	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	switch {
	case m.IsEnPassant():
		capturedSq := to - 8
		if us == Black {
			capturedSq = to + 8
		}
		undo.CapturedPiece = p.liftPiece(capturedSq)
		p.Hash ^= zobristPiece[them][Pawn][capturedSq]
	default:
		if captured := p.PieceAt(to); captured != NoPiece {
			undo.CapturedPiece = captured
			p.liftPiece(to)
			p.Hash ^= zobristPiece[them][captured.Type()][to]
		}
	}

	p.slidePiece(from, to)
	p.Hash ^= zobristPiece[us][pt][from]
	p.Hash ^= zobristPiece[us][pt][to]

	if m.IsPromotion() {
		promo := m.Promotion()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promo] |= SquareBB(to)
		p.Hash ^= zobristPiece[us][Pawn][to]
		p.Hash ^= zobristPiece[us][promo][to]
	}

	if m.IsCastling() {
		rookFrom, rookTo := castleRookSquares(from, to)
		p.slidePiece(rookFrom, rookTo)
		p.Hash ^= zobristPiece[us][Rook][rookFrom]
		p.Hash ^= zobristPiece[us][Rook][rookTo]
	}

	p.updateCastlingRights(pt, us, from, to)
	p.Hash ^= zobristCastling[p.CastlingRights]

	if pt == Pawn && absInt(int(to)-int(from)) == 16 {
		ep := Square((int(from) + int(to)) / 2)
		p.EnPassant = ep
		p.Hash ^= zobristEnPassant[ep.File()]
	}

	if pt == Pawn || undo.CapturedPiece != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.UpdateCheckers()
	return undo
}

// castleRookSquares returns the rook's from/to squares for the castling move
// king-from -> king-to.
func castleRookSquares(kingFrom, kingTo Square) (Square, Square) {
	if kingTo > kingFrom {
		return NewSquare(7, kingFrom.Rank()), NewSquare(5, kingFrom.Rank())
	}
	return NewSquare(0, kingFrom.Rank()), NewSquare(3, kingFrom.Rank())
}

// updateCastlingRights clears whichever rights a king move or a rook
// move/capture at a corner square forfeits.
func (p *Position) updateCastlingRights(pt PieceType, us Color, from, to Square) {
	if pt == King {
		if us == White {
			p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}
	if from == A1 || to == A1 {
		p.CastlingRights &^= WhiteQueenSideCastle
	}
	if from == H1 || to == H1 {
		p.CastlingRights &^= WhiteKingSideCastle
	}
	if from == A8 || to == A8 {
		p.CastlingRights &^= BlackQueenSideCastle
	}
	if from == H8 || to == H8 {
		p.CastlingRights &^= BlackKingSideCastle
	}
}

// UnmakeMove reverses m using the UndoInfo MakeMove returned for it. Must be
// called with the position exactly as MakeMove left it.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	them := p.SideToMove
	us := them.Other()
	from, to := m.From(), m.To()

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.Checkers = undo.Checkers
	p.SideToMove = us
	if us == Black {
		p.FullMoveNumber--
	}

	if m.IsPromotion() {
		promo := m.Promotion()
		p.Pieces[us][promo] &^= SquareBB(to)
		p.Pieces[us][Pawn] |= SquareBB(to)
	}

	p.slidePiece(to, from)

	if m.IsCastling() {
		rookFrom, rookTo := castleRookSquares(from, to)
		p.slidePiece(rookTo, rookFrom)
	}

	if undo.CapturedPiece == NoPiece {
		return
	}
	if m.IsEnPassant() {
		capturedSq := to - 8
		if us == Black {
			capturedSq = to + 8
		}
		p.placePiece(undo.CapturedPiece, capturedSq)
	} else {
		p.placePiece(undo.CapturedPiece, to)
	}
}

// HasLegalMoves reports whether the side to move has at least one legal
// move, without materializing the full legal move list.
func (p *Position) HasLegalMoves() bool {
	pseudo := p.GeneratePseudoLegalMoves()
	for i := 0; i < pseudo.Len(); i++ {
		if p.IsLegal(pseudo.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is in check with no legal
// reply.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate reports whether the side to move has no legal move but is not
// in check.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw reports whether the position is a draw by stalemate, the
// fifty-move rule, or insufficient mating material.
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial reports whether neither side has enough material
// to deliver checkmate: bare kings, or a lone king facing a king plus one
// minor piece.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	whiteMinors := p.Pieces[White][Knight].PopCount() + p.Pieces[White][Bishop].PopCount()
	blackMinors := p.Pieces[Black][Knight].PopCount() + p.Pieces[Black][Bishop].PopCount()

	if whiteMinors+blackMinors == 0 {
		return true
	}
	if whiteMinors <= 1 && blackMinors == 0 {
		return true
	}
	return blackMinors <= 1 && whiteMinors == 0
}
