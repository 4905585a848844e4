package board

// castleRook returns the rook's from and to squares for a castling move
// whose king lands on kingTo.
func castleRook(kingTo Square) (Square, Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	}
	return A8, D8
}

// MakeMove plays m without checking legality and returns the record that
// UnmakeMove needs to restore the position. Playing a move that is not
// legal here leaves the position in an unspecified state.
func (p *Position) MakeMove(m Move) UndoRecord {
	us, them := p.SideToMove, p.SideToMove.Other()
	from, to := m.From(), m.To()
	undo := UndoRecord{
		Move:          m,
		Captured:      NoPiece,
		Castling:      p.Castling,
		EnPassant:     p.EnPassant,
		HalfMoveClock: p.HalfMoveClock,
		Hash:          p.Hash,
	}
	p.history = append(p.history, p.Hash)

	h := p.Hash
	if p.epHashed() {
		h ^= zobristEnPassant[p.EnPassant.File()]
	}

	piece := p.board[from]
	p.HalfMoveClock++

	switch m.Kind() {
	case EnPassant:
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		undo.Captured = p.remove(capSq)
		h ^= zobristPiece[undo.Captured][capSq]
	case CastleKing, CastleQueen:
		rookFrom, rookTo := castleRook(to)
		rook := p.board[rookFrom]
		p.move(rookFrom, rookTo)
		h ^= zobristPiece[rook][rookFrom] ^ zobristPiece[rook][rookTo]
	default:
		if captured := p.board[to]; captured != NoPiece {
			undo.Captured = p.remove(to)
			h ^= zobristPiece[captured][to]
		}
	}
	if undo.Captured != NoPiece || piece.Type() == Pawn {
		p.HalfMoveClock = 0
	}

	p.remove(from)
	h ^= zobristPiece[piece][from]
	if m.IsPromotion() {
		piece = NewPiece(m.Promotion(), us)
	}
	p.put(piece, to)
	h ^= zobristPiece[piece][to]

	h ^= zobristCastling[p.Castling]
	p.Castling &= castleMask[from] & castleMask[to]
	h ^= zobristCastling[p.Castling]

	p.EnPassant = NoSquare
	if m.Kind() == DoublePawnPush {
		p.EnPassant = (from + to) / 2
	}
	if us == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = them
	h ^= zobristSideToMove
	if p.epHashed() {
		h ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.Hash = h
	return undo
}

// UnmakeMove reverses the MakeMove call that produced u. Records must be
// unwound in LIFO order.
func (p *Position) UnmakeMove(u UndoRecord) {
	m := u.Move
	from, to := m.From(), m.To()
	p.SideToMove = p.SideToMove.Other()
	us := p.SideToMove
	if us == Black {
		p.FullMoveNumber--
	}

	piece := p.remove(to)
	if m.IsPromotion() {
		piece = NewPiece(Pawn, us)
	}
	p.put(piece, from)

	switch m.Kind() {
	case EnPassant:
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		p.put(u.Captured, capSq)
	case CastleKing, CastleQueen:
		rookFrom, rookTo := castleRook(to)
		p.move(rookTo, rookFrom)
	default:
		if u.Captured != NoPiece {
			p.put(u.Captured, to)
		}
	}

	p.Castling = u.Castling
	p.EnPassant = u.EnPassant
	p.HalfMoveClock = u.HalfMoveClock
	p.Hash = u.Hash
	p.history = p.history[:len(p.history)-1]
}

// Play is the checked form of MakeMove for callers outside the search: it
// returns an *IllegalMoveError instead of corrupting the position when m is
// not legal.
func (p *Position) Play(m Move) (UndoRecord, error) {
	var ml MoveList
	p.GenerateLegal(&ml)
	if !ml.Contains(m) {
		return UndoRecord{}, &IllegalMoveError{Move: m.String(), FEN: p.FEN(), Reason: "not in the legal move set"}
	}
	return p.MakeMove(m), nil
}
