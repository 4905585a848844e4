package board

import "fmt"

type castleRule struct {
	right    CastlingRights
	kingFrom Square
	kingTo   Square
	rookFrom Square
	kind     MoveKind
	between  Bitboard
	transit  [3]Square
}

var castleRules = [2][2]castleRule{
	White: {
		{WhiteKingSide, E1, G1, H1, CastleKing, SquareBB(F1) | SquareBB(G1), [3]Square{E1, F1, G1}},
		{WhiteQueenSide, E1, C1, A1, CastleQueen, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), [3]Square{E1, D1, C1}},
	},
	Black: {
		{BlackKingSide, E8, G8, H8, CastleKing, SquareBB(F8) | SquareBB(G8), [3]Square{E8, F8, G8}},
		{BlackQueenSide, E8, C8, A8, CastleQueen, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), [3]Square{E8, D8, C8}},
	},
}

// promotionOrder lists promotion kinds best first.
var promotionOrder = [4]PieceType{Queen, Knight, Rook, Bishop}

// mustHaveOneKing panics with an *InvariantViolation when the side to move
// does not have exactly one king. Such a position can only come from a bug
// in move application or position setup.
func (p *Position) mustHaveOneKing() {
	if n := p.Pieces[p.SideToMove][King].PopCount(); n != 1 {
		panic(&InvariantViolation{Reason: fmt.Sprintf("%s to move has %d kings", p.SideToMove, n)})
	}
}

// GeneratePseudoLegal appends every move that obeys piece movement rules,
// whether or not it leaves the mover's king in check. Castling moves are
// only produced when the king's path is clear and unattacked.
func (p *Position) GeneratePseudoLegal(ml *MoveList) {
	p.mustHaveOneKing()
	p.generate(ml, false)
}

// GenerateLegal appends the legal moves of the side to move. Order is
// deterministic for a given position.
func (p *Position) GenerateLegal(ml *MoveList) {
	p.mustHaveOneKing()
	var pseudo MoveList
	p.generate(&pseudo, false)
	p.filterLegal(&pseudo, ml)
}

// GenerateCaptures appends the legal captures and promotions, the move set
// searched past the horizon.
func (p *Position) GenerateCaptures(ml *MoveList) {
	p.mustHaveOneKing()
	var pseudo MoveList
	p.generate(&pseudo, true)
	p.filterLegal(&pseudo, ml)
}

// LegalMoves returns the legal moves as a fresh slice.
func (p *Position) LegalMoves() []Move {
	var ml MoveList
	p.GenerateLegal(&ml)
	return ml.Slice()
}

// HasLegalMoves reports whether the side to move can move at all.
func (p *Position) HasLegalMoves() bool {
	p.mustHaveOneKing()
	var pseudo MoveList
	p.generate(&pseudo, false)
	for i := range pseudo.Len() {
		if p.isLegal(pseudo.Get(i)) {
			return true
		}
	}
	return false
}

// filterLegal keeps the moves that do not leave the mover's king attacked,
// found by playing each one and looking at the king. In check, moves that
// neither move the king nor capture or block a lone checker are dropped
// without being played.
func (p *Position) filterLegal(pseudo, out *MoveList) {
	king := p.KingSquare(p.SideToMove)
	evasions := ^Bitboard(0)
	if checkers := p.Checkers(); checkers != 0 {
		evasions = 0
		if checkers.PopCount() == 1 {
			c := checkers.LSB()
			evasions = SquareBB(c) | Between(king, c)
		}
	}
	for i := range pseudo.Len() {
		m := pseudo.Get(i)
		if m.From() != king && m.Kind() != EnPassant && !evasions.IsSet(m.To()) {
			continue
		}
		if p.isLegal(m) {
			out.Add(m)
		}
	}
}

func (p *Position) isLegal(m Move) bool {
	us := p.SideToMove
	undo := p.MakeMove(m)
	ok := !p.IsSquareAttacked(p.KingSquare(us), us.Other())
	p.UnmakeMove(undo)
	return ok
}

func (p *Position) generate(ml *MoveList, capturesOnly bool) {
	us, them := p.SideToMove, p.SideToMove.Other()
	targets := ^p.Occupied[us]
	if capturesOnly {
		targets = p.Occupied[them]
	}

	p.generatePawnMoves(ml, capturesOnly)

	for _, pt := range [4]PieceType{Knight, Bishop, Rook, Queen} {
		for pieces := p.Pieces[us][pt]; pieces != 0; {
			from := pieces.PopLSB()
			for to := p.AttacksFrom(from, p.All) & targets; to != 0; {
				ml.Add(NewMove(from, to.PopLSB(), Normal))
			}
		}
	}

	from := p.KingSquare(us)
	for to := kingAttacks[from] & targets; to != 0; {
		ml.Add(NewMove(from, to.PopLSB(), Normal))
	}

	if !capturesOnly {
		p.generateCastling(ml)
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, capturesOnly bool) {
	us, them := p.SideToMove, p.SideToMove.Other()
	pawns := p.Pieces[us][Pawn]
	empty := ^p.All
	enemies := p.Occupied[them]

	var push1, push2, capWest, capEast, lastRank Bitboard
	var up int
	if us == White {
		up = 8
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		capWest = pawns.NorthWest() & enemies
		capEast = pawns.NorthEast() & enemies
		lastRank = Rank8
	} else {
		up = -8
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		capWest = pawns.SouthWest() & enemies
		capEast = pawns.SouthEast() & enemies
		lastRank = Rank1
	}

	if capturesOnly {
		push1 &= lastRank
		push2 = 0
	}

	addPawnMoves(ml, push1, up, lastRank)
	addPawnMoves(ml, capWest, up-1, lastRank)
	addPawnMoves(ml, capEast, up+1, lastRank)
	for to := push2; to != 0; {
		sq := to.PopLSB()
		ml.Add(NewMove(Square(int(sq)-2*up), sq, DoublePawnPush))
	}

	if ep := p.EnPassant; ep != NoSquare {
		for from := pawnAttacks[them][ep] & pawns; from != 0; {
			ml.Add(NewMove(from.PopLSB(), ep, EnPassant))
		}
	}
}

// addPawnMoves emits one move per target, expanding arrivals on the last
// rank into the four promotions. delta is to minus from.
func addPawnMoves(ml *MoveList, targets Bitboard, delta int, lastRank Bitboard) {
	for targets != 0 {
		to := targets.PopLSB()
		from := Square(int(to) - delta)
		if lastRank.IsSet(to) {
			for _, pt := range promotionOrder {
				ml.Add(NewPromotion(from, to, pt))
			}
			continue
		}
		ml.Add(NewMove(from, to, Normal))
	}
}

func (p *Position) generateCastling(ml *MoveList) {
	us, them := p.SideToMove, p.SideToMove.Other()
	king, rook := NewPiece(King, us), NewPiece(Rook, us)
	for _, r := range castleRules[us] {
		if p.Castling&r.right == 0 || p.board[r.kingFrom] != king || p.board[r.rookFrom] != rook {
			continue
		}
		if p.All&r.between != 0 {
			continue
		}
		attacked := false
		for _, sq := range r.transit {
			if p.IsSquareAttacked(sq, them) {
				attacked = true
				break
			}
		}
		if !attacked {
			ml.Add(NewMove(r.kingFrom, r.kingTo, r.kind))
		}
	}
}
