package board

import "fmt"

// ParseMove resolves coordinate notation ("e2e4", "e7e8q") against the
// legal moves of p. A pawn move to the last rank without a promotion letter
// promotes to a queen. Castling is written as the king's move ("e1g1").
func (p *Position) ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, &IllegalMoveError{Move: s, FEN: p.FEN(), Reason: "malformed coordinate notation"}
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, &IllegalMoveError{Move: s, FEN: p.FEN(), Reason: err.Error()}
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, &IllegalMoveError{Move: s, FEN: p.FEN(), Reason: err.Error()}
	}
	promo := Queen
	if len(s) == 5 {
		switch s[4] {
		case 'n', 'N':
			promo = Knight
		case 'b', 'B':
			promo = Bishop
		case 'r', 'R':
			promo = Rook
		case 'q', 'Q':
			promo = Queen
		default:
			return NoMove, &IllegalMoveError{Move: s, FEN: p.FEN(), Reason: fmt.Sprintf("unknown promotion piece %q", s[4])}
		}
	}

	var ml MoveList
	p.GenerateLegal(&ml)
	for i := range ml.Len() {
		m := ml.Get(i)
		if m.From() != from || m.To() != to {
			continue
		}
		if m.IsPromotion() && m.Promotion() != promo {
			continue
		}
		if !m.IsPromotion() && len(s) == 5 {
			return NoMove, &IllegalMoveError{Move: s, FEN: p.FEN(), Reason: "promotion piece given for a non-promoting move"}
		}
		return m, nil
	}
	return NoMove, &IllegalMoveError{Move: s, FEN: p.FEN(), Reason: "not in the legal move set"}
}

// PlayMoves applies a sequence of coordinate moves, stopping at the first
// one that is not legal.
func (p *Position) PlayMoves(moves ...string) error {
	for _, s := range moves {
		m, err := p.ParseMove(s)
		if err != nil {
			return err
		}
		p.MakeMove(m)
	}
	return nil
}
