package board

// Status is the outcome state of a game.
type Status uint8

const (
	Ongoing Status = iota
	WhiteWins
	BlackWins
	Draw
)

func (s Status) String() string {
	switch s {
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	}
	return "*"
}

// DrawReason says why a game ended drawn.
type DrawReason uint8

const (
	NotDrawn DrawReason = iota
	Stalemate
	FiftyMoveRule
	ThreefoldRepetition
	InsufficientMaterial
)

func (r DrawReason) String() string {
	switch r {
	case Stalemate:
		return "stalemate"
	case FiftyMoveRule:
		return "fifty-move rule"
	case ThreefoldRepetition:
		return "threefold repetition"
	case InsufficientMaterial:
		return "insufficient material"
	}
	return "none"
}

// Status classifies the position. Checkmate and stalemate take precedence
// over the clock and repetition rules.
func (p *Position) Status() (Status, DrawReason) {
	if !p.HasLegalMoves() {
		if !p.InCheck() {
			return Draw, Stalemate
		}
		if p.SideToMove == White {
			return BlackWins, NotDrawn
		}
		return WhiteWins, NotDrawn
	}
	switch {
	case p.IsInsufficientMaterial():
		return Draw, InsufficientMaterial
	case p.HalfMoveClock >= 100:
		return Draw, FiftyMoveRule
	case p.Repetitions() >= 2:
		return Draw, ThreefoldRepetition
	}
	return Ongoing, NotDrawn
}

func (p *Position) IsCheckmate() bool { return p.InCheck() && !p.HasLegalMoves() }

func (p *Position) IsStalemate() bool { return !p.InCheck() && !p.HasLegalMoves() }

// Repetitions counts earlier occurrences of the current position in the
// move history. Only positions since the last pawn move or capture with the
// same side to move can match.
func (p *Position) Repetitions() int {
	n := 0
	last := len(p.history) - p.HalfMoveClock
	for i := len(p.history) - 2; i >= 0 && i >= last; i -= 2 {
		if p.history[i] == p.Hash {
			n++
		}
	}
	return n
}

// IsInsufficientMaterial reports positions where neither side can mate by
// any sequence: bare kings, a single minor piece, or bishops that all stand
// on squares of one color.
func (p *Position) IsInsufficientMaterial() bool {
	var pawnsRooksQueens, knights, bishops Bitboard
	for c := range 2 {
		pawnsRooksQueens |= p.Pieces[c][Pawn] | p.Pieces[c][Rook] | p.Pieces[c][Queen]
		knights |= p.Pieces[c][Knight]
		bishops |= p.Pieces[c][Bishop]
	}
	if pawnsRooksQueens != 0 {
		return false
	}
	minors := knights.PopCount() + bishops.PopCount()
	if minors <= 1 {
		return true
	}
	return knights == 0 && (bishops&LightSquares == 0 || bishops&DarkSquares == 0)
}
