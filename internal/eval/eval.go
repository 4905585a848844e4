// Package eval scores chess positions for the search.
package eval

import (
	"golang.org/x/exp/constraints"

	"github.com/hailam/chesscore/internal/board"
)

// Evaluator maps a position to a score in centipawns, positive when the
// side to move stands better. Implementations must be pure functions of
// the position so that the search can swap them freely.
type Evaluator interface {
	Evaluate(pos *board.Position) int
}

// Material values in centipawns. The king is priced at zero; its placement
// is scored by the king tables instead.
const (
	PawnValue   = 100
	KnightValue = 300
	BishopValue = 300
	RookValue   = 500
	QueenValue  = 900
)

// Values is indexed by board.PieceType.
var Values = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, 0, 0}

// phaseWeight drives the king table blend: 24 with all minors and majors on
// the board, 0 with none.
var phaseWeight = [6]int{0, 1, 1, 2, 4, 0}

const maxPhase = 24

// White returns ev's score from White's point of view.
func White(ev Evaluator, pos *board.Position) int {
	s := ev.Evaluate(pos)
	if pos.SideToMove == board.Black {
		return -s
	}
	return s
}

// Classical is the handcrafted evaluator: material, piece-square tables,
// pawn structure and mobility.
type Classical struct{}

func (Classical) Evaluate(pos *board.Position) int {
	if pos.IsInsufficientMaterial() {
		return 0
	}
	phase := gamePhase(pos)
	score := side(pos, board.White, phase) - side(pos, board.Black, phase)
	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}

// Breakdown is the per-term White-relative score of a position.
type Breakdown struct {
	Material, PieceSquare, Pawns, Mobility, Total int
}

// Explain splits the Classical score into its terms.
func (Classical) Explain(pos *board.Position) Breakdown {
	phase := gamePhase(pos)
	var b Breakdown
	for _, c := range []board.Color{board.White, board.Black} {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		b.Material += sign * material(pos, c)
		b.PieceSquare += sign * pieceSquare(pos, c, phase)
		b.Pawns += sign * pawnStructure(pos, c)
		b.Mobility += sign * mobility(pos, c)
	}
	b.Total = b.Material + b.PieceSquare + b.Pawns + b.Mobility
	return b
}

func side(pos *board.Position, c board.Color, phase int) int {
	return material(pos, c) + pieceSquare(pos, c, phase) + pawnStructure(pos, c) + mobility(pos, c)
}

func material(pos *board.Position, c board.Color) int {
	total := 0
	for pt := board.Pawn; pt < board.King; pt++ {
		total += pos.Pieces[c][pt].PopCount() * Values[pt]
	}
	return total
}

func gamePhase(pos *board.Position) int {
	phase := 0
	for c := range 2 {
		for pt := board.Knight; pt < board.King; pt++ {
			phase += pos.Pieces[c][pt].PopCount() * phaseWeight[pt]
		}
	}
	return clamp(phase, 0, maxPhase)
}

// Material scores material balance only.
type Material struct{}

func (Material) Evaluate(pos *board.Position) int {
	score := material(pos, board.White) - material(pos, board.Black)
	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}

func clamp[T constraints.Integer](v, lo, hi T) T {
	return max(lo, min(v, hi))
}
