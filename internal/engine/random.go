package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lukechampine.com/frand"

	"github.com/hailam/chesscore/internal/board"
)

// RandomMove picks a uniformly random legal move, or NoMove when there is
// none.
func RandomMove(pos *board.Position) board.Move {
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return board.NoMove
	}
	return moves[frand.Intn(len(moves))]
}

// Difficulty selects how hard the engine plays.
type Difficulty int

const (
	Easy   Difficulty = iota // random legal move
	Medium                   // depth 2
	Hard                     // depth 4
	Max                      // deepen until the time budget runs out
)

var difficultyNames = [...]string{"easy", "medium", "hard", "max"}

func (d Difficulty) String() string {
	if d < Easy || d > Max {
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
	return difficultyNames[d]
}

// ParseDifficulty accepts a name as returned by String.
func ParseDifficulty(s string) (Difficulty, error) {
	for i, name := range difficultyNames {
		if strings.EqualFold(s, name) {
			return Difficulty(i), nil
		}
	}
	return Easy, fmt.Errorf("unknown difficulty %q", s)
}

// Budget returns the search budget of the preset. Easy does not search.
func (d Difficulty) Budget() Budget {
	switch d {
	case Medium:
		return Budget{Depth: 2}
	case Hard:
		return Budget{Depth: 4}
	case Max:
		return Budget{Depth: MaxPly - 1, MoveTime: 5 * time.Second}
	}
	return Budget{}
}

// Play chooses a move for pos at difficulty d.
func (e *Engine) Play(ctx context.Context, pos *board.Position, d Difficulty) (board.Move, error) {
	if d == Easy {
		if err := pos.Validate(); err != nil {
			return board.NoMove, fmt.Errorf("random move: %w", err)
		}
		return RandomMove(pos), nil
	}
	res, err := e.FindBestMove(ctx, pos, d.Budget())
	if err != nil {
		return board.NoMove, err
	}
	return res.Move, nil
}
