package engine

import (
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func ordered(pos *board.Position, mo *moveOrderer, ply int, hash board.Move) []board.Move {
	var ml board.MoveList
	pos.GenerateLegal(&ml)
	var scores [256]int
	mo.scoreMoves(pos, &ml, &scores, ply, hash)
	out := make([]board.Move, ml.Len())
	for i := range out {
		out[i] = pickMove(&ml, &scores, i)
	}
	return out
}

func index(moves []board.Move, s string) int {
	for i, m := range moves {
		if m.String() == s {
			return i
		}
	}
	return -1
}

func TestOrderingCapturesFirst(t *testing.T) {
	// The pawn can take the queen, the queen can take a pawn.
	pos := mustParse(t, "4k3/8/8/3q4/4P3/8/8/3QK3 w - - 0 1")
	var mo moveOrderer
	moves := ordered(pos, &mo, 0, board.NoMove)
	if moves[0].String() != "e4d5" {
		t.Errorf("first move = %s, want e4d5", moves[0])
	}
	if i, j := index(moves, "d1d5"), index(moves, "e1f2"); i > j {
		t.Errorf("queen capture at %d ordered after quiet move at %d", i, j)
	}
}

func TestOrderingHashMoveAndKillers(t *testing.T) {
	pos := board.NewPosition()
	var mo moveOrderer
	hash := board.NewMove(board.G1, board.F3, board.Normal)
	killer := board.NewMove(board.B1, board.C3, board.Normal)
	mo.cutoff(killer, 2, 3)

	moves := ordered(pos, &mo, 2, hash)
	if moves[0] != hash || moves[1] != killer {
		t.Errorf("order starts %s %s, want %s %s", moves[0], moves[1], hash, killer)
	}
	// Killers are per ply.
	if s := mo.score(pos, killer, 3, board.NoMove); s >= killerScore2 {
		t.Errorf("score at ply 3 = %d, want a history score", s)
	}
	mo.age()
	if mo.killers[2][0] != board.NoMove {
		t.Error("killers survive aging")
	}
	if got := mo.history[board.B1][board.C3]; got != 4 {
		t.Errorf("history after aging = %d, want 4", got)
	}
}

func TestOrderingPromotions(t *testing.T) {
	pos := mustParse(t, "4k3/1P6/8/8/8/8/8/4K3 w - - 0 1")
	var mo moveOrderer
	moves := ordered(pos, &mo, 0, board.NoMove)
	if moves[0].String() != "b7b8q" {
		t.Errorf("first move = %s, want b7b8q", moves[0])
	}
}
