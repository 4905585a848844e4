package engine

import (
	"time"

	"github.com/hailam/chesscore/internal/board"
)

// DefaultDepth is searched when a Budget sets no limit at all.
const DefaultDepth = 4

// Budget bounds one search. Zero fields impose no limit; a Budget with
// every field zero searches to Options.DefaultDepth.
type Budget struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
}

// Infinite searches until Stop is called or the context is cancelled.
var Infinite = Budget{Depth: MaxPly - 1}

func (b Budget) isZero() bool { return b == Budget{} }

// maxDepth is the deepest iteration the budget allows.
func (b Budget) maxDepth(def int) int {
	switch {
	case b.Depth > 0:
		return min(b.Depth, MaxPly-1)
	case b.isZero():
		return def
	}
	return MaxPly - 1
}

// Clock describes a game clock for ClockBudget.
type Clock struct {
	Remaining [2]time.Duration
	Increment [2]time.Duration
	MovesToGo int // 0 means sudden death
}

// ClockBudget turns the mover's remaining clock time into a per-move
// time budget. ply is the game ply, used to estimate the moves left when
// MovesToGo is unknown.
func ClockBudget(c Clock, us board.Color, ply int) Budget {
	left, inc := c.Remaining[us], c.Increment[us]
	if left <= 0 {
		return Budget{}
	}
	mtg := c.MovesToGo
	if mtg == 0 {
		mtg = clamp(50-ply/4, 10, 50)
	}
	t := left/time.Duration(mtg) + inc*9/10
	if ply < 8 {
		t = t * 85 / 100
	}
	t = min(t, left*8/10)
	return Budget{MoveTime: max(t, 10*time.Millisecond)}
}
