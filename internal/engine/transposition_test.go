package engine

import (
	"math"
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func TestTranspositionTableSize(t *testing.T) {
	tt := NewTranspositionTable(1)
	n := len(tt.entries)
	if n&(n-1) != 0 {
		t.Errorf("len = %d, want a power of two", n)
	}
	if n*ttEntrySize > 1<<20 {
		t.Errorf("len = %d entries exceeds 1MB", n)
	}
}

func TestTranspositionTableStoreProbe(t *testing.T) {
	tt := NewTranspositionTable(1)
	m := board.NewMove(board.E2, board.E4, board.DoublePawnPush)
	const key = 0xDEADBEEF12345678

	if _, ok := tt.Probe(key); ok {
		t.Fatal("probe hit an empty table")
	}
	tt.Store(key, 5, 42, BoundExact, m)
	e, ok := tt.Probe(key)
	if !ok {
		t.Fatal("probe missed after store")
	}
	if e.move != m || e.score != 42 || e.depth != 5 || e.bound != BoundExact {
		t.Errorf("entry = %+v", e)
	}
	if _, ok := tt.Probe(key ^ 1<<60); ok {
		t.Error("probe hit for a colliding key")
	}

	// A shallower result from the same search does not replace a deeper one.
	tt.Store(key, 2, -7, BoundUpper, board.NoMove)
	if e, _ := tt.Probe(key); e.depth != 5 {
		t.Errorf("depth = %d after shallow store, want 5", e.depth)
	}
	// From a new search it does.
	tt.NewSearch()
	tt.Store(key, 2, -7, BoundUpper, board.NoMove)
	if e, _ := tt.Probe(key); e.depth != 2 {
		t.Errorf("depth = %d after aging, want 2", e.depth)
	}

	if rate := tt.HitRate(); rate <= 0 || rate > 100 {
		t.Errorf("HitRate = %v", rate)
	}
	tt.Clear()
	if _, ok := tt.Probe(key); ok {
		t.Error("probe hit after Clear")
	}
}

func TestDeepStoresSaturate(t *testing.T) {
	tt := NewTranspositionTable(1)
	const key = 0x0123456789ABCDEF
	tt.Store(key, Infinite.Depth+3, 10, BoundLower, board.NoMove)
	e, ok := tt.Probe(key)
	if !ok {
		t.Fatal("probe missed after store")
	}
	if e.depth != math.MaxInt8 {
		t.Errorf("depth = %d, want %d", e.depth, math.MaxInt8)
	}
	// A shallower result must not displace the saturated entry.
	tt.Store(key, 20, -3, BoundUpper, board.NoMove)
	if e, _ := tt.Probe(key); e.score != 10 {
		t.Errorf("score = %d, want 10", e.score)
	}
}

func TestMateScoresAreStoredRelativeToNode(t *testing.T) {
	tests := []struct{ score, ply int }{
		{MateScore - 5, 3},
		{-(MateScore - 6), 4},
		{250, 7},
		{-30, 0},
	}
	for _, tt := range tests {
		stored := scoreToTT(tt.score, tt.ply)
		if got := scoreFromTT(stored, tt.ply); got != tt.score {
			t.Errorf("round trip of %d at ply %d = %d", tt.score, tt.ply, got)
		}
	}
	// Mate in 5 plies from the root seen at ply 3 is mate in 2 from the node.
	if got := scoreToTT(MateScore-5, 3); got != MateScore-2 {
		t.Errorf("scoreToTT = %d, want %d", got, MateScore-2)
	}
	// Probed at ply 1 the same node is a mate in 3 from the root.
	if got := scoreFromTT(MateScore-2, 1); got != MateScore-3 {
		t.Errorf("scoreFromTT = %d, want %d", got, MateScore-3)
	}
}

func TestEvalCache(t *testing.T) {
	c := newEvalCache(1)
	if _, ok := c.probe(0); ok {
		t.Error("hit on an empty cache for key 0")
	}
	c.store(0, -12)
	if s, ok := c.probe(0); !ok || s != -12 {
		t.Errorf("probe(0) = %d, %v", s, ok)
	}
	c.clear()
	if _, ok := c.probe(0); ok {
		t.Error("hit after clear")
	}
}
