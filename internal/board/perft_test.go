package board

import "testing"

func TestPerft(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		counts []uint64
		// depth from which the case only runs without -short
		slowFrom int
	}{
		{"startpos", StartFEN, []uint64{20, 400, 8902, 197281}, 4},
		{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -", []uint64{48, 2039, 97862}, 3},
		{"position3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -", []uint64{14, 191, 2812, 43238}, 4},
		{"ep-pin", "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1", []uint64{6, 94}, 3},
		{"promotions", "n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1", []uint64{24, 496, 9483}, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			for i, want := range tc.counts {
				depth := i + 1
				if depth >= tc.slowFrom && testing.Short() {
					break
				}
				if got := pos.Perft(depth); got != want {
					t.Errorf("perft(%d) = %d, want %d", depth, got, want)
				}
			}
			if pos.FEN() != mustParse(t, tc.fen).FEN() {
				t.Errorf("perft changed the position: %s", pos.FEN())
			}
		})
	}
}

func TestDivideSumsToPerft(t *testing.T) {
	pos := NewPosition()
	var total uint64
	for _, e := range pos.Divide(3) {
		total += e.Nodes
	}
	if total != 8902 {
		t.Errorf("divide(3) sums to %d, want 8902", total)
	}
}

func mustParse(t *testing.T, fen string) *Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}
