package board

import (
	"errors"
	"testing"
)

func TestFENRoundTrip(t *testing.T) {
	for _, fen := range testFENs {
		if got := mustParse(t, fen).FEN(); got != fen {
			t.Errorf("FEN() = %q, want %q", got, fen)
		}
	}
}

func TestParseFENErrors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"too few fields", "8/8/8/8/8/8/8/8 w"},
		{"seven ranks", "8/8/8/8/8/8/8 w - - 0 1"},
		{"bad piece", "rnbqkbnr/ppppxppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"long rank", "rnbqkbnr/ppppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"bad side", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1"},
		{"bad castling", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQxq - 0 1"},
		{"bad ep rank", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e4 0 1"},
		{"bad clock", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1"},
		{"no white king", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQ1BNR w kq - 0 1"},
		{"two black kings", "rnbqkbnr/pppppppp/8/8/3k4/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"pawn on last rank", "rnbqkbnP/pppppppp/8/8/8/8/PPPPPPP1/RNBQKBNR w KQkq - 0 1"},
		{"king capturable", "4k3/4R3/8/8/8/8/8/4K3 w - - 0 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFEN(tc.fen)
			if !errors.Is(err, ErrInvalidFEN) {
				t.Errorf("ParseFEN(%q) err = %v, want ErrInvalidFEN", tc.fen, err)
			}
		})
	}
}

func TestParseFENInvariantError(t *testing.T) {
	_, err := ParseFEN("8/8/8/8/8/8/8/4K3 w - - 0 1")
	var iv *InvariantViolation
	if !errors.As(err, &iv) {
		t.Fatalf("err = %v, want an InvariantViolation", err)
	}
}

func TestParseFENDropsUnusableEnPassant(t *testing.T) {
	pos := mustParse(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e6 0 1")
	if pos.EnPassant != NoSquare {
		t.Errorf("EnPassant = %s, want none", pos.EnPassant)
	}
}

func TestMirror(t *testing.T) {
	pos := mustParse(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K1R1 w Qkq - 0 1")
	m := pos.Mirror()
	want := "r3k1r1/pppbbppp/2n2q1P/1P2p3/3pn3/BN2PNP1/P1PPQPB1/R3K2R b KQq - 0 1"
	if got := m.FEN(); got != want {
		t.Errorf("Mirror() = %q, want %q", got, want)
	}
	if !m.Mirror().Equal(pos) {
		t.Error("mirror is not an involution")
	}
	if len(m.LegalMoves()) != len(pos.LegalMoves()) {
		t.Error("mirrored position has a different move count")
	}
}
