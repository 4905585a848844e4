package board

import (
	"slices"
	"testing"

	"github.com/notnil/chess"
)

// TestLegalMovesMatchReference compares the legal move set against an
// independent move generator along a deterministic walk from each test
// position.
func TestLegalMovesMatchReference(t *testing.T) {
	for _, fen := range testFENs {
		t.Run(fen, func(t *testing.T) {
			opt, err := chess.FEN(fen)
			if err != nil {
				t.Fatalf("reference rejected FEN: %v", err)
			}
			ref := chess.NewGame(opt).Position()
			pos := mustParse(t, fen)

			for ply := range 40 {
				var want []string
				refMoves := ref.ValidMoves()
				for _, m := range refMoves {
					want = append(want, m.String())
				}
				var got []string
				for _, m := range pos.LegalMoves() {
					got = append(got, m.String())
				}
				slices.Sort(want)
				slices.Sort(got)
				if !slices.Equal(got, want) {
					t.Fatalf("ply %d, %s:\n got %v\nwant %v", ply, pos.FEN(), got, want)
				}
				if len(got) == 0 {
					return
				}

				next := got[(ply*7+3)%len(got)]
				for _, m := range refMoves {
					if m.String() == next {
						ref = ref.Update(m)
						break
					}
				}
				if err := pos.PlayMoves(next); err != nil {
					t.Fatal(err)
				}
			}
		})
	}
}
