package eval

import "github.com/hailam/chesscore/internal/board"

// mobilityWeight is the bonus per reachable square, by piece type.
var mobilityWeight = [6]int{0, 4, 5, 2, 1, 0}

// mobility counts the pseudo-legal destination squares of c's minor and
// major pieces, a cheap stand-in for the legal move count.
func mobility(pos *board.Position, c board.Color) int {
	own := pos.Occupied[c]
	score := 0
	for pt := board.Knight; pt < board.King; pt++ {
		for bb := pos.Pieces[c][pt]; bb != 0; {
			sq := bb.PopLSB()
			score += mobilityWeight[pt] * (pos.AttacksFrom(sq, pos.All) &^ own).PopCount()
		}
	}
	return score
}
