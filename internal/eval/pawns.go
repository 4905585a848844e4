package eval

import "github.com/hailam/chesscore/internal/board"

const (
	doubledPenalty  = 15
	isolatedPenalty = 20
	blockedPenalty  = 10
)

// passedBonus is indexed by the pawn's rank from its own side.
var passedBonus = [8]int{0, 5, 10, 20, 35, 60, 100, 200}

// adjacentFiles[f] is the mask of the files next to file f.
var adjacentFiles [8]board.Bitboard

// passedSpan[c][sq] covers the squares in front of sq on its own and the
// adjacent files, as seen by color c.
var passedSpan [2][64]board.Bitboard

func init() {
	for f := range 8 {
		if f > 0 {
			adjacentFiles[f] |= board.FileMask[f-1]
		}
		if f < 7 {
			adjacentFiles[f] |= board.FileMask[f+1]
		}
	}
	for sq := board.A1; sq <= board.H8; sq++ {
		bb := board.SquareBB(sq)
		north := bb.North().NorthFill()
		south := bb.South().SouthFill()
		passedSpan[board.White][sq] = north | north.East() | north.West()
		passedSpan[board.Black][sq] = south | south.East() | south.West()
	}
}

// pawnStructure scores c's pawns: penalties for doubled, isolated and
// blocked pawns, and a bonus for passed pawns growing with their rank.
func pawnStructure(pos *board.Position, c board.Color) int {
	pawns := pos.Pieces[c][board.Pawn]
	enemyPawns := pos.Pieces[c.Other()][board.Pawn]
	score := 0

	for f := range 8 {
		if n := (pawns & board.FileMask[f]).PopCount(); n > 1 {
			score -= doubledPenalty * (n - 1)
		}
	}

	blocked := pawns & pos.All.Forward(c.Other())
	score -= blockedPenalty * blocked.PopCount()

	for bb := pawns; bb != 0; {
		sq := bb.PopLSB()
		if pawns&adjacentFiles[sq.File()] == 0 {
			score -= isolatedPenalty
		}
		if enemyPawns&passedSpan[c][sq] == 0 {
			score += passedBonus[sq.RelativeRank(c)]
		}
	}
	return score
}
