package engine

import "github.com/hailam/chesscore/internal/board"

// Ordering scores, highest searched first.
const (
	hashMoveScore   = 1 << 30
	captureBase     = 1 << 24
	promotionBase   = captureBase - 1<<20
	killerScore1    = 1 << 22
	killerScore2    = killerScore1 - 1
	castleBonus     = 5
	historyMaxScore = 1 << 20
)

// mvvLva ranks captures by most valuable victim, then least valuable
// attacker. Indexed [victim][attacker].
var mvvLva = [6][6]int{
	{15, 14, 13, 12, 11, 10},
	{25, 24, 23, 22, 21, 20},
	{35, 34, 33, 32, 31, 30},
	{45, 44, 43, 42, 41, 40},
	{55, 54, 53, 52, 51, 50},
}

// moveOrderer holds the killer and history tables that improve ordering
// as the iterative deepening proceeds.
type moveOrderer struct {
	killers [MaxPly][2]board.Move
	history [64][64]int
}

// age halves history scores and drops killers between searches.
func (mo *moveOrderer) age() {
	clear(mo.killers[:])
	for from := range mo.history {
		for to := range mo.history[from] {
			mo.history[from][to] /= 2
		}
	}
}

func (mo *moveOrderer) reset() {
	*mo = moveOrderer{}
}

func (mo *moveOrderer) score(pos *board.Position, m board.Move, ply int, hashMove board.Move) int {
	if m == hashMove {
		return hashMoveScore
	}
	if m.IsCapture(pos) {
		victim := board.Pawn
		if m.Kind() != board.EnPassant {
			victim = pos.PieceAt(m.To()).Type()
		}
		attacker := pos.PieceAt(m.From()).Type()
		s := captureBase + mvvLva[victim][attacker]*1000
		if m.IsPromotion() {
			s += int(m.Promotion()) * 100
		}
		return s
	}
	if m.IsPromotion() {
		return promotionBase + int(m.Promotion())*100
	}
	if ply < MaxPly {
		if m == mo.killers[ply][0] {
			return killerScore1
		}
		if m == mo.killers[ply][1] {
			return killerScore2
		}
	}
	s := mo.history[m.From()][m.To()]
	if m.IsCastle() {
		s += castleBonus
	}
	return s
}

// scoreMoves fills scores[i] for every move in ml.
func (mo *moveOrderer) scoreMoves(pos *board.Position, ml *board.MoveList, scores *[256]int, ply int, hashMove board.Move) {
	for i := range ml.Len() {
		scores[i] = mo.score(pos, ml.Get(i), ply, hashMove)
	}
}

// pickMove swaps the best remaining move into slot i. Selection is lazy
// because a cutoff often comes after the first few moves.
func pickMove(ml *board.MoveList, scores *[256]int, i int) board.Move {
	best := i
	for j := i + 1; j < ml.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != i {
		ml.Swap(i, best)
		scores[i], scores[best] = scores[best], scores[i]
	}
	return ml.Get(i)
}

// cutoff records a quiet move that refuted the position at ply.
func (mo *moveOrderer) cutoff(m board.Move, ply, depth int) {
	if ply < MaxPly && mo.killers[ply][0] != m {
		mo.killers[ply][1] = mo.killers[ply][0]
		mo.killers[ply][0] = m
	}
	h := &mo.history[m.From()][m.To()]
	*h += depth * depth
	if *h > historyMaxScore {
		for from := range mo.history {
			for to := range mo.history[from] {
				mo.history[from][to] /= 2
			}
		}
	}
}
