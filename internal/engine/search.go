package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/eval"
)

// Search constants. Scores are centipawns from the side to move's point of
// view; a mate found at ply n scores MateScore-n.
const (
	Infinity  = 32000
	MateScore = 31000
	MaxPly    = 128
)

// budgetCheckInterval is how many nodes pass between time and context
// checks. It must be a power of two.
const budgetCheckInterval = 1024

// pvTable is the triangular principal variation table.
type pvTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

func (pv *pvTable) update(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	for i := ply + 1; i < pv.length[ply+1]; i++ {
		pv.moves[ply][i] = pv.moves[ply+1][i]
	}
	pv.length[ply] = max(pv.length[ply+1], ply+1)
}

func (pv *pvTable) line() []board.Move {
	return append([]board.Move(nil), pv.moves[0][:pv.length[0]]...)
}

// searcher runs one depth-first pass over a private position. All fields
// except nodes and stop belong to the goroutine running the search.
type searcher struct {
	pos     *board.Position
	ev      eval.Evaluator
	tt      *TranspositionTable
	cache   *evalCache
	orderer *moveOrderer
	pv      pvTable

	ctx      context.Context
	deadline time.Time
	maxNodes uint64
	qDepth   int

	nodes   *atomic.Uint64
	stop    *atomic.Bool
	aborted bool

	// Best root move of the pass in progress, kept for stopped searches.
	rootBest  board.Move
	rootScore int
	rootHint  board.Move
}

// outOfBudget reports whether the search must unwind. The node limit is
// exact; time, context and the stop flag are polled every
// budgetCheckInterval nodes.
func (s *searcher) outOfBudget(n uint64) bool {
	if s.aborted {
		return true
	}
	if s.maxNodes > 0 && n > s.maxNodes {
		s.aborted = true
		return true
	}
	if n&(budgetCheckInterval-1) != 0 {
		return false
	}
	if s.stop.Load() || s.ctx.Err() != nil ||
		(!s.deadline.IsZero() && time.Now().After(s.deadline)) {
		s.aborted = true
	}
	return s.aborted
}

func (s *searcher) evaluate() int {
	if score, ok := s.cache.probe(s.pos.Hash); ok {
		return score
	}
	score := clamp(s.ev.Evaluate(s.pos), -MateScore+MaxPly+1, MateScore-MaxPly-1)
	s.cache.store(s.pos.Hash, score)
	return score
}

// isDraw covers the draws that can arise inside the tree. A single earlier
// occurrence counts as a repetition: if the position was worth playing into
// once it can be repeated again. Mate on the hundredth half-move is still
// mate, so the fifty-move rule only applies when the side to move can
// answer.
func (s *searcher) isDraw() bool {
	if s.pos.Repetitions() > 0 || s.pos.IsInsufficientMaterial() {
		return true
	}
	return s.pos.HalfMoveClock >= 100 && (!s.pos.InCheck() || s.pos.HasLegalMoves())
}

// negamax searches the current position to depth with a fail-soft
// alpha-beta window.
func (s *searcher) negamax(depth, ply, alpha, beta int) int {
	s.pv.length[ply] = ply
	if ply > 0 && s.isDraw() {
		return 0
	}
	inCheck := s.pos.InCheck()
	if inCheck {
		depth++
	}
	if depth <= 0 {
		return s.quiesce(ply, 0, alpha, beta)
	}
	if s.outOfBudget(s.nodes.Add(1)) {
		return 0
	}
	if ply >= MaxPly-1 {
		return s.evaluate()
	}

	hashMove := board.NoMove
	if e, ok := s.tt.Probe(s.pos.Hash); ok {
		hashMove = e.move
		if ply > 0 && int(e.depth) >= depth {
			score := scoreFromTT(int(e.score), ply)
			switch {
			case e.bound == BoundExact,
				e.bound == BoundLower && score >= beta,
				e.bound == BoundUpper && score <= alpha:
				return score
			}
		}
	}
	if ply == 0 && s.rootHint != board.NoMove {
		hashMove = s.rootHint
	}

	var moves board.MoveList
	s.pos.GenerateLegal(&moves)
	if moves.Len() == 0 {
		if inCheck {
			return -(MateScore - ply)
		}
		return 0
	}

	var scores [256]int
	s.orderer.scoreMoves(s.pos, &moves, &scores, ply, hashMove)

	origAlpha := alpha
	best := -Infinity
	bestMove := board.NoMove
	for i := range moves.Len() {
		m := pickMove(&moves, &scores, i)
		quiet := !m.IsCapture(s.pos) && !m.IsPromotion()

		undo := s.pos.MakeMove(m)
		score := -s.negamax(depth-1, ply+1, -beta, -alpha)
		s.pos.UnmakeMove(undo)

		if s.aborted {
			return 0
		}
		if score > best {
			best = score
			bestMove = m
			if ply == 0 {
				s.rootBest, s.rootScore = m, score
			}
		}
		if score > alpha {
			alpha = score
			s.pv.update(ply, m)
		}
		if alpha >= beta {
			if quiet {
				s.orderer.cutoff(m, ply, depth)
			}
			break
		}
	}

	bound := BoundExact
	switch {
	case best <= origAlpha:
		bound = BoundUpper
	case best >= beta:
		bound = BoundLower
	}
	s.tt.Store(s.pos.Hash, depth, scoreToTT(best, ply), bound, bestMove)
	return best
}

// quiesce resolves captures and promotions past the horizon so that the
// static evaluation is only taken in quiet positions. In check every
// evasion is searched and standing pat is not allowed.
func (s *searcher) quiesce(ply, qply, alpha, beta int) int {
	s.pv.length[ply] = ply
	if s.outOfBudget(s.nodes.Add(1)) {
		return 0
	}
	if ply >= MaxPly-1 || qply >= s.qDepth {
		return s.evaluate()
	}

	inCheck := s.pos.InCheck()
	var moves board.MoveList
	best := -Infinity
	if inCheck {
		s.pos.GenerateLegal(&moves)
		if moves.Len() == 0 {
			return -(MateScore - ply)
		}
	} else {
		best = s.evaluate()
		if best >= beta {
			return best
		}
		alpha = max(alpha, best)
		s.pos.GenerateCaptures(&moves)
	}

	var scores [256]int
	s.orderer.scoreMoves(s.pos, &moves, &scores, ply, board.NoMove)
	for i := range moves.Len() {
		m := pickMove(&moves, &scores, i)
		undo := s.pos.MakeMove(m)
		score := -s.quiesce(ply+1, qply+1, -beta, -alpha)
		s.pos.UnmakeMove(undo)

		if s.aborted {
			return 0
		}
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
			s.pv.update(ply, m)
		}
		if alpha >= beta {
			break
		}
	}
	return best
}
