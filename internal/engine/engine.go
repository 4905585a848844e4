// Package engine searches chess positions for the best move.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/eval"
)

// Options configures an Engine.
type Options struct {
	HashMB          int // transposition table size
	EvalCacheMB     int
	QuiescenceDepth int // safety cap on capture sequences past the horizon
	DefaultDepth    int // depth searched for an empty Budget
}

func DefaultOptions() Options {
	return Options{
		HashMB:          16,
		EvalCacheMB:     4,
		QuiescenceDepth: 8,
		DefaultDepth:    DefaultDepth,
	}
}

// Info reports a completed iteration.
type Info struct {
	Depth    int
	Score    int
	Nodes    uint64
	Elapsed  time.Duration
	PV       []board.Move
	HashFull int // permille
}

// SearchResult is the outcome of FindBestMove. Score is from the side to
// move's point of view. Depth is the last fully searched depth; Stopped is
// set when the budget ran out before the planned depth was reached.
type SearchResult struct {
	Move    board.Move
	Score   int
	Depth   int
	Nodes   uint64
	PV      []board.Move
	Elapsed time.Duration
	Stopped bool
}

// Engine owns the search state that survives between moves: the
// transposition table, the evaluation cache and the ordering heuristics.
// It is not safe for concurrent FindBestMove calls; Stop may be called from
// any goroutine.
type Engine struct {
	ev      eval.Evaluator
	opts    Options
	tt      *TranspositionTable
	cache   *evalCache
	orderer moveOrderer

	nodes atomic.Uint64
	stop  atomic.Bool

	// OnInfo, when set, is called after every completed iteration.
	OnInfo func(Info)
}

// New creates an engine scoring positions with ev. A nil ev selects the
// classical evaluator.
func New(ev eval.Evaluator, opts Options) *Engine {
	if ev == nil {
		ev = eval.Classical{}
	}
	def := DefaultOptions()
	if opts.HashMB <= 0 {
		opts.HashMB = def.HashMB
	}
	if opts.EvalCacheMB <= 0 {
		opts.EvalCacheMB = def.EvalCacheMB
	}
	if opts.QuiescenceDepth <= 0 {
		opts.QuiescenceDepth = def.QuiescenceDepth
	}
	if opts.DefaultDepth <= 0 {
		opts.DefaultDepth = def.DefaultDepth
	}
	return &Engine{
		ev:    ev,
		opts:  opts,
		tt:    NewTranspositionTable(opts.HashMB),
		cache: newEvalCache(opts.EvalCacheMB),
	}
}

func (e *Engine) Options() Options { return e.opts }

func (e *Engine) Evaluator() eval.Evaluator { return e.ev }

// SetHashSize reallocates the transposition table.
func (e *Engine) SetHashSize(mb int) {
	e.opts.HashMB = mb
	e.tt = NewTranspositionTable(mb)
}

// Stop makes a running search return its best result so far.
func (e *Engine) Stop() { e.stop.Store(true) }

// Nodes is the node count of the running or last search.
func (e *Engine) Nodes() uint64 { return e.nodes.Load() }

// Clear forgets everything learned from earlier searches.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.cache.clear()
	e.orderer.reset()
}

// FindBestMove searches pos within budget. pos is not modified. A position
// that breaks a structural invariant yields an *board.InvariantViolation
// and no result.
func (e *Engine) FindBestMove(ctx context.Context, pos *board.Position, budget Budget) (res SearchResult, err error) {
	if err := pos.Validate(); err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			iv, ok := r.(*board.InvariantViolation)
			if !ok {
				panic(r)
			}
			log.Error().Str("fen", pos.FEN()).Str("reason", iv.Reason).Msg("search-invariant-violation")
			res, err = SearchResult{}, fmt.Errorf("search: %w", iv)
		}
	}()

	start := time.Now()
	e.stop.Store(false)
	e.nodes.Store(0)
	e.tt.NewSearch()
	e.orderer.age()

	s := &searcher{
		pos:      pos.Copy(),
		ev:       e.ev,
		tt:       e.tt,
		cache:    e.cache,
		orderer:  &e.orderer,
		ctx:      ctx,
		maxNodes: budget.Nodes,
		qDepth:   e.opts.QuiescenceDepth,
		nodes:    &e.nodes,
		stop:     &e.stop,
	}
	if budget.MoveTime > 0 {
		s.deadline = start.Add(budget.MoveTime)
	}
	maxDepth := budget.maxDepth(e.opts.DefaultDepth)

	log.Debug().
		Str("fen", pos.FEN()).
		Int("max-depth", maxDepth).
		Uint64("max-nodes", budget.Nodes).
		Dur("move-time", budget.MoveTime).
		Msg("search-start")

	var rootMoves board.MoveList
	s.pos.GenerateLegal(&rootMoves)
	if rootMoves.Len() == 0 {
		res = SearchResult{Move: board.NoMove, Elapsed: time.Since(start)}
		if s.pos.InCheck() {
			res.Score = -MateScore
		}
		log.Info().Int("score", res.Score).Msg("search-no-legal-moves")
		return res, nil
	}

	for depth := 1; depth <= maxDepth; depth++ {
		s.rootBest = board.NoMove
		score := s.negamax(depth, 0, -Infinity, Infinity)
		if s.aborted {
			break
		}
		s.rootHint = s.pv.moves[0][0]
		if s.pv.length[0] == 0 {
			s.rootHint = s.rootBest
		}
		res = SearchResult{
			Move:  s.rootHint,
			Score: score,
			Depth: depth,
			PV:    s.pv.line(),
		}
		if len(res.PV) == 0 {
			res.PV = []board.Move{res.Move}
		}
		info := Info{
			Depth:    depth,
			Score:    score,
			Nodes:    e.nodes.Load(),
			Elapsed:  time.Since(start),
			PV:       res.PV,
			HashFull: e.tt.HashFull(),
		}
		log.Debug().
			Int("depth", depth).
			Int("score", score).
			Uint64("nodes", info.Nodes).
			Str("pv", formatPV(res.PV)).
			Msg("iteration-complete")
		if e.OnInfo != nil {
			e.OnInfo(info)
		}
		// A mate inside the horizon cannot be improved by going deeper.
		if abs(score) >= MateScore-depth {
			break
		}
	}

	if s.aborted {
		res.Stopped = true
		if res.Depth == 0 {
			res.Move = s.rootBest
			res.Score = s.rootScore
			if res.Move == board.NoMove {
				var scores [256]int
				e.orderer.scoreMoves(s.pos, &rootMoves, &scores, 0, s.rootHint)
				res.Move = pickMove(&rootMoves, &scores, 0)
				res.Score = 0
			}
			res.PV = []board.Move{res.Move}
		}
		log.Debug().Int("depth", res.Depth).Uint64("nodes", e.nodes.Load()).Msg("search-budget-exhausted")
	}
	res.Nodes = e.nodes.Load()
	res.Elapsed = time.Since(start)

	log.Info().
		Str("move", res.Move.String()).
		Int("score", res.Score).
		Int("depth", res.Depth).
		Uint64("nodes", res.Nodes).
		Dur("elapsed", res.Elapsed).
		Bool("stopped", res.Stopped).
		Float64("tt-hit-rate", e.tt.HitRate()).
		Msg("search-complete")
	return res, nil
}

// FormatScore renders a score the way the line protocol reports it:
// "cp 35", or "mate 3" / "mate -2" counted in moves.
func FormatScore(score int) string {
	if abs(score) >= MateScore-MaxPly {
		moves := (MateScore - abs(score) + 1) / 2
		if score < 0 {
			moves = -moves
		}
		return fmt.Sprintf("mate %d", moves)
	}
	return fmt.Sprintf("cp %d", score)
}

func formatPV(pv []board.Move) string {
	var b []byte
	for i, m := range pv {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, m.String()...)
	}
	return string(b)
}
