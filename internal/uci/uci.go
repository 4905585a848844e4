// Package uci speaks a subset of the Universal Chess Interface over a pair
// of streams.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/eval"
	"github.com/hailam/chesscore/internal/storage"
)

// Cache remembers finished searches across sessions.
type Cache interface {
	LoadAnalysis(hash uint64, fen string) (storage.Analysis, bool, error)
	SaveAnalysis(hash uint64, a storage.Analysis) error
}

// UCI is a protocol session. Commands are read by Run; searches run on
// their own goroutine so that stop can interrupt them.
type UCI struct {
	engine *engine.Engine
	pos    *board.Position
	cache  Cache
	skill  engine.Difficulty

	mu  sync.Mutex // guards out
	out io.Writer

	cancel     context.CancelFunc
	searchDone chan struct{}
}

// New creates a session writing protocol output to w.
func New(eng *engine.Engine, w io.Writer) *UCI {
	return &UCI{
		engine: eng,
		pos:    board.NewPosition(),
		skill:  engine.Hard,
		out:    w,
	}
}

// SetCache enables the analysis cache for depth-limited searches.
func (u *UCI) SetCache(c Cache) { u.cache = c }

// SetSkill selects the preset used by a bare "go".
func (u *UCI) SetSkill(d engine.Difficulty) { u.skill = d }

// Run processes commands from r until quit, end of input or ctx is done.
// At end of input a running search is allowed to finish; quit and
// cancellation stop it.
func (u *UCI) Run(ctx context.Context, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				scanErr <- ctx.Err()
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			u.stop()
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				u.wait()
				return <-scanErr
			}
			if !u.handle(ctx, line) {
				u.stop()
				return nil
			}
		}
	}
}

// handle runs one command line and reports whether the session goes on.
func (u *UCI) handle(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		u.println("readyok")
	case "ucinewgame":
		u.stop()
		u.engine.Clear()
		u.pos = board.NewPosition()
	case "position":
		u.stop()
		if err := u.handlePosition(args); err != nil {
			log.Warn().Err(err).Str("line", line).Msg("bad-position")
			u.printf("info string %v\n", err)
		}
	case "go":
		u.stop()
		u.handleGo(ctx, args)
	case "stop":
		u.stop()
	case "quit":
		return false
	case "setoption":
		u.handleSetOption(args)
	case "d":
		u.printf("%s\nFen: %s\nKey: %016X\n", u.pos, u.pos.FEN(), u.pos.Hash)
	case "eval":
		u.handleEval()
	case "perft":
		u.handlePerft(args)
	default:
		log.Debug().Str("command", cmd).Msg("unknown-command")
		u.printf("info string unknown command %s\n", cmd)
	}
	return true
}

func (u *UCI) printf(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

func (u *UCI) println(s string) { u.printf("%s\n", s) }

func (u *UCI) handleUCI() {
	u.println("id name chesscore")
	u.println("id author the chesscore authors")
	u.printf("option name Hash type spin default %d min 1 max 4096\n", engine.DefaultOptions().HashMB)
	u.println("option name Skill type combo default hard var easy var medium var hard var max")
	u.println("uciok")
}

// handlePosition parses
//
//	position startpos [moves m1 m2 ...]
//	position fen <fen> [moves m1 m2 ...]
//
// The session position is only replaced when the whole command is valid.
func (u *UCI) handlePosition(args []string) error {
	if len(args) == 0 {
		return errors.New("position: missing startpos or fen")
	}
	movesAt := len(args)
	for i, a := range args {
		if a == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			return fmt.Errorf("position: %w", err)
		}
	default:
		return fmt.Errorf("position: unknown argument %q", args[0])
	}

	if movesAt < len(args) {
		if err := pos.PlayMoves(args[movesAt+1:]...); err != nil {
			return fmt.Errorf("position: %w", err)
		}
	}
	u.pos = pos
	return nil
}

type goOptions struct {
	depth    int
	nodes    uint64
	moveTime time.Duration
	infinite bool
	clock    engine.Clock
}

// parseGoOptions reads the limits of a go command. A value that does not
// parse is logged and the limit left unset.
func parseGoOptions(args []string) goOptions {
	var opts goOptions
	next := func(i *int) string {
		if *i+1 < len(args) {
			*i++
			return args[*i]
		}
		return ""
	}
	num := func(name, s string) int64 {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			log.Debug().Err(err).Str("option", name).Str("value", s).Msg("bad-go-option")
		}
		return max(n, 0)
	}
	for i := 0; i < len(args); i++ {
		switch name := args[i]; name {
		case "depth":
			opts.depth = int(min(num(name, next(&i)), engine.MaxPly-1))
		case "nodes":
			opts.nodes = uint64(num(name, next(&i)))
		case "movetime":
			opts.moveTime = time.Duration(num(name, next(&i))) * time.Millisecond
		case "infinite":
			opts.infinite = true
		case "wtime":
			opts.clock.Remaining[board.White] = time.Duration(num(name, next(&i))) * time.Millisecond
		case "btime":
			opts.clock.Remaining[board.Black] = time.Duration(num(name, next(&i))) * time.Millisecond
		case "winc":
			opts.clock.Increment[board.White] = time.Duration(num(name, next(&i))) * time.Millisecond
		case "binc":
			opts.clock.Increment[board.Black] = time.Duration(num(name, next(&i))) * time.Millisecond
		case "movestogo":
			opts.clock.MovesToGo = int(num(name, next(&i)))
		default:
			log.Debug().Str("option", name).Msg("unknown-go-option")
		}
	}
	return opts
}

// budget turns go options into a search budget. A bare "go" uses the
// skill preset.
func (u *UCI) budget(opts goOptions) engine.Budget {
	switch {
	case opts.infinite:
		return engine.Infinite
	case opts.depth > 0 || opts.nodes > 0 || opts.moveTime > 0:
		return engine.Budget{Depth: opts.depth, Nodes: opts.nodes, MoveTime: opts.moveTime}
	case opts.clock.Remaining != [2]time.Duration{}:
		ply := (u.pos.FullMoveNumber-1)*2 + int(u.pos.SideToMove)
		return engine.ClockBudget(opts.clock, u.pos.SideToMove, ply)
	}
	return u.skill.Budget()
}

func (u *UCI) handleGo(ctx context.Context, args []string) {
	opts := parseGoOptions(args)
	pos := u.pos.Copy()

	bare := len(args) == 0
	if bare && u.skill == engine.Easy {
		u.printf("bestmove %s\n", engine.RandomMove(pos))
		return
	}

	budget := u.budget(opts)
	if u.sendCached(pos, budget) {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	u.cancel, u.searchDone = cancel, done

	u.engine.OnInfo = func(info engine.Info) { u.sendInfo(info) }

	go func() {
		defer close(done)
		res, err := u.engine.FindBestMove(ctx, pos, budget)
		if err != nil {
			log.Error().Err(err).Msg("search-failed")
			u.printf("info string %v\n", err)
			u.println("bestmove 0000")
			return
		}
		u.record(pos, res)
		u.printf("bestmove %s\n", res.Move)
	}()
}

// sendCached answers a depth-limited search from the cache when a stored
// result is at least as deep.
func (u *UCI) sendCached(pos *board.Position, b engine.Budget) bool {
	if u.cache == nil || b.Depth == 0 || b.Nodes != 0 || b.MoveTime != 0 {
		return false
	}
	a, ok, err := u.cache.LoadAnalysis(pos.Hash, pos.FEN())
	if err != nil {
		log.Warn().Err(err).Msg("analysis-cache-read")
		return false
	}
	if !ok || a.Depth < b.Depth {
		return false
	}
	m, err := pos.ParseMove(a.Move)
	if err != nil {
		log.Warn().Err(err).Str("fen", a.FEN).Msg("analysis-cache-stale")
		return false
	}
	u.printf("info depth %d score %s nodes %d pv %s string cached\n",
		a.Depth, engine.FormatScore(a.Score), a.Nodes, strings.Join(a.PV, " "))
	u.printf("bestmove %s\n", m)
	return true
}

func (u *UCI) record(pos *board.Position, res engine.SearchResult) {
	if u.cache == nil || res.Depth == 0 || res.Move == board.NoMove {
		return
	}
	pv := make([]string, len(res.PV))
	for i, m := range res.PV {
		pv[i] = m.String()
	}
	err := u.cache.SaveAnalysis(pos.Hash, storage.Analysis{
		FEN:   pos.FEN(),
		Move:  res.Move.String(),
		Score: res.Score,
		Depth: res.Depth,
		Nodes: res.Nodes,
		PV:    pv,
	})
	if err != nil {
		log.Warn().Err(err).Msg("analysis-cache-write")
	}
}

func (u *UCI) sendInfo(info engine.Info) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d score %s nodes %d time %d",
		info.Depth, engine.FormatScore(info.Score), info.Nodes, info.Elapsed.Milliseconds())
	if info.Elapsed > 0 {
		fmt.Fprintf(&sb, " nps %d", uint64(float64(info.Nodes)/info.Elapsed.Seconds()))
	}
	if info.HashFull > 0 {
		fmt.Fprintf(&sb, " hashfull %d", info.HashFull)
	}
	if len(info.PV) > 0 {
		sb.WriteString(" pv")
		for _, m := range info.PV {
			sb.WriteString(" " + m.String())
		}
	}
	u.println(sb.String())
}

// stop interrupts a running search and waits for its bestmove.
func (u *UCI) stop() {
	if u.cancel != nil {
		u.cancel()
	}
	u.wait()
}

// wait blocks until the running search, if any, has printed its bestmove.
func (u *UCI) wait() {
	if u.searchDone == nil {
		return
	}
	<-u.searchDone
	u.cancel()
	u.cancel, u.searchDone = nil, nil
}

func (u *UCI) handleSetOption(args []string) {
	var name, value []string
	target := &name
	for _, a := range args {
		switch a {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			*target = append(*target, a)
		}
	}
	val := strings.Join(value, " ")

	switch strings.ToLower(strings.Join(name, " ")) {
	case "hash":
		mb, err := strconv.Atoi(val)
		if err != nil || mb < 1 {
			u.printf("info string invalid Hash value %q\n", val)
			return
		}
		u.stop()
		u.engine.SetHashSize(mb)
	case "skill":
		d, err := engine.ParseDifficulty(val)
		if err != nil {
			u.printf("info string %v\n", err)
			return
		}
		u.skill = d
	default:
		u.printf("info string unknown option %s\n", strings.Join(name, " "))
	}
}

func (u *UCI) handleEval() {
	ev := u.engine.Evaluator()
	if c, ok := ev.(eval.Classical); ok && !u.pos.IsInsufficientMaterial() {
		b := c.Explain(u.pos)
		u.printf("material %d\npiece-square %d\npawns %d\nmobility %d\n",
			b.Material, b.PieceSquare, b.Pawns, b.Mobility)
	}
	u.printf("total %d (white)\n", eval.White(ev, u.pos))
}

func (u *UCI) handlePerft(args []string) {
	depth := 1
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}
	start := time.Now()
	var total uint64
	for _, e := range u.pos.Divide(depth) {
		u.printf("%s: %d\n", e.Move, e.Nodes)
		total += e.Nodes
	}
	u.printf("\nNodes searched: %d\nTime: %dms\n", total, time.Since(start).Milliseconds())
}
