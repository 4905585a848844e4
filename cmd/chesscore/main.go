// Command chesscore is a chess engine. Without mode flags it speaks the
// UCI protocol on stdin and stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/render"
	"github.com/hailam/chesscore/internal/storage"
	"github.com/hailam/chesscore/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	logLevel   = flag.String("log-level", "warn", "log level: trace, debug, info, warn, error")
	dbDir      = flag.String("db", "", "database directory (default: platform data dir, \"-\" disables)")

	fen      = flag.String("fen", board.StartFEN, "position for the one-shot modes")
	moves    = flag.String("moves", "", "space separated moves played from -fen")
	perft    = flag.Int("perft", 0, "print a perft divide to this depth and exit")
	search   = flag.Bool("search", false, "search -fen once and exit")
	svgPath  = flag.String("svg", "", "write -fen as an SVG image to this file and exit")
	selfPlay = flag.Int("selfplay", 0, "play this many engine-vs-engine games and record the results")

	depth    = flag.Int("depth", 0, "search depth limit")
	nodes    = flag.Uint64("nodes", 0, "search node limit")
	moveTime = flag.Duration("movetime", 0, "search time limit")
	skill    = flag.String("skill", "", "difficulty preset: easy, medium, hard, max")
	hashMB   = flag.Int("hash", 0, "transposition table size in MB")
)

func main() {
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("cpu-profiling-enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("exiting")
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	st, err := openStorage()
	if err != nil {
		return err
	}
	settings := storage.DefaultSettings()
	if st != nil {
		defer st.Close()
		if settings, err = st.LoadSettings(); err != nil {
			return err
		}
	}
	if *hashMB > 0 {
		settings.HashMB = *hashMB
	}
	if *skill != "" {
		settings.Difficulty = *skill
	}
	diff, err := engine.ParseDifficulty(settings.Difficulty)
	if err != nil {
		return err
	}
	if st != nil && (*hashMB > 0 || *skill != "") {
		if err := st.SaveSettings(settings); err != nil {
			return err
		}
	}

	opts := engine.DefaultOptions()
	opts.HashMB = settings.HashMB
	opts.DefaultDepth = settings.DefaultDepth
	eng := engine.New(nil, opts)

	switch {
	case *perft > 0:
		pos, err := startPosition()
		if err != nil {
			return err
		}
		return runPerft(os.Stdout, pos, *perft)
	case *svgPath != "":
		pos, err := startPosition()
		if err != nil {
			return err
		}
		return writeSVG(*svgPath, pos)
	case *search:
		pos, err := startPosition()
		if err != nil {
			return err
		}
		return runSearch(ctx, os.Stdout, eng, pos, flagBudget(diff))
	case *selfPlay > 0:
		return runSelfPlay(ctx, os.Stdout, eng, st, diff, *selfPlay)
	}

	protocol := uci.New(eng, os.Stdout)
	protocol.SetSkill(diff)
	if st != nil {
		protocol.SetCache(st)
	}
	return protocol.Run(ctx, os.Stdin)
}

func openStorage() (*storage.Storage, error) {
	switch *dbDir {
	case "-":
		return nil, nil
	case "":
		return storage.OpenDefault()
	}
	return storage.Open(*dbDir)
}

func startPosition() (*board.Position, error) {
	pos, err := board.ParseFEN(*fen)
	if err != nil {
		return nil, err
	}
	if *moves != "" {
		if err := pos.PlayMoves(splitMoves(*moves)...); err != nil {
			return nil, err
		}
	}
	return pos, nil
}

func splitMoves(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
}

// flagBudget builds the budget from -depth, -nodes and -movetime, falling
// back to the difficulty preset.
func flagBudget(d engine.Difficulty) engine.Budget {
	b := engine.Budget{Depth: *depth, Nodes: *nodes, MoveTime: *moveTime}
	if b == (engine.Budget{}) && d != engine.Easy {
		return d.Budget()
	}
	return b
}

func runPerft(w io.Writer, pos *board.Position, depth int) error {
	start := time.Now()
	var total uint64
	for _, e := range pos.Divide(depth) {
		fmt.Fprintf(w, "%s: %d\n", e.Move, e.Nodes)
		total += e.Nodes
	}
	elapsed := time.Since(start)
	fmt.Fprintf(w, "\nNodes searched: %d\n", total)
	log.Info().Int("depth", depth).Uint64("nodes", total).Dur("elapsed", elapsed).Msg("perft-complete")
	return nil
}

func writeSVG(path string, pos *board.Position) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.SVG(f, pos, render.Coordinates(), render.Title(pos.FEN())); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runSearch(ctx context.Context, w io.Writer, eng *engine.Engine, pos *board.Position, b engine.Budget) error {
	eng.OnInfo = func(info engine.Info) {
		fmt.Fprintf(w, "depth %d score %s nodes %d time %dms pv", info.Depth,
			engine.FormatScore(info.Score), info.Nodes, info.Elapsed.Milliseconds())
		for _, m := range info.PV {
			fmt.Fprintf(w, " %s", m)
		}
		fmt.Fprintln(w)
	}
	res, err := eng.Analyze(ctx, pos, b, time.Second, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "bestmove %s score %s depth %d nodes %d stopped %t\n",
		res.Move, engine.FormatScore(res.Score), res.Depth, res.Nodes, res.Stopped)
	return nil
}

// runSelfPlay plays the engine against itself from -fen and records every
// finished game.
func runSelfPlay(ctx context.Context, w io.Writer, eng *engine.Engine, st *storage.Storage, d engine.Difficulty, games int) error {
	const maxPlies = 300
	for g := range games {
		pos, err := startPosition()
		if err != nil {
			return err
		}
		eng.Clear()
		plies := 0
		status, reason := pos.Status()
		for status == board.Ongoing && plies < maxPlies {
			m, err := eng.Play(ctx, pos, d)
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if _, err := pos.Play(m); err != nil {
				return err
			}
			plies++
			status, reason = pos.Status()
		}
		fmt.Fprintf(w, "game %d: %s %s after %d plies\n", g+1, status, reason, plies)
		if st != nil && status != board.Ongoing {
			if err := st.RecordGame(status, reason, plies); err != nil {
				return err
			}
		}
	}
	if st != nil {
		stats, err := st.LoadStats()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "recorded %d games, white scores %.1f%%\n", stats.GamesPlayed, stats.WhiteScore())
	}
	return nil
}
