package uci

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
)

func run(t *testing.T, u *UCI, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	u.out = &out
	if err := u.Run(context.Background(), strings.NewReader(strings.Join(script, "\n")+"\n")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func newSession() *UCI {
	return New(engine.New(nil, engine.DefaultOptions()), nil)
}

func bestMove(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if m, ok := strings.CutPrefix(line, "bestmove "); ok {
			return m
		}
	}
	t.Fatalf("no bestmove in output:\n%s", out)
	return ""
}

func TestHandshake(t *testing.T) {
	out := run(t, newSession(), "uci", "isready")
	for _, want := range []string{"id name chesscore", "option name Hash", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestPositionAndGo(t *testing.T) {
	u := newSession()
	out := run(t, u,
		"position startpos moves e2e4 e7e5 g1f3",
		"go depth 2",
	)
	m := bestMove(t, out)
	want := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	pos := u.pos.Copy()
	if _, err := pos.ParseMove(m); err != nil {
		t.Errorf("bestmove %s is not legal: %v", m, err)
	}
	if !strings.Contains(out, "info depth 2 score cp") {
		t.Errorf("no depth 2 info line:\n%s", out)
	}
	if err := u.pos.PlayMoves("b8c6"); err != nil {
		t.Fatal(err)
	}
	if got := u.pos.FEN(); got != want {
		t.Errorf("FEN = %s, want %s", got, want)
	}
}

func TestPositionFEN(t *testing.T) {
	u := newSession()
	run(t, u, "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1 moves a1a7")
	if got, want := u.pos.FEN(), "6k1/R4ppp/8/8/8/8/8/6K1 b - - 1 1"; got != want {
		t.Errorf("FEN = %s, want %s", got, want)
	}
}

func TestBadPositionKeepsOldOne(t *testing.T) {
	u := newSession()
	out := run(t, u,
		"position startpos moves e2e4",
		"position startpos moves e2e4 e2e4",
		"position fen not/a/fen w - - 0 1",
	)
	if got := u.pos.FEN(); got != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1" {
		t.Errorf("FEN = %s", got)
	}
	if strings.Count(out, "info string") != 2 {
		t.Errorf("want two error lines:\n%s", out)
	}
}

func TestGoOptionsRejectBadValues(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = prev })

	opts := parseGoOptions(strings.Fields("depth x nodes 500 movetime -5 wtime 1000"))
	if opts.depth != 0 || opts.nodes != 500 || opts.moveTime != 0 || opts.clock.Remaining[board.White] != time.Second {
		t.Errorf("opts = %+v", opts)
	}
	if logged := buf.String(); !strings.Contains(logged, "bad-go-option") || !strings.Contains(logged, `"option":"depth"`) {
		t.Errorf("bad depth not logged:\n%s", logged)
	}

	u := newSession()
	if got, want := u.budget(parseGoOptions([]string{"depth", "x"})), u.skill.Budget(); got != want {
		t.Errorf("budget = %+v, want the skill preset %+v", got, want)
	}
}

func TestGoFindsMate(t *testing.T) {
	out := run(t, newSession(), "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "go depth 3")
	if m := bestMove(t, out); m != "a1a8" {
		t.Errorf("bestmove = %s, want a1a8", m)
	}
	if !strings.Contains(out, "score mate 1") {
		t.Errorf("no mate score:\n%s", out)
	}
}

func TestGoWithoutMoves(t *testing.T) {
	out := run(t, newSession(), "position fen R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1", "go depth 2")
	if m := bestMove(t, out); m != "0000" {
		t.Errorf("bestmove = %s, want 0000", m)
	}
}

func TestStopInfiniteSearch(t *testing.T) {
	out := run(t, newSession(), "position startpos", "go infinite", "stop", "isready")
	m := bestMove(t, out)
	if _, err := board.NewPosition().ParseMove(m); err != nil {
		t.Errorf("bestmove %s is not legal: %v", m, err)
	}
	if i, j := strings.Index(out, "bestmove"), strings.Index(out, "readyok"); i > j {
		t.Errorf("readyok before bestmove:\n%s", out)
	}
}

func TestQuitStopsSearch(t *testing.T) {
	out := run(t, newSession(), "go infinite", "quit", "isready")
	if strings.Contains(out, "readyok") {
		t.Errorf("command after quit was processed:\n%s", out)
	}
	bestMove(t, out)
}

func TestSkillOption(t *testing.T) {
	u := newSession()
	out := run(t, u, "setoption name Skill value easy", "go")
	if u.skill != engine.Easy {
		t.Errorf("skill = %v, want easy", u.skill)
	}
	m := bestMove(t, out)
	if _, err := board.NewPosition().ParseMove(m); err != nil {
		t.Errorf("bestmove %s is not legal: %v", m, err)
	}

	out = run(t, u, "setoption name Skill value godlike", "setoption name Hash value 8", "setoption name Colour value red")
	if strings.Count(out, "info string") != 2 {
		t.Errorf("want two option errors:\n%s", out)
	}
	if got := u.engine.Options().HashMB; got != 8 {
		t.Errorf("HashMB = %d, want 8", got)
	}
}

func TestPerftAndDisplay(t *testing.T) {
	out := run(t, newSession(), "perft 2", "d", "eval")
	if !strings.Contains(out, "Nodes searched: 400") {
		t.Errorf("perft output:\n%s", out)
	}
	if !strings.Contains(out, "e2e4: 20") {
		t.Errorf("divide line missing:\n%s", out)
	}
	if !strings.Contains(out, "Fen: "+board.StartFEN) {
		t.Errorf("d output:\n%s", out)
	}
	if !strings.Contains(out, "total 0 (white)") {
		t.Errorf("eval output:\n%s", out)
	}
}

func TestAnalysisCache(t *testing.T) {
	st, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	u := newSession()
	u.SetCache(st)
	first := run(t, u, "position startpos", "go depth 3")
	if strings.Contains(first, "cached") {
		t.Fatalf("first search answered from cache:\n%s", first)
	}
	second := run(t, u, "go depth 2")
	if !strings.Contains(second, "string cached") {
		t.Errorf("second search not answered from cache:\n%s", second)
	}
	if bestMove(t, first) != bestMove(t, second) {
		t.Errorf("cached move %s differs from searched %s", bestMove(t, second), bestMove(t, first))
	}
	third := run(t, u, "go depth 4")
	if strings.Contains(third, "cached") {
		t.Errorf("deeper search answered from cache:\n%s", third)
	}
}
