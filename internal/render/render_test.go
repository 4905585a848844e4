package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func TestSVGStartPosition(t *testing.T) {
	var buf bytes.Buffer
	if err := SVG(&buf, board.NewPosition(), Coordinates(), Title("start")); err != nil {
		t.Fatalf("SVG: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Errorf("not an SVG document:\n%s", out)
	}
	if n := strings.Count(out, "<rect"); n != 65 {
		t.Errorf("%d rects, want 64 squares and a background", n)
	}
	if n := strings.Count(out, `class="P"`); n != 8 {
		t.Errorf("%d white pawns, want 8", n)
	}
	if n := strings.Count(out, `class="k"`); n != 1 {
		t.Errorf("%d black kings, want 1", n)
	}
	for _, want := range []string{"<title>start</title>", ">a</text>", ">8</text>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q", want)
		}
	}
	if strings.Contains(out, checkColor) || strings.Contains(out, highlightColor) {
		t.Error("start position has highlighted squares")
	}
}

func TestSVGHighlights(t *testing.T) {
	pos, err := board.ParseFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if err != nil {
		t.Fatal(err)
	}
	m := board.NewMove(board.D8, board.H4, board.Normal)
	var buf bytes.Buffer
	if err := SVG(&buf, pos, LastMove(m)); err != nil {
		t.Fatalf("SVG: %v", err)
	}
	out := buf.String()
	if n := strings.Count(out, checkColor); n != 1 {
		t.Errorf("%d check squares, want 1", n)
	}
	if n := strings.Count(out, highlightColor); n != 2 {
		t.Errorf("%d highlighted squares, want 2", n)
	}
}

func TestOrigin(t *testing.T) {
	var o options
	if x, y := o.origin(board.A1); x != margin || y != margin+7*squareSize {
		t.Errorf("a1 at (%d,%d)", x, y)
	}
	o.flipped = true
	if x, y := o.origin(board.A1); x != margin+7*squareSize || y != margin {
		t.Errorf("flipped a1 at (%d,%d)", x, y)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSVGWriteError(t *testing.T) {
	if err := SVG(failingWriter{}, board.NewPosition(), Flipped()); err == nil {
		t.Error("SVG ignored a write error")
	}
}
