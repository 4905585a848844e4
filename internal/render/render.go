// Package render draws positions as SVG images.
package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/hailam/chesscore/internal/board"
)

const (
	squareSize = 45
	margin     = 20
	boardSize  = 8 * squareSize
	imageSize  = boardSize + 2*margin

	lightColor     = "#f0d9b5"
	darkColor      = "#b58863"
	highlightColor = "#cdd26a"
	checkColor     = "#e8584f"
)

var glyphs = [12]string{
	"♙", "♘", "♗", "♖", "♕", "♔",
	"♟", "♞", "♝", "♜", "♛", "♚",
}

type options struct {
	flipped     bool
	coordinates bool
	lastMove    board.Move
	title       string
}

// Option customises SVG output.
type Option func(*options)

// Flipped draws the board from Black's side.
func Flipped() Option { return func(o *options) { o.flipped = true } }

// Coordinates labels files and ranks in the margin.
func Coordinates() Option { return func(o *options) { o.coordinates = true } }

// LastMove highlights the from and to squares of m.
func LastMove(m board.Move) Option { return func(o *options) { o.lastMove = m } }

// Title sets the image title.
func Title(s string) Option { return func(o *options) { o.title = s } }

// SVG writes pos as an SVG document to w. A king in check stands on a red
// square.
func SVG(w io.Writer, pos *board.Position, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(imageSize, imageSize)
	if o.title != "" {
		canvas.Title(o.title)
	}
	canvas.Rect(0, 0, imageSize, imageSize, "fill:#ffffff")

	var checked board.Square = board.NoSquare
	if pos.InCheck() {
		checked = pos.KingSquare(pos.SideToMove)
	}

	canvas.Gid("squares")
	for sq := board.A1; sq <= board.H8; sq++ {
		x, y := o.origin(sq)
		fill := darkColor
		if sq.IsLight() {
			fill = lightColor
		}
		switch {
		case sq == checked:
			fill = checkColor
		case o.lastMove != board.NoMove && (sq == o.lastMove.From() || sq == o.lastMove.To()):
			fill = highlightColor
		}
		canvas.Rect(x, y, squareSize, squareSize, "fill:"+fill)
	}
	canvas.Gend()

	canvas.Gid("pieces")
	for sq := board.A1; sq <= board.H8; sq++ {
		pc := pos.PieceAt(sq)
		if pc == board.NoPiece {
			continue
		}
		x, y := o.origin(sq)
		canvas.Text(x+squareSize/2, y+squareSize*4/5, glyphs[pc],
			fmt.Sprintf("font-size:%dpx;text-anchor:middle;fill:#000000", squareSize*4/5),
			fmt.Sprintf(`class="%s"`, pc))
	}
	canvas.Gend()

	if o.coordinates {
		const style = "font-size:12px;text-anchor:middle;fill:#555555"
		for i := range 8 {
			file, rank := i, i
			if o.flipped {
				file, rank = 7-i, 7-i
			}
			cx := margin + i*squareSize + squareSize/2
			canvas.Text(cx, imageSize-margin/3, string(rune('a'+file)), style)
			cy := margin + (7-i)*squareSize + squareSize/2 + 4
			canvas.Text(margin/2, cy, string(rune('1'+rank)), style)
		}
	}

	canvas.End()
	return ew.err
}

// origin returns the top-left pixel of sq.
func (o *options) origin(sq board.Square) (int, int) {
	file, rank := sq.File(), sq.Rank()
	if o.flipped {
		file, rank = 7-file, 7-rank
	}
	return margin + file*squareSize, margin + (7-rank)*squareSize
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = fmt.Errorf("render: %w", err)
	}
	return n, err
}
