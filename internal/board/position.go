package board

import (
	"fmt"
	"slices"
	"strings"
)

// CastlingRights is the 4-flag castling bitset.
type CastlingRights uint8

const (
	WhiteKingSide CastlingRights = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// castleMask[sq] is ANDed into the rights whenever a move touches sq.
var castleMask [64]CastlingRights

func init() {
	for sq := range castleMask {
		castleMask[sq] = AllCastling
	}
	castleMask[E1] &^= WhiteKingSide | WhiteQueenSide
	castleMask[H1] &^= WhiteKingSide
	castleMask[A1] &^= WhiteQueenSide
	castleMask[E8] &^= BlackKingSide | BlackQueenSide
	castleMask[H8] &^= BlackKingSide
	castleMask[A8] &^= BlackQueenSide
}

// Position is a complete game state. The bitboards and the mailbox are
// kept in sync by put and remove.
type Position struct {
	Pieces   [2][6]Bitboard
	Occupied [2]Bitboard
	All      Bitboard

	SideToMove     Color
	Castling       CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int

	// Hash is the Zobrist key of the current position.
	Hash uint64

	board   [64]Piece
	history []uint64
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// NewEmptyPosition returns a board with no pieces, White to move.
// Use Put to populate it and Rehash once done.
func NewEmptyPosition() *Position {
	p := &Position{EnPassant: NoSquare, FullMoveNumber: 1}
	for sq := range p.board {
		p.board[sq] = NoPiece
	}
	return p
}

// Copy returns a deep copy, history included.
func (p *Position) Copy() *Position {
	cp := *p
	cp.history = slices.Clone(p.history)
	return &cp
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece { return p.board[sq] }

// KingSquare returns c's king square, or NoSquare if c has no king.
func (p *Position) KingSquare(c Color) Square { return p.Pieces[c][King].LSB() }

// Put places pc on an empty square. It does not update Hash.
func (p *Position) Put(pc Piece, sq Square) {
	p.put(pc, sq)
}

// Rehash recomputes Hash from scratch after manual edits.
func (p *Position) Rehash() { p.Hash = p.computeHash() }

func (p *Position) put(pc Piece, sq Square) {
	bb := SquareBB(sq)
	c := pc.Color()
	p.Pieces[c][pc.Type()] |= bb
	p.Occupied[c] |= bb
	p.All |= bb
	p.board[sq] = pc
}

func (p *Position) remove(sq Square) Piece {
	pc := p.board[sq]
	bb := SquareBB(sq)
	c := pc.Color()
	p.Pieces[c][pc.Type()] &^= bb
	p.Occupied[c] &^= bb
	p.All &^= bb
	p.board[sq] = NoPiece
	return pc
}

func (p *Position) move(from, to Square) {
	p.put(p.remove(from), to)
}

// Equal reports whether two positions are identical, including the
// repetition history.
func (p *Position) Equal(o *Position) bool {
	return p.Pieces == o.Pieces &&
		p.Occupied == o.Occupied &&
		p.All == o.All &&
		p.board == o.board &&
		p.SideToMove == o.SideToMove &&
		p.Castling == o.Castling &&
		p.EnPassant == o.EnPassant &&
		p.HalfMoveClock == o.HalfMoveClock &&
		p.FullMoveNumber == o.FullMoveNumber &&
		p.Hash == o.Hash &&
		slices.Equal(p.history, o.history)
}

// Mirror returns the position flipped top to bottom with colors swapped,
// so that an evaluation from the side to move is unchanged. The history is
// not carried over.
func (p *Position) Mirror() *Position {
	m := NewEmptyPosition()
	for sq := A1; sq <= H8; sq++ {
		if pc := p.board[sq]; pc != NoPiece {
			m.put(NewPiece(pc.Type(), pc.Color().Other()), sq.Mirror())
		}
	}
	m.SideToMove = p.SideToMove.Other()
	m.Castling = p.Castling>>2 | p.Castling<<2&AllCastling
	if p.EnPassant != NoSquare {
		m.EnPassant = p.EnPassant.Mirror()
	}
	m.HalfMoveClock = p.HalfMoveClock
	m.FullMoveNumber = p.FullMoveNumber
	m.Rehash()
	return m
}

// Validate checks the structural invariants a legal game can never break.
func (p *Position) Validate() error {
	for _, c := range []Color{White, Black} {
		if n := p.Pieces[c][King].PopCount(); n != 1 {
			return &InvariantViolation{Reason: fmt.Sprintf("%s has %d kings", c, n)}
		}
		if n := p.Occupied[c].PopCount(); n > 16 {
			return &InvariantViolation{Reason: fmt.Sprintf("%s has %d pieces", c, n)}
		}
		if p.Pieces[c][Pawn]&(Rank1|Rank8) != 0 {
			return &InvariantViolation{Reason: fmt.Sprintf("%s pawn on a back rank", c)}
		}
	}
	if p.Occupied[White]&p.Occupied[Black] != 0 {
		return &InvariantViolation{Reason: "square occupied by both colors"}
	}
	var union Bitboard
	for c := range 2 {
		for pt := range 6 {
			bb := p.Pieces[c][pt]
			if union&bb != 0 {
				return &InvariantViolation{Reason: "square holds two pieces"}
			}
			union |= bb
			for b := bb; b != 0; {
				if sq := b.PopLSB(); p.board[sq] != NewPiece(PieceType(pt), Color(c)) {
					return &InvariantViolation{Reason: fmt.Sprintf("mailbox disagrees on %s", sq)}
				}
			}
		}
	}
	if union != p.All {
		return &InvariantViolation{Reason: "occupancy out of sync"}
	}
	them := p.SideToMove.Other()
	if p.IsSquareAttacked(p.KingSquare(them), p.SideToMove) {
		return &InvariantViolation{Reason: fmt.Sprintf("%s to move can capture the king", p.SideToMove)}
	}
	return nil
}

// String draws the board from White's side with the side to move,
// castling rights and en-passant square underneath.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("  +-----------------+\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d | ", rank+1)
		for file := range 8 {
			sb.WriteString(p.board[NewSquare(file, rank)].String())
			sb.WriteByte(' ')
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("  +-----------------+\n")
	sb.WriteString("    a b c d e f g h\n")
	fmt.Fprintf(&sb, "side: %s  castling: %s  ep: %s  hash: %016x\n",
		p.SideToMove, p.Castling, p.EnPassant, p.Hash)
	return sb.String()
}
