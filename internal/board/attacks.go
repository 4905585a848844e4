package board

// Ray directions. The first four walk toward higher square indices.
const (
	dirNorth = iota
	dirNorthEast
	dirEast
	dirNorthWest
	dirSouth
	dirSouthWest
	dirWest
	dirSouthEast
)

var rayDelta = [8][2]int{
	dirNorth:     {0, 1},
	dirNorthEast: {1, 1},
	dirEast:      {1, 0},
	dirNorthWest: {-1, 1},
	dirSouth:     {0, -1},
	dirSouthWest: {-1, -1},
	dirWest:      {-1, 0},
	dirSouthEast: {1, -1},
}

var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard
	rays          [8][64]Bitboard
	betweenBB     [64][64]Bitboard
)

func init() {
	for sq := A1; sq <= H8; sq++ {
		f, r := sq.File(), sq.Rank()
		for _, d := range [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}} {
			if onBoard(f+d[0], r+d[1]) {
				knightAttacks[sq] |= SquareBB(NewSquare(f+d[0], r+d[1]))
			}
		}

		bb := SquareBB(sq)
		kingAttacks[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()
		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()

		for dir, d := range rayDelta {
			for ff, rr := f+d[0], r+d[1]; onBoard(ff, rr); ff, rr = ff+d[0], rr+d[1] {
				rays[dir][sq] |= SquareBB(NewSquare(ff, rr))
			}
		}
	}

	for from := A1; from <= H8; from++ {
		for dir := range rayDelta {
			ray := rays[dir][from]
			for walk := ray; walk != 0; {
				to := walk.PopLSB()
				betweenBB[from][to] = ray &^ rays[dir][to] &^ SquareBB(to)
			}
		}
	}
}

func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

// slide returns the squares reached along one ray from sq, up to and
// including the first occupied square.
func slide(dir int, sq Square, occupied Bitboard) Bitboard {
	ray := rays[dir][sq]
	blockers := ray & occupied
	if blockers == 0 {
		return ray
	}
	var first Square
	if dir < dirSouth {
		first = blockers.LSB()
	} else {
		first = blockers.MSB()
	}
	return ray &^ rays[dir][first]
}

// BishopAttacks walks the four diagonals from sq, stopping at blockers.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return slide(dirNorthEast, sq, occupied) | slide(dirNorthWest, sq, occupied) |
		slide(dirSouthEast, sq, occupied) | slide(dirSouthWest, sq, occupied)
}

// RookAttacks walks the rank and file through sq, stopping at blockers.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return slide(dirNorth, sq, occupied) | slide(dirSouth, sq, occupied) |
		slide(dirEast, sq, occupied) | slide(dirWest, sq, occupied)
}

func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// Between returns the squares strictly between a and b when they share a
// rank, file or diagonal, and the empty set otherwise.
func Between(a, b Square) Bitboard { return betweenBB[a][b] }

// AttacksFrom returns the squares attacked by the piece standing on sq.
func (p *Position) AttacksFrom(sq Square, occupied Bitboard) Bitboard {
	piece := p.board[sq]
	switch piece.Type() {
	case Pawn:
		return pawnAttacks[piece.Color()][sq]
	case Knight:
		return knightAttacks[sq]
	case Bishop:
		return BishopAttacks(sq, occupied)
	case Rook:
		return RookAttacks(sq, occupied)
	case Queen:
		return QueenAttacks(sq, occupied)
	case King:
		return kingAttacks[sq]
	}
	return 0
}

// AttackersByColor returns c's pieces attacking sq given the occupancy.
func (p *Position) AttackersByColor(sq Square, c Color, occupied Bitboard) Bitboard {
	pc := &p.Pieces[c]
	return pawnAttacks[c.Other()][sq]&pc[Pawn] |
		knightAttacks[sq]&pc[Knight] |
		kingAttacks[sq]&pc[King] |
		BishopAttacks(sq, occupied)&(pc[Bishop]|pc[Queen]) |
		RookAttacks(sq, occupied)&(pc[Rook]|pc[Queen])
}

// IsSquareAttacked reports whether any piece of color by attacks sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	return p.AttackersByColor(sq, by, p.All) != 0
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.IsSquareAttacked(p.KingSquare(p.SideToMove), p.SideToMove.Other())
}

// Checkers returns the enemy pieces giving check to the side to move.
func (p *Position) Checkers() Bitboard {
	us := p.SideToMove
	return p.AttackersByColor(p.KingSquare(us), us.Other(), p.All)
}
