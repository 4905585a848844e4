package board

// Zobrist keys, generated once from a fixed seed so that hashes are stable
// across runs and usable as persistent cache keys.
var (
	zobristPiece      [12][64]uint64
	zobristEnPassant  [8]uint64
	zobristCastling   [16]uint64
	zobristSideToMove uint64
)

func init() {
	rng := xorshift(0x98F107A2BEEF1234)
	for pc := range zobristPiece {
		for sq := range zobristPiece[pc] {
			zobristPiece[pc][sq] = rng.next()
		}
	}
	for f := range zobristEnPassant {
		zobristEnPassant[f] = rng.next()
	}
	for cr := range zobristCastling {
		zobristCastling[cr] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// xorshift is xorshift64*.
type xorshift uint64

func (x *xorshift) next() uint64 {
	s := uint64(*x)
	s ^= s >> 12
	s ^= s << 25
	s ^= s >> 27
	*x = xorshift(s)
	return s * 0x2545F4914F6CDD1D
}

// epHashed reports whether the en-passant square is part of the key. It is
// only included when a pawn of the side to move could actually capture, so
// that positions differing only in an unusable target repeat.
func (p *Position) epHashed() bool {
	return p.EnPassant != NoSquare &&
		pawnAttacks[p.SideToMove.Other()][p.EnPassant]&p.Pieces[p.SideToMove][Pawn] != 0
}

func (p *Position) computeHash() uint64 {
	var h uint64
	for sq := A1; sq <= H8; sq++ {
		if pc := p.board[sq]; pc != NoPiece {
			h ^= zobristPiece[pc][sq]
		}
	}
	h ^= zobristCastling[p.Castling]
	if p.epHashed() {
		h ^= zobristEnPassant[p.EnPassant.File()]
	}
	if p.SideToMove == Black {
		h ^= zobristSideToMove
	}
	return h
}
