package board

// MoveKind tags moves whose execution differs from a plain from/to move.
type MoveKind uint8

const (
	Normal MoveKind = iota
	DoublePawnPush
	EnPassant
	CastleKing
	CastleQueen
)

func (k MoveKind) String() string {
	switch k {
	case Normal:
		return "normal"
	case DoublePawnPush:
		return "double-push"
	case EnPassant:
		return "en-passant"
	case CastleKing:
		return "castle-king"
	case CastleQueen:
		return "castle-queen"
	}
	return "unknown"
}

// Move is an immutable packed move:
//
//	bits 0-5   from square
//	bits 6-11  to square
//	bits 12-14 promotion kind (0 when the move is not a promotion)
//	bits 15-17 move kind
//
// Castling is encoded as the king's two-square move.
type Move uint32

// NoMove is the zero move, used where no move exists.
const NoMove Move = 0

// NewMove builds a non-promoting move of the given kind.
func NewMove(from, to Square, kind MoveKind) Move {
	return Move(from) | Move(to)<<6 | Move(kind)<<15
}

// NewPromotion builds a pawn move to the last rank promoting to promo.
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move(from) | Move(to)<<6 | Move(promo)<<12
}

func (m Move) From() Square   { return Square(m & 0x3F) }
func (m Move) To() Square     { return Square(m >> 6 & 0x3F) }
func (m Move) Kind() MoveKind { return MoveKind(m >> 15 & 0x7) }

// Promotion returns the promotion kind, or NoPieceType.
func (m Move) Promotion() PieceType {
	if pt := PieceType(m >> 12 & 0x7); pt != Pawn {
		return pt
	}
	return NoPieceType
}

func (m Move) IsPromotion() bool { return m>>12&0x7 != 0 }

func (m Move) IsCastle() bool {
	k := m.Kind()
	return k == CastleKing || k == CastleQueen
}

// IsCapture reports whether m removes an enemy piece in pos.
func (m Move) IsCapture(pos *Position) bool {
	return m.Kind() == EnPassant || pos.board[m.To()] != NoPiece
}

// String renders coordinate notation: "e2e4", "e7e8q", "0000" for NoMove.
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// MoveList is a fixed-capacity move buffer that avoids allocation in the
// search and perft hot paths.
type MoveList struct {
	moves [256]Move
	count int
}

func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

func (ml *MoveList) Len() int          { return ml.count }
func (ml *MoveList) Get(i int) Move    { return ml.moves[i] }
func (ml *MoveList) Set(i int, m Move) { ml.moves[i] = m }
func (ml *MoveList) Clear()            { ml.count = 0 }

func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

func (ml *MoveList) Contains(m Move) bool {
	for i := range ml.count {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice copies the moves into a new slice.
func (ml *MoveList) Slice() []Move {
	out := make([]Move, ml.count)
	copy(out, ml.moves[:ml.count])
	return out
}

// UndoRecord holds what MakeMove destroys. It is only valid for the
// UnmakeMove call that pairs with it.
type UndoRecord struct {
	Move          Move
	Captured      Piece
	Castling      CastlingRights
	EnPassant     Square
	HalfMoveClock int
	Hash          uint64
}
