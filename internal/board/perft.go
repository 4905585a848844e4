package board

// Perft counts the leaf nodes of the legal move tree to the given depth.
func (p *Position) Perft(depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var ml MoveList
	p.GenerateLegal(&ml)
	if depth == 1 {
		return uint64(ml.Len())
	}
	var nodes uint64
	for i := range ml.Len() {
		undo := p.MakeMove(ml.Get(i))
		nodes += p.Perft(depth - 1)
		p.UnmakeMove(undo)
	}
	return nodes
}

// PerftEntry is one root move of a Divide breakdown.
type PerftEntry struct {
	Move  Move
	Nodes uint64
}

// Divide runs Perft below each root move, in generation order.
func (p *Position) Divide(depth int) []PerftEntry {
	var ml MoveList
	p.GenerateLegal(&ml)
	out := make([]PerftEntry, 0, ml.Len())
	for i := range ml.Len() {
		m := ml.Get(i)
		undo := p.MakeMove(m)
		var n uint64 = 1
		if depth > 1 {
			n = p.Perft(depth - 1)
		}
		p.UnmakeMove(undo)
		out = append(out, PerftEntry{Move: m, Nodes: n})
	}
	return out
}
