package engine

import (
	"math"
	"math/bits"

	"github.com/hailam/chesscore/internal/board"
)

// Bound says how a stored score relates to the true value of the node.
type Bound uint8

const (
	BoundNone  Bound = iota
	BoundExact       // score is exact
	BoundLower       // search failed high: true value >= score
	BoundUpper       // search failed low: true value <= score
)

// ttEntry is one transposition table slot. The full key is kept so that
// index collisions are detected.
type ttEntry struct {
	key   uint64
	move  board.Move
	score int16
	depth int8
	bound Bound
	age   uint8
}

// TranspositionTable caches search results by Zobrist key. It is owned by
// one Engine and is not safe for concurrent use.
type TranspositionTable struct {
	entries []ttEntry
	mask    uint64
	age     uint8

	probes, hits uint64
}

const ttEntrySize = 24

// NewTranspositionTable sizes the table to the largest power of two number
// of entries that fits in sizeMB megabytes.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	n := uint64(max(sizeMB, 1)) << 20 / ttEntrySize
	n = 1 << (63 - bits.LeadingZeros64(n))
	return &TranspositionTable{entries: make([]ttEntry, n), mask: n - 1}
}

// Probe returns the entry stored for key, if any.
func (tt *TranspositionTable) Probe(key uint64) (ttEntry, bool) {
	tt.probes++
	e := tt.entries[key&tt.mask]
	if e.key != key || e.bound == BoundNone {
		return ttEntry{}, false
	}
	tt.hits++
	return e, true
}

// Store records a result. An entry from the current search is only
// replaced by one searched at least as deep. Depths past the int8 range
// are stored as math.MaxInt8.
func (tt *TranspositionTable) Store(key uint64, depth, score int, bound Bound, move board.Move) {
	depth = min(depth, math.MaxInt8)
	e := &tt.entries[key&tt.mask]
	if e.key == key && e.age == tt.age && int(e.depth) > depth {
		return
	}
	if e.key != key && e.age == tt.age && int(e.depth) > depth+2 {
		return
	}
	*e = ttEntry{key: key, move: move, score: int16(score), depth: int8(depth), bound: bound, age: tt.age}
}

// NewSearch ages existing entries so they lose replacement priority.
func (tt *TranspositionTable) NewSearch() { tt.age++ }

func (tt *TranspositionTable) Clear() {
	clear(tt.entries)
	tt.age, tt.probes, tt.hits = 0, 0, 0
}

// HashFull returns the permille of sampled slots written by this search.
func (tt *TranspositionTable) HashFull() int {
	n := min(len(tt.entries), 1000)
	used := 0
	for i := range n {
		if tt.entries[i].bound != BoundNone && tt.entries[i].age == tt.age {
			used++
		}
	}
	return used * 1000 / n
}

// HitRate is the percentage of probes that found an entry.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// scoreToTT converts a mate score from root-relative to node-relative so
// that it stays correct when probed at another ply.
func scoreToTT(score, ply int) int {
	switch {
	case score > MateScore-MaxPly:
		return score + ply
	case score < -MateScore+MaxPly:
		return score - ply
	}
	return score
}

func scoreFromTT(score, ply int) int {
	switch {
	case score > MateScore-MaxPly:
		return score - ply
	case score < -MateScore+MaxPly:
		return score + ply
	}
	return score
}
