package engine

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// evalEntry caches one static evaluation.
type evalEntry struct {
	key   uint64
	score int32
	used  bool
}

// evalCache is a direct-mapped table of static evaluations keyed by
// Zobrist key. The evaluator is a pure function of the position, so an
// entry stays valid until the evaluator changes.
type evalCache struct {
	entries []evalEntry
	mask    uint64
}

const evalEntrySize = 16

func newEvalCache(sizeMB int) *evalCache {
	n := uint64(max(sizeMB, 1)) << 20 / evalEntrySize
	n = 1 << (63 - bits.LeadingZeros64(n))
	return &evalCache{entries: make([]evalEntry, n), mask: n - 1}
}

func (c *evalCache) probe(key uint64) (int, bool) {
	e := &c.entries[key&c.mask]
	if e.used && e.key == key {
		return int(e.score), true
	}
	return 0, false
}

func (c *evalCache) store(key uint64, score int) {
	c.entries[key&c.mask] = evalEntry{key: key, score: int32(score), used: true}
}

func (c *evalCache) clear() { clear(c.entries) }

func clamp[T constraints.Integer](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

func abs[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
