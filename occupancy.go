package slabmap

import (
	"unsafe"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sys/cpu"
)

// blockSize is the number of slots covered by a single occupancy counter.
// It reuses the byte size of a cache line reported by `golang.org/x/sys` as a
// slot count, which scales the skip granularity with the architecture
// (64 slots on amd64). A block spans many cache lines of slots; the point is
// one counter per block, not one block per line.
const blockSize = int(unsafe.Sizeof(cpu.CacheLinePad{}))

// occupancy caches the number of live slots for every block of blockSize slots.
//
// The nonEmpty bitset mirrors the counters: bit b is set if and only if
// counts[b] > 0. Iteration walks the bitset, so a block with no live slots
// is skipped without looking at any of its slots, and the cost of a full
// traversal is bounded by the number of blocks plus the number of live slots
// in non-empty blocks, no matter how much the map has been churned.
type occupancy struct {
	counts   []uint32
	nonEmpty *bitset.BitSet
}

func newOccupancy() occupancy {
	return occupancy{nonEmpty: bitset.New(0)}
}

func blockOf(i Key) int {
	return int(i) / blockSize
}

// extend makes sure there is a counter for each of the n slots.
func (o *occupancy) extend(n int) {
	for blocks := numBlocks(n); len(o.counts) < blocks; {
		o.counts = append(o.counts, 0)
	}
}

func (o *occupancy) inc(i Key) {
	b := blockOf(i)
	o.counts[b]++
	if o.counts[b] == 1 {
		o.nonEmpty.Set(uint(b))
	}
}

func (o *occupancy) dec(i Key) {
	b := blockOf(i)
	o.counts[b]--
	if o.counts[b] == 0 {
		o.nonEmpty.Clear(uint(b))
	}
}

// next returns the first non-empty block at or after b.
func (o *occupancy) next(b int) (int, bool) {
	nb, ok := o.nonEmpty.NextSet(uint(b))

	return int(nb), ok && int(nb) < len(o.counts)
}

// empty returns the number of blocks without live slots.
func (o *occupancy) empty() int {
	return len(o.counts) - int(o.nonEmpty.Count())
}

// recount rebuilds the counters and the bitset from the slot tags.
func recount[V any](o *occupancy, s *slots[V]) {
	o.counts = make([]uint32, numBlocks(s.len()))
	o.nonEmpty = bitset.New(uint(len(o.counts)))

	for i := range s.entries {
		if s.entries[i].occupied {
			o.counts[i/blockSize]++
		}
	}

	for b, c := range o.counts {
		if c > 0 {
			o.nonEmpty.Set(uint(b))
		}
	}
}

// lastNonEmpty returns the index of the last block holding a live slot, or -1.
func (o *occupancy) lastNonEmpty() int {
	for b := len(o.counts) - 1; b >= 0; b-- {
		if o.counts[b] > 0 {
			return b
		}
	}

	return -1
}

// truncate drops counters for blocks past the first n slots.
func (o *occupancy) truncate(n int) {
	blocks := numBlocks(n)
	if blocks >= len(o.counts) {
		return
	}

	for b := blocks; b < len(o.counts); b++ {
		o.nonEmpty.Clear(uint(b))
	}

	o.counts = o.counts[:blocks:blocks]
}

func (o *occupancy) reset() {
	o.counts = nil
	o.nonEmpty.ClearAll()
}
