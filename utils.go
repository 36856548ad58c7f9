package slabmap

import "unsafe"

// Returns the number of occupancy blocks needed to cover n slots.
func numBlocks(n int) int {
	return (n + blockSize - 1) / blockSize
}

// Estimates capacity (number of slots) from the given memory size in bytes.
// The result is rounded down to whole occupancy blocks, counters included.
func CapacityFromSize[V any](size uintptr) int {
	sizeOfBlock := unsafe.Sizeof(slot[V]{})*uintptr(blockSize) + unsafe.Sizeof(uint32(0))
	blocks := size / sizeOfBlock

	return int(blocks) * blockSize
}

// Returns the slot range [start, end) covered by block b, clamped to n slots.
func blockRange(b, n int) (Key, Key) {
	start := b * blockSize

	return Key(start), Key(min(start+blockSize, n))
}
