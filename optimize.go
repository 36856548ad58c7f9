package slabmap

import "go.uber.org/zap"

// Optimize compacts the free space to speed up iteration.
//
// The occupancy counters are recomputed from the slots, every fully free block
// past the last live value is dropped, and the free list is rebuilt over the
// remaining slots, lowest index first. Live values are never moved, so every
// key stays valid and capacity never grows. Free slots between live values are
// kept; iteration already skips them block by block.
//
// It's O(capacity), so call it after a burst of removals, not on the hot path.
// If nothing was removed since the last call, it returns in O(1).
func (sm *SlabMap[V]) Optimize() {
	if sm.optimized {
		sm.version++
		return
	}

	before := sm.slots.len()
	dropped := sm.optimize()

	sm.logger.Debug("slabmap: optimized",
		zap.Int("capacityBefore", before),
		zap.Int("capacityAfter", sm.slots.len()),
		zap.Int("len", sm.slots.size),
		zap.Int("dropped", dropped),
	)
}

func (sm *SlabMap[V]) optimize() int {
	sm.version++

	// 1. Self-heal the counters.
	recount(&sm.occupancy, &sm.slots)

	// 2. Drop trailing blocks without live values.
	retained := min(sm.slots.len(), (sm.occupancy.lastNonEmpty()+1)*blockSize)
	dropped := sm.slots.truncate(retained)
	sm.occupancy.truncate(retained)

	// 3. Relink what's left.
	rebuild(&sm.free, &sm.slots)
	sm.optimized = true

	return dropped
}
