package slabmap

type Stats struct {
	Size              int
	Capacity          int
	Free              int
	Blocks            int
	EmptyBlocks       int
	FreeCapacityRatio float32
}

// Returns the fragmentation statistics of the map.
// A high FreeCapacityRatio with many EmptyBlocks at the tail is what Optimize reclaims.
func (sm *SlabMap[V]) Stats() Stats {
	stats := Stats{
		Size:        sm.slots.size,
		Capacity:    sm.slots.len(),
		Free:        sm.slots.len() - sm.slots.size,
		Blocks:      len(sm.occupancy.counts),
		EmptyBlocks: sm.occupancy.empty(),
	}

	if stats.Capacity > 0 {
		stats.FreeCapacityRatio = float32(stats.Free) / float32(stats.Capacity)
	}

	return stats
}
