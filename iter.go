package slabmap

import "iter"

// All returns an iterator over the key-value pairs in ascending key order.
//
// Every call starts a new traversal. Inserting, removing, optimizing or
// otherwise restructuring the map from the loop body panics with
// ErrConcurrentModification.
func (sm *SlabMap[V]) All() iter.Seq2[Key, V] {
	return func(yield func(Key, V) bool) {
		sm.scan(func(key Key, e *slot[V]) bool {
			return yield(key, e.value)
		})
	}
}

// Refs is like All, but yields pointers to the stored values,
// so they can be updated in place.
func (sm *SlabMap[V]) Refs() iter.Seq2[Key, *V] {
	return func(yield func(Key, *V) bool) {
		sm.scan(func(key Key, e *slot[V]) bool {
			return yield(key, &e.value)
		})
	}
}

// Keys returns an iterator over the keys in ascending order.
func (sm *SlabMap[V]) Keys() iter.Seq[Key] {
	return func(yield func(Key) bool) {
		sm.scan(func(key Key, _ *slot[V]) bool {
			return yield(key)
		})
	}
}

// Values returns an iterator over the values in ascending key order.
func (sm *SlabMap[V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		sm.scan(func(_ Key, e *slot[V]) bool {
			return yield(e.value)
		})
	}
}

// ValuesMut returns an iterator over pointers to the values in ascending key order.
func (sm *SlabMap[V]) ValuesMut() iter.Seq[*V] {
	return func(yield func(*V) bool) {
		sm.scan(func(_ Key, e *slot[V]) bool {
			return yield(&e.value)
		})
	}
}

// Drain returns an iterator which empties the map while yielding its pairs
// in ascending key order. The map is cleared when the loop ends,
// including an early break; the values which weren't yielded are dropped.
func (sm *SlabMap[V]) Drain() iter.Seq2[Key, V] {
	return func(yield func(Key, V) bool) {
		defer sm.Clear()

		sm.scan(func(key Key, e *slot[V]) bool {
			return yield(key, e.value)
		})
	}
}

// scan visits the live slots in ascending order, skipping blocks without
// live slots, and stops early once the live slots of a block are exhausted.
func (sm *SlabMap[V]) scan(visit func(key Key, e *slot[V]) bool) {
	version := sm.version

	for b, ok := sm.occupancy.next(0); ok; b, ok = sm.occupancy.next(b + 1) {
		start, end := blockRange(b, sm.slots.len())
		live := sm.occupancy.counts[b]

		for i := start; i < end && live > 0; i++ {
			e := sm.slots.at(i)
			if !e.occupied {
				continue
			}

			live--
			if !visit(i, e) {
				return
			}

			if sm.version != version {
				panic(concurrentModification(i))
			}
		}
	}
}
