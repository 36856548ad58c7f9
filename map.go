// Package slabmap provides a slab allocator keyed by automatically assigned integers,
// with free space tracking that keeps iteration fast after heavy churn.
package slabmap

import (
	"fmt"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"go.uber.org/zap"
)

// SlabMap is a map-like collection, which picks the key for every inserted value.
// Keys are small integers indexing a slab of slots, so insert, remove and lookup
// are O(1), and a removed key is handed out again by the next insert.
//
// Free slots are tracked per block of slots, so iteration skips fully free blocks
// without touching them. After heavy churn, Optimize drops the free capacity past
// the last live value. Live values are never moved, so keys stay valid.
//
// SlabMap is not safe for concurrent use. Reads (Get, Lookup, iteration) may run
// concurrently with each other, but never with a mutation.
type SlabMap[V any] struct {
	slots     slots[V]
	free      freeList
	occupancy occupancy

	// Bumped on every structural change, iterators check it.
	version uint64

	// No removal since the last optimize, so optimizing again is a no-op.
	optimized bool

	logger *zap.Logger
}

// Returns a new instance of the slab map.
func New[V any](opts ...Option) *SlabMap[V] {
	var c config
	for _, opt := range opts {
		opt(&c)
	}

	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	sm := &SlabMap[V]{
		free:      newFreeList(),
		occupancy: newOccupancy(),
		optimized: true,
		logger:    c.logger,
	}

	if c.capacity > 0 {
		sm.reserve(c.capacity)
	}

	return sm
}

// Returns the number of values in the map.
func (sm *SlabMap[V]) Len() int {
	return sm.slots.size
}

// Returns the number of slots, live and free.
func (sm *SlabMap[V]) Capacity() int {
	return sm.slots.len()
}

func (sm *SlabMap[V]) IsEmpty() bool {
	return sm.slots.size == 0
}

// Inserts a value and returns the key associated with it.
func (sm *SlabMap[V]) Insert(value V) Key {
	key := sm.acquire()
	sm.slots.setOccupied(key, value)
	sm.occupancy.inc(key)

	return key
}

// Inserts a value built by f. The key the value will be stored at is passed to f.
//
// f must not restructure the map (insert, remove, optimize, clear, retain),
// doing so panics with ErrConcurrentModification. If f panics, nothing is inserted.
func (sm *SlabMap[V]) InsertWithKey(f func(key Key) V) Key {
	key := sm.acquire()
	version := sm.version

	inserted := false
	defer func() {
		if inserted {
			return
		}

		if sm.version == version {
			// The slot is still free and was the head, so the list is restored as it was.
			push(&sm.free, &sm.slots, key)
			// It may have been appended at the tail.
			sm.optimized = false
		} else {
			sm.relink()
		}
	}()

	value := f(key)
	if sm.version != version {
		panic(concurrentModification(key))
	}

	sm.slots.setOccupied(key, value)
	sm.occupancy.inc(key)
	inserted = true

	return key
}

func (sm *SlabMap[V]) acquire() Key {
	sm.version++

	if key, ok := pop(&sm.free, &sm.slots); ok {
		return key
	}

	key := sm.slots.allocate()
	sm.occupancy.extend(sm.slots.len())

	return key
}

// Removes a key from the map, returning the value at the key.
// Returns false if the key is unknown or has already been removed.
func (sm *SlabMap[V]) Remove(key Key) (V, bool) {
	if _, ok := sm.slots.lookup(key); !ok {
		return sm.slots.emptyV, false
	}

	sm.version++
	sm.optimized = false

	value := sm.slots.take(key)
	push(&sm.free, &sm.slots, key)
	sm.occupancy.dec(key)

	return value, true
}

// Returns the value for the key.
// Panics with ErrInvalidKey if the key doesn't point to a live value.
func (sm *SlabMap[V]) Get(key Key) V {
	return sm.mustLookup(key).value
}

// Returns a pointer to the value for the key, the value can be updated in place.
// The pointer is valid until the next structural change of the map.
// Panics with ErrInvalidKey if the key doesn't point to a live value.
func (sm *SlabMap[V]) Ref(key Key) *V {
	return &sm.mustLookup(key).value
}

// Replaces the value for the key.
// Panics with ErrInvalidKey if the key doesn't point to a live value.
func (sm *SlabMap[V]) Set(key Key, value V) {
	sm.mustLookup(key).value = value
}

// Returns the value for the key and whether the key points to a live value.
func (sm *SlabMap[V]) Lookup(key Key) (V, bool) {
	e, ok := sm.slots.lookup(key)
	if !ok {
		return sm.slots.emptyV, false
	}

	return e.value, true
}

// Checks whether a key points to a live value.
func (sm *SlabMap[V]) Contains(key Key) bool {
	_, ok := sm.slots.lookup(key)

	return ok
}

func (sm *SlabMap[V]) mustLookup(key Key) *slot[V] {
	e, ok := sm.slots.lookup(key)
	if !ok {
		panic(invalidKey(key, sm.slots.len()))
	}

	return e
}

// Reserves room for at least `additional` more values.
// The new slots are free and handed out in ascending order.
func (sm *SlabMap[V]) Reserve(additional int) {
	sm.version++

	if added := sm.reserve(additional); added > 0 {
		sm.logger.Debug("slabmap: reserved slots",
			zap.Int("added", added),
			zap.Int("capacity", sm.slots.len()),
		)
	}
}

func (sm *SlabMap[V]) reserve(additional int) int {
	need := additional - sm.free.len
	if need <= 0 {
		return 0
	}

	// Optimize would drop the new slots again.
	sm.optimized = false

	sm.slots.grow(need)

	first := sm.slots.len()
	for range need {
		sm.slots.allocate()
	}
	sm.occupancy.extend(sm.slots.len())

	for i := Key(sm.slots.len() - 1); i >= Key(first); i-- {
		push(&sm.free, &sm.slots, i)
	}

	return need
}

// Removes every value and releases all slots.
func (sm *SlabMap[V]) Clear() {
	sm.version++

	capacity := sm.slots.len()

	sm.slots.reset()
	sm.free = newFreeList()
	sm.occupancy.reset()
	sm.optimized = true

	sm.logger.Debug("slabmap: cleared", zap.Int("released", capacity))
}

// Keeps only the values for which f returns true, then optimizes the free space.
// f may update the value in place through the pointer, but restructuring
// the map from f panics with ErrConcurrentModification.
func (sm *SlabMap[V]) Retain(f func(key Key, value *V) bool) {
	version := sm.version
	sm.optimized = false

	// Free slots are relinked by optimize, even if f panics.
	defer sm.optimize()

	for b, ok := sm.occupancy.next(0); ok; b, ok = sm.occupancy.next(b + 1) {
		start, end := blockRange(b, sm.slots.len())

		for i := start; i < end; i++ {
			e := sm.slots.at(i)
			if !e.occupied {
				continue
			}

			keep := f(i, &e.value)
			if sm.version != version {
				panic(concurrentModification(i))
			}

			if !keep {
				sm.slots.take(i)
				sm.occupancy.dec(i)
			}
		}
	}
}

// Returns a copy of the map. Values are copied as they are, so pointers
// inside them are shared. Keys of the copy match the keys of the original.
func (sm *SlabMap[V]) Clone() *SlabMap[V] {
	return &SlabMap[V]{
		slots: slots[V]{
			entries: slices.Clone(sm.slots.entries),
			size:    sm.slots.size,
		},
		free: sm.free,
		occupancy: occupancy{
			counts:   slices.Clone(sm.occupancy.counts),
			nonEmpty: sm.occupancy.nonEmpty.Clone(),
		},
		optimized: sm.optimized,
		logger:    sm.logger,
	}
}

// relink rebuilds the counters and the free list from the slot tags.
func (sm *SlabMap[V]) relink() {
	recount(&sm.occupancy, &sm.slots)
	rebuild(&sm.free, &sm.slots)
	sm.optimized = false
}

// Returns a snapshot of the live keys as a roaring bitmap.
// The bitmap holds 32-bit values, keys from 1<<32 upwards don't fit and are truncated.
func (sm *SlabMap[V]) KeySet() *roaring.Bitmap {
	bm := roaring.New()
	for key := range sm.Keys() {
		bm.AddInt(int(key))
	}

	return bm
}

func (sm *SlabMap[V]) String() string {
	var sb strings.Builder

	sb.WriteByte('{')
	for key, value := range sm.All() {
		if sb.Len() > 1 {
			sb.WriteString(", ")
		}

		fmt.Fprintf(&sb, "%d: %v", key, value)
	}
	sb.WriteByte('}')

	return sb.String()
}
