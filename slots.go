package slabmap

// Key identifies a value stored in the SlabMap. It's the index of the slot
// holding the value, so it's only meaningful to the map that issued it and
// only while the value hasn't been removed.
type Key int

// noKey terminates the free list.
const noKey Key = -1

// slot is either a live value or a link in the free list.
type slot[V any] struct {
	value V

	// Next free slot. Only meaningful when the slot is not occupied.
	next Key

	occupied bool
}

// slots is the backing store of the map. The capacity of the map is the
// length of the slice, the slice capacity is just a preallocation.
type slots[V any] struct {
	entries []slot[V]
	size    int

	emptyV V
}

func (s *slots[V]) len() int {
	return len(s.entries)
}

func (s *slots[V]) valid(i Key) bool {
	return i >= 0 && int(i) < len(s.entries)
}

// allocate appends a free slot and returns its index.
func (s *slots[V]) allocate() Key {
	s.entries = append(s.entries, slot[V]{next: noKey})

	return Key(len(s.entries) - 1)
}

func (s *slots[V]) setOccupied(i Key, value V) {
	e := &s.entries[i]
	e.value = value
	e.next = noKey
	e.occupied = true
	s.size++
}

// take marks the slot as free and returns the value it held.
// The stored value is zeroed, so it can be garbage collected.
func (s *slots[V]) take(i Key) V {
	e := &s.entries[i]
	value := e.value
	e.value = s.emptyV
	e.occupied = false
	s.size--

	return value
}

func (s *slots[V]) at(i Key) *slot[V] {
	return &s.entries[i]
}

// lookup returns the slot if the key points to a live value.
func (s *slots[V]) lookup(i Key) (*slot[V], bool) {
	if !s.valid(i) {
		return nil, false
	}

	e := &s.entries[i]
	if !e.occupied {
		return nil, false
	}

	return e, true
}

// truncate drops every slot at and after n. Callers guarantee these slots are free.
// The backing array is released if it's more than twice as large as needed.
func (s *slots[V]) truncate(n int) int {
	if n >= len(s.entries) {
		return 0
	}

	dropped := len(s.entries) - n
	clear(s.entries[n:])
	s.entries = s.entries[:n]

	if cap(s.entries) > 2*n {
		entries := make([]slot[V], n)
		copy(entries, s.entries)
		s.entries = entries
	}

	return dropped
}

// grow makes room for at least `additional` more slots without reallocation.
func (s *slots[V]) grow(additional int) {
	if additional <= 0 {
		return
	}

	if cap(s.entries)-len(s.entries) < additional {
		entries := make([]slot[V], len(s.entries), len(s.entries)+additional)
		copy(entries, s.entries)
		s.entries = entries
	}
}

func (s *slots[V]) reset() {
	s.entries = nil
	s.size = 0
}
