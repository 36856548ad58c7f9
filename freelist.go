package slabmap

// freeList is an intrusive singly linked list threaded through the free slots.
//
// Slots are reused in LIFO order: the most recently freed slot is handed out
// first, which keeps the reused region hot in cache.
type freeList struct {
	head Key
	len  int
}

func newFreeList() freeList {
	return freeList{head: noKey}
}

func (fl *freeList) empty() bool {
	return fl.head == noKey
}

// pop unlinks the head of the list. Returns false if there are no free slots.
func pop[V any](fl *freeList, s *slots[V]) (Key, bool) {
	if fl.empty() {
		return noKey, false
	}

	i := fl.head
	e := s.at(i)
	fl.head = e.next
	e.next = noKey
	fl.len--

	return i, true
}

// push makes slot i the new head of the list. The slot must already be free.
func push[V any](fl *freeList, s *slots[V], i Key) {
	s.at(i).next = fl.head
	fl.head = i
	fl.len++
}

// rebuild relinks every free slot in the store, so that the lowest index
// ends up at the head and free slots are handed out in ascending order.
func rebuild[V any](fl *freeList, s *slots[V]) {
	*fl = newFreeList()

	for i := Key(s.len() - 1); i >= 0; i-- {
		if !s.at(i).occupied {
			push(fl, s, i)
		}
	}
}
