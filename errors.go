package slabmap

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidKey is the panic cause when a key that doesn't point to a live
	// value is used with Get, Ref or Set. Use Lookup or Remove when the key may be stale.
	ErrInvalidKey = errors.New("slabmap: invalid key")

	// ErrConcurrentModification is the panic cause when the map is structurally
	// modified while it's being iterated.
	ErrConcurrentModification = errors.New("slabmap: map modified during iteration")
)

func invalidKey(key Key, capacity int) error {
	return errors.Wrapf(ErrInvalidKey, "key %d, capacity %d", key, capacity)
}

func concurrentModification(key Key) error {
	return errors.Wrapf(ErrConcurrentModification, "after key %d", key)
}
