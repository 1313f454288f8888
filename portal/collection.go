package portal

import (
	"slices"

	"club-portal/storage"
)

// Collection is an ordered entity list mirrored to one storage slot. Every
// mutation swaps in a fresh slice and rewrites the whole slot. Callers
// serialize access; Collection itself is not safe for concurrent use.
type Collection[K comparable, T any] struct {
	slot  string
	store *storage.Store
	key   func(T) K
	items []T
}

// loadCollection reads slot from the store, falling back to seed when the
// slot is absent or unreadable.
func loadCollection[K comparable, T any](store *storage.Store, slot string, key func(T) K, seed []T) *Collection[K, T] {
	items := storage.Load(store, slot, seed)
	if items == nil {
		items = []T{}
	}
	return &Collection[K, T]{slot: slot, store: store, key: key, items: items}
}

func (c *Collection[K, T]) Slot() string { return c.slot }

func (c *Collection[K, T]) Len() int { return len(c.items) }

// Items returns a copy of the collection in insertion order.
func (c *Collection[K, T]) Items() []T { return slices.Clone(c.items) }

func (c *Collection[K, T]) Find(id K) (T, bool) {
	for _, item := range c.items {
		if c.key(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[K, T]) Has(id K) bool {
	_, ok := c.Find(id)
	return ok
}

func (c *Collection[K, T]) append(item T) {
	next := make([]T, 0, len(c.items)+1)
	next = append(next, c.items...)
	c.set(append(next, item))
}

// replace applies fn to the item with the given id. It reports whether the
// item was found; nothing is saved when it was not.
func (c *Collection[K, T]) replace(id K, fn func(T) T) bool {
	idx := slices.IndexFunc(c.items, func(item T) bool { return c.key(item) == id })
	if idx < 0 {
		return false
	}
	next := slices.Clone(c.items)
	next[idx] = fn(next[idx])
	c.set(next)
	return true
}

// removeWhere drops every item matching pred and returns how many went.
func (c *Collection[K, T]) removeWhere(pred func(T) bool) int {
	next := slices.DeleteFunc(slices.Clone(c.items), pred)
	removed := len(c.items) - len(next)
	if removed > 0 {
		c.set(next)
	}
	return removed
}

func (c *Collection[K, T]) set(items []T) {
	if items == nil {
		items = []T{}
	}
	c.items = items
	storage.Save(c.store, c.slot, c.items)
}

// nextID returns one more than the largest id, or 1 for an empty collection.
func nextID[T any](c *Collection[int, T]) int {
	maxID := 0
	for _, item := range c.items {
		maxID = max(maxID, c.key(item))
	}
	return maxID + 1
}
