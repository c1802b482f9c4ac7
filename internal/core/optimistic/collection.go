package optimistic

import "slices"

// Collection is an ordered sequence of items keyed by a caller-supplied
// identifier. It is not safe for concurrent use; Controller guards it.
type Collection[K comparable, T any] struct {
	id    func(T) K
	items []T
	index map[K]int
}

// NewCollection creates a collection over a copy of items.
func NewCollection[K comparable, T any](id func(T) K, items []T) *Collection[K, T] {
	c := &Collection[K, T]{id: id}
	c.Reset(items)
	return c
}

// Reset replaces the contents with a copy of items. When two items share a
// key the later one replaces the earlier one in place.
func (c *Collection[K, T]) Reset(items []T) {
	c.items = make([]T, 0, len(items))
	c.index = make(map[K]int, len(items))
	for _, item := range items {
		key := c.id(item)
		if i, ok := c.index[key]; ok {
			c.items[i] = item
			continue
		}
		c.index[key] = len(c.items)
		c.items = append(c.items, item)
	}
}

// Len returns the number of items.
func (c *Collection[K, T]) Len() int {
	return len(c.items)
}

// Items returns a copy of the items in order.
func (c *Collection[K, T]) Items() []T {
	return slices.Clone(c.items)
}

// Keys returns the item keys in order.
func (c *Collection[K, T]) Keys() []K {
	keys := make([]K, len(c.items))
	for i, item := range c.items {
		keys[i] = c.id(item)
	}
	return keys
}

// Get returns the item with the given key.
func (c *Collection[K, T]) Get(key K) (T, bool) {
	i, ok := c.index[key]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// Has reports whether key is present.
func (c *Collection[K, T]) Has(key K) bool {
	_, ok := c.index[key]
	return ok
}

// Update calls fn with a pointer to the item stored under key. It returns
// false when the key is absent.
func (c *Collection[K, T]) Update(key K, fn func(*T)) bool {
	i, ok := c.index[key]
	if !ok {
		return false
	}
	fn(&c.items[i])
	return true
}

// Upsert replaces the item with the same key or appends it.
func (c *Collection[K, T]) Upsert(item T) {
	key := c.id(item)
	if i, ok := c.index[key]; ok {
		c.items[i] = item
		return
	}
	c.index[key] = len(c.items)
	c.items = append(c.items, item)
}

// Remove deletes the item stored under key and returns it with the position
// it occupied.
func (c *Collection[K, T]) Remove(key K) (T, int, bool) {
	i, ok := c.index[key]
	if !ok {
		var zero T
		return zero, -1, false
	}
	item := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	c.reindex()
	return item, i, true
}

// Insert places item at position at, clamped to the collection bounds. An
// existing item with the same key is replaced in place instead.
func (c *Collection[K, T]) Insert(at int, item T) {
	key := c.id(item)
	if i, ok := c.index[key]; ok {
		c.items[i] = item
		return
	}
	at = max(0, min(at, len(c.items)))
	c.items = slices.Insert(c.items, at, item)
	c.reindex()
}

func (c *Collection[K, T]) reindex() {
	clear(c.index)
	for i, item := range c.items {
		c.index[c.id(item)] = i
	}
}
