package util

import (
	"container/list"
	"sync"
)

type (
	// LRUCache retains up to maxSize constructed values keyed by string,
	// evicting the least recently used entry on overflow
	LRUCache[T any] struct {
		entries map[string]*list.Element
		order   *list.List
		maxSize int
		mu      sync.RWMutex
	}

	// Constructor produces the value for a cache miss
	Constructor[T any] func() (T, error)

	lruEntry[T any] struct {
		key   string
		value T
	}
)

// NewLRUCache creates a cache bounded to maxSize entries
func NewLRUCache[T any](maxSize int) *LRUCache[T] {
	return &LRUCache[T]{
		entries: map[string]*list.Element{},
		order:   list.New(),
		maxSize: maxSize,
	}
}

// Get returns the cached value for key, invoking create on a miss. A
// failed create leaves the cache untouched
func (c *LRUCache[T]) Get(key string, create Constructor[T]) (T, error) {
	if value, ok := c.lookup(key); ok {
		return value, nil
	}

	value, err := create()
	if err != nil {
		var zero T
		return zero, err
	}
	return c.insert(key, value), nil
}

func (c *LRUCache[T]) lookup(key string) (T, bool) {
	c.mu.RLock()
	elem, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}

	c.mu.Lock()
	c.order.MoveToFront(elem)
	c.mu.Unlock()
	return elem.Value.(*lruEntry[T]).value, true
}

// insert stores value under key. When a concurrent Get has already filled
// the slot, the first value wins and this one is discarded
func (c *LRUCache[T]) insert(key string, value T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*lruEntry[T]).value
	}

	elem := c.order.PushFront(&lruEntry[T]{key: key, value: value})
	c.entries[key] = elem
	if c.order.Len() > c.maxSize {
		c.evict()
	}
	return value
}

// evict drops the least recently used entry. Callers hold the write lock
func (c *LRUCache[T]) evict() {
	back := c.order.Back()
	if back == nil {
		return
	}
	c.order.Remove(back)
	delete(c.entries, back.Value.(*lruEntry[T]).key)
}
