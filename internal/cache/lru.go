// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package cache

import "sync"

// lruNode is a doubly-linked list node.
type lruNode[K comparable, V any] struct {
	key   K
	value V
	prev  *lruNode[K, V]
	next  *lruNode[K, V]
}

// LRU is a thread-safe bounded map that evicts the least recently used
// entry once capacity is reached. Get, Add and Remove are O(1).
type LRU[K comparable, V any] struct {
	mu sync.Mutex

	capacity int
	items    map[K]*lruNode[K, V]

	// head.next is the most recently used, tail.prev the least.
	head *lruNode[K, V]
	tail *lruNode[K, V]

	hits      int64
	misses    int64
	evictions int64
}

// NewLRU creates an LRU holding at most capacity entries.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		capacity = 1024
	}

	c := &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*lruNode[K, V], capacity),
		head:     &lruNode[K, V]{},
		tail:     &lruNode[K, V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.items[key]; ok {
		c.unlink(node)
		c.pushFront(node)
		c.hits++
		return node.value, true
	}

	c.misses++
	var zero V
	return zero, false
}

// Add inserts or replaces key. It reports whether an entry was evicted.
func (c *LRU[K, V]) Add(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.items[key]; ok {
		node.value = value
		c.unlink(node)
		c.pushFront(node)
		return false
	}

	node := &lruNode[K, V]{key: key, value: value}
	c.pushFront(node)
	c.items[key] = node

	if len(c.items) <= c.capacity {
		return false
	}
	oldest := c.tail.prev
	c.unlink(oldest)
	delete(c.items, oldest.key)
	c.evictions++
	return true
}

// Remove deletes key and reports whether it was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.items[key]
	if !ok {
		return false
	}
	c.unlink(node)
	delete(c.items, key)
	return true
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*lruNode[K, V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Stats returns hit, miss and eviction counters plus the current size.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		TotalKeys: int64(len(c.items)),
	}
}

// pushFront links node right after head. Caller holds c.mu.
func (c *LRU[K, V]) pushFront(node *lruNode[K, V]) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

// unlink detaches node from the list. Caller holds c.mu.
func (c *LRU[K, V]) unlink(node *lruNode[K, V]) {
	node.prev.next = node.next
	node.next.prev = node.prev
}
