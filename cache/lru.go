// Package cache implements ridgedb's bounded page cache: a fixed-capacity
// LRU keyed by page id, built from a hash map plus a doubly linked list
// ordered by recency (head = least recently used, tail = most recently
// used), exactly the structure spec.md §4.E names.
//
// Grounded on original_source/LRUCache.rs's node/list-head/list-tail
// fields, rendered as an idiomatic Go generic container in the style of
// _examples/ajg7-GengarDB/pkg/cache (hash map + container/list) rather
// than a hand-rolled pointer list, since container/list is the standard
// library's own doubly linked list and the teacher repo carries no
// competing third-party cache dependency.
package cache

import (
	"container/list"
	"sync"

	"ridgedb/metrics"
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a fixed-capacity, thread-safe least-recently-used cache.
type LRU[K comparable, V any] struct {
	capacity int
	name     string

	mu    sync.Mutex
	ll    *list.List
	index map[K]*list.Element
}

// New returns an LRU cache holding at most capacity entries. name labels
// the cache's Prometheus counters (e.g. a table name), so multiple caches
// in the same process report distinguishable metrics.
func New[K comparable, V any](capacity int, name string) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[K, V]{
		capacity: capacity,
		name:     name,
		ll:       list.New(),
		index:    make(map[K]*list.Element, capacity),
	}
}

// Put inserts or overwrites key's value, moving it to the most-recently-
// used end. If the cache is at capacity and key is new, the least
// recently used entry is evicted first.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		el.Value.(*entry[K, V]).value = value
		c.ll.MoveToBack(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	el := c.ll.PushBack(&entry[K, V]{key: key, value: value})
	c.index[key] = el
	metrics.PagesCached.WithLabelValues(c.name).Set(float64(c.ll.Len()))
}

// cloneable is implemented by values that carry their own mutable backing
// storage (*page.Page's Data slice) and so must be copied before leaving
// the cache under Get's lock. Values that don't implement it (plain scalars,
// immutable structs) are returned as stored.
type cloneable[V any] interface {
	Clone() V
}

// Get returns a copy of the value stored for key, moving it to the
// most-recently-used end on a hit. Returning a copy rather than the stored
// value itself is what lets a caller mutate its result, or a concurrent Put
// overwrite the cached entry, without either side observing the other's
// writes.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		var zero V
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return zero, false
	}
	c.ll.MoveToBack(el)
	metrics.CacheHits.WithLabelValues(c.name).Inc()

	value := el.Value.(*entry[K, V]).value
	if cl, ok := any(value).(cloneable[V]); ok {
		value = cl.Clone()
	}
	return value, true
}

func (c *LRU[K, V]) evictLocked() {
	front := c.ll.Front()
	if front == nil {
		return
	}
	c.ll.Remove(front)
	delete(c.index, front.Value.(*entry[K, V]).key)
	metrics.CacheEvictions.WithLabelValues(c.name).Inc()
}

// Len reports the number of entries currently cached.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
