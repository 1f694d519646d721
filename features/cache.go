package features

import (
	"container/list"
	"sync"

	"golang.org/x/sync/singleflight"
)

type lruEntry[V any] struct {
	key   string
	value V
}

// lruCache is a fixed-capacity LRU map. Concurrent misses on the same key
// share one call of the loader.
type lruCache[V any] struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List
	capacity int

	flight singleflight.Group
}

func newLRUCache[V any](capacity int) *lruCache[V] {
	if capacity < 1 {
		capacity = 1
	}
	return &lruCache[V]{
		items:    make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
	}
}

func (c *lruCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*lruEntry[V]).value, true
	}
	var zero V
	return zero, false
}

func (c *lruCache[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*lruEntry[V]).value = value
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry[V]).key)
		}
	}
	c.items[key] = c.order.PushFront(&lruEntry[V]{key: key, value: value})
}

func (c *lruCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Load returns the cached value for key, or runs load once and caches its
// result. hit reports whether load was skipped for this caller, which
// includes callers that joined another caller's in-flight load.
func (c *lruCache[V]) Load(key string, load func() V) (value V, hit bool) {
	if v, ok := c.Get(key); ok {
		return v, true
	}

	type loaded struct {
		value V
		hit   bool
	}
	leader := false
	res, _, _ := c.flight.Do(key, func() (any, error) {
		leader = true
		if v, ok := c.Get(key); ok {
			return loaded{value: v, hit: true}, nil
		}
		v := load()
		c.Add(key, v)
		return loaded{value: v}, nil
	})
	l := res.(loaded)
	return l.value, l.hit || !leader
}
