package topology

import (
	"container/list"
	"sync"
)

// lruCache is a small bounded cache used by the reference catalog to keep
// recently resolved vertex tables from forcing a full scan of the label
// map. Eviction is least-recently-used. It is safe for concurrent use, since
// the catalog calls it while holding only a shared read lock.
type lruCache struct {
	mu       sync.Mutex
	cache    map[string]*list.Element
	priority *list.List
	maxSize  int
}

type lruEntry struct {
	key   string
	value SchemaTable
}

func newLRUCache(size int) *lruCache {
	return &lruCache{
		maxSize:  size,
		priority: list.New(),
		cache:    make(map[string]*list.Element),
	}
}

func (c *lruCache) Put(key string, value SchemaTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if element, ok := c.cache[key]; ok {
		c.priority.MoveToFront(element)
		return
	}
	if len(c.cache) == c.maxSize {
		c.removeOldest()
	}
	c.priority.PushFront(lruEntry{key: key, value: value})
	c.cache[key] = c.priority.Front()
}

func (c *lruCache) Get(key string) (SchemaTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if element, ok := c.cache[key]; ok {
		c.priority.MoveToFront(element)
		return element.Value.(lruEntry).value, true
	}
	return SchemaTable{}, false
}

func (c *lruCache) removeOldest() {
	last := c.priority.Remove(c.priority.Back())
	delete(c.cache, last.(lruEntry).key)
}
