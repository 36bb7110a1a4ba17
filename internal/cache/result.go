package cache

import (
	"container/list"
	"sync"

	"github.com/atharv3903/freightpath/internal/model"
)

// defaultResultCapacity is the default number of planned outputs the cache will hold.
const defaultResultCapacity = 256

type resultEntry struct {
	key string
	val model.Output
}

// ResultCache is a bounded LRU of planned outputs keyed by the digest of
// their input document. Planning is deterministic, so an identical input
// always maps to an identical output.
// It's safe for concurrent use.
type ResultCache struct {
	mu       sync.Mutex
	m        map[string]*list.Element
	ll       *list.List
	capacity int
	// stats
	puts      int
	gets      int
	hits      int
	evictions int
}

type Stats struct {
	Gets      int `json:"gets"`
	Hits      int `json:"hits"`
	Puts      int `json:"puts"`
	Evictions int `json:"evictions"`
	Entries   int `json:"entries"`
}

// NewResultCache returns an LRU result cache with the provided capacity.
// A capacity <= 0 falls back to the default.
func NewResultCache(capacity int) *ResultCache {
	if capacity <= 0 {
		capacity = defaultResultCapacity
	}
	return &ResultCache{
		m:        make(map[string]*list.Element, capacity),
		ll:       list.New(),
		capacity: capacity,
	}
}

// Get returns the output stored for key. It updates LRU position on hit.
func (c *ResultCache) Get(key string) (model.Output, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gets++
	if el, ok := c.m[key]; ok {
		c.hits++
		c.ll.MoveToFront(el)
		return el.Value.(resultEntry).val, true
	}
	return model.Output{}, false
}

// Put inserts the output. If insertion causes the cache to exceed capacity,
// the least-recently-used entry is evicted.
func (c *ResultCache) Put(key string, v model.Output) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.puts++
	if el, ok := c.m[key]; ok {
		el.Value = resultEntry{key: key, val: v}
		c.ll.MoveToFront(el)
		return
	}

	c.m[key] = c.ll.PushFront(resultEntry{key: key, val: v})

	if c.ll.Len() > c.capacity {
		if tail := c.ll.Back(); tail != nil {
			delete(c.m, tail.Value.(resultEntry).key)
			c.ll.Remove(tail)
			c.evictions++
		}
	}
}

// Clear fully resets the cache and stats.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]*list.Element, c.capacity)
	c.ll.Init()
	c.puts, c.gets, c.hits, c.evictions = 0, 0, 0, 0
}

// Stats returns a snapshot taken under lock.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Gets:      c.gets,
		Hits:      c.hits,
		Puts:      c.puts,
		Evictions: c.evictions,
		Entries:   c.ll.Len(),
	}
}
