package cache

import (
	"sync"

	"github.com/atharv3903/freightpath/internal/model"
)

type RouteKey struct {
	Origin      model.NodeID
	Destination model.NodeID
	Key         model.WeightKey
}

// RouteCache memoizes solver results for the lifetime of one invocation.
// Entries are shared between shipments with the same key and must not be
// mutated by callers.
type RouteCache struct {
	mu sync.RWMutex
	m  map[RouteKey]model.PathResult
}

func NewRouteCache() *RouteCache {
	return &RouteCache{m: make(map[RouteKey]model.PathResult)}
}

func (c *RouteCache) Get(k RouteKey) (model.PathResult, bool) {
	c.mu.RLock()
	v, ok := c.m[k]
	c.mu.RUnlock()
	return v, ok
}

func (c *RouteCache) Put(k RouteKey, r model.PathResult) {
	c.mu.Lock()
	c.m[k] = r
	c.mu.Unlock()
}

func (c *RouteCache) Len() int {
	c.mu.RLock()
	n := len(c.m)
	c.mu.RUnlock()
	return n
}
