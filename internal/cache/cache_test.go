package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharv3903/freightpath/internal/model"
)

func output(id string) model.Output {
	return model.Output{Shipments: []model.RouteRecord{{ShipmentID: id}}}
}

func TestResultCache_GetPut(t *testing.T) {
	c := NewResultCache(2)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Put("a", output("1"))
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v.Shipments[0].ShipmentID)

	c.Put("a", output("2"))
	v, _ = c.Get("a")
	assert.Equal(t, "2", v.Shipments[0].ShipmentID)

	assert.Equal(t, Stats{Gets: 3, Hits: 2, Puts: 2, Entries: 1}, c.Stats())
}

func TestResultCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewResultCache(2)
	c.Put("a", output("a"))
	c.Put("b", output("b"))
	c.Get("a")
	c.Put("c", output("c"))

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Stats().Evictions)
}

func TestResultCache_Clear(t *testing.T) {
	c := NewResultCache(0)
	c.Put("a", output("a"))
	c.Clear()

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, Stats{Gets: 1}, c.Stats())
}

func TestRouteCache(t *testing.T) {
	c := NewRouteCache()
	k := RouteKey{Origin: "A", Destination: "C", Key: model.WeightCost}

	_, ok := c.Get(k)
	assert.False(t, ok)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Put(RouteKey{Origin: fmt.Sprint(i), Destination: "C", Key: model.WeightTime}, model.PathResult{})
		}(i)
	}
	wg.Wait()

	c.Put(k, model.PathResult{TotalWeight: 7, Path: []model.NodeID{"A", "C"}})
	v, ok := c.Get(k)
	require.True(t, ok)
	assert.Equal(t, 7.0, v.TotalWeight)
	assert.Equal(t, 9, c.Len())
}
