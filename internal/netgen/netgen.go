// Package netgen generates synthetic logistics networks and shipment
// backlogs for seeding and load testing.
package netgen

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/samber/lo"

	"github.com/atharv3903/freightpath/internal/algo"
	"github.com/atharv3903/freightpath/internal/model"
)

type Options struct {
	Hubs   int   // number of locations
	Degree int   // outgoing edges per hub
	Seed   int64 // same seed, same network
}

var priorities = []string{"low", "medium", "high", "express"}

func HubName(i int) string { return fmt.Sprintf("HUB-%04d", i) }

// Network returns a directed network where every hub links to its ring
// successor, so every hub reaches every other, plus Degree-1 random
// shortcuts. Weights are derived from a random distance with per-edge speed
// and rate.
func Network(o Options) []model.RawEdge {
	if o.Hubs < 2 {
		return []model.RawEdge{}
	}
	degree := min(max(o.Degree, 1), o.Hubs-1)
	rng := rand.New(rand.NewSource(o.Seed))

	edges := make([]model.RawEdge, 0, o.Hubs*degree)
	for i := 0; i < o.Hubs; i++ {
		targets := map[int]bool{(i + 1) % o.Hubs: true}
		for len(targets) < degree {
			if j := rng.Intn(o.Hubs); j != i {
				targets[j] = true
			}
		}
		keys := lo.Keys(targets)
		slices.Sort(keys)
		for _, j := range keys {
			edges = append(edges, weighted(rng, HubName(i), HubName(j)))
		}
	}
	return edges
}

func weighted(rng *rand.Rand, from, to string) model.RawEdge {
	dist := 20 + rng.Float64()*780
	speed := 60 + rng.Float64()*30
	rate := 0.8 + rng.Float64()*0.8
	return model.RawEdge{
		From:       from,
		To:         to,
		DistanceKm: algo.Round1(dist),
		TimeHours:  algo.Round1(dist/speed + 0.5),
		CostEUR:    algo.Round1(dist * rate),
	}
}

// Nodes lists every endpoint mentioned by edges, in first-seen order.
func Nodes(edges []model.RawEdge) []string {
	return lo.Uniq(lo.FlatMap(edges, func(e model.RawEdge, _ int) []string {
		return []string{e.From, e.To}
	}))
}

// Shipments draws n shipments between random nodes.
func Shipments(nodes []string, n int, seed int64) []model.Shipment {
	if len(nodes) == 0 {
		return []model.Shipment{}
	}
	rng := rand.New(rand.NewSource(seed))
	return lo.Times(n, func(i int) model.Shipment {
		p := priorities[rng.Intn(len(priorities))]
		return model.Shipment{
			ShipmentID:  fmt.Sprintf("SHP-%06d", i),
			Origin:      nodes[rng.Intn(len(nodes))],
			Destination: nodes[rng.Intn(len(nodes))],
			Priority:    &p,
			Batches: []any{map[string]any{
				"batchId":  fmt.Sprintf("BAT-%06d", i),
				"pallets":  1 + rng.Intn(12),
				"weightKg": algo.Round1(100 + rng.Float64()*900),
			}},
		}
	})
}
