package algo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/atharv3903/freightpath/internal/model"
)

// DuplicatePolicy decides what happens when the edge list contains the same
// (from, to) pair more than once.
type DuplicatePolicy string

const (
	DuplicateLastWins DuplicatePolicy = "last-wins"
	DuplicateKeepMin  DuplicatePolicy = "keep-min"
	DuplicateReject   DuplicatePolicy = "reject"
)

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DuplicateLastWins, DuplicateKeepMin, DuplicateReject:
		return p, nil
	case "":
		return DuplicateLastWins, nil
	default:
		return "", fmt.Errorf("unknown duplicate edge policy %q", s)
	}
}

// Neighbor is one outgoing edge of a node.
type Neighbor struct {
	To      model.NodeID
	Weights model.Weights
}

type adjacency struct {
	out   []Neighbor
	index map[model.NodeID]int
}

// Graph is a directed adjacency structure. It is read-only once built and
// safe for concurrent readers.
type Graph struct {
	adj   map[model.NodeID]*adjacency
	edges int
}

func newGraph() *Graph {
	return &Graph{adj: make(map[model.NodeID]*adjacency)}
}

// Neighbors returns the outgoing edges of n in first-seen order.
func (g *Graph) Neighbors(n model.NodeID) []Neighbor {
	if a, ok := g.adj[n]; ok {
		return a.out
	}
	return nil
}

// Edge returns the weights of the directed edge from→to.
func (g *Graph) Edge(from, to model.NodeID) (model.Weights, bool) {
	a, ok := g.adj[from]
	if !ok {
		return model.Weights{}, false
	}
	i, ok := a.index[to]
	if !ok {
		return model.Weights{}, false
	}
	return a.out[i].Weights, true
}

func (g *Graph) HasNode(n model.NodeID) bool {
	_, ok := g.adj[n]
	return ok
}

// NodeCount counts nodes with at least one outgoing edge.
func (g *Graph) NodeCount() int { return len(g.adj) }

func (g *Graph) EdgeCount() int { return g.edges }

type buildConfig struct {
	policy DuplicatePolicy
}

type BuildOption func(*buildConfig)

func WithDuplicatePolicy(p DuplicatePolicy) BuildOption {
	return func(c *buildConfig) {
		if p != "" {
			c.policy = p
		}
	}
}

// BuildGraph turns a flat edge list into a Graph. It stops at the first
// malformed edge. A nil or empty list yields an empty graph.
func BuildGraph(edges []model.RawEdge, opts ...BuildOption) (*Graph, error) {
	cfg := buildConfig{policy: DuplicateLastWins}
	for _, opt := range opts {
		opt(&cfg)
	}

	g := newGraph()
	for i, e := range edges {
		w, err := coerceEdge(i, e)
		if err != nil {
			return nil, err
		}

		a, ok := g.adj[e.From]
		if !ok {
			a = &adjacency{index: make(map[model.NodeID]int)}
			g.adj[e.From] = a
		}

		j, dup := a.index[e.To]
		if !dup {
			a.index[e.To] = len(a.out)
			a.out = append(a.out, Neighbor{To: e.To, Weights: w})
			g.edges++
			continue
		}

		switch cfg.policy {
		case DuplicateReject:
			return nil, &DuplicateEdgeError{Index: i, From: e.From, To: e.To}
		case DuplicateKeepMin:
			if lighter(w, a.out[j].Weights) {
				a.out[j].Weights = w
			}
		default:
			a.out[j].Weights = w
		}
	}
	return g, nil
}

// lighter orders weights by time, then cost, then distance.
func lighter(a, b model.Weights) bool {
	if a.TimeHours != b.TimeHours {
		return a.TimeHours < b.TimeHours
	}
	if a.CostEUR != b.CostEUR {
		return a.CostEUR < b.CostEUR
	}
	return a.DistanceKm < b.DistanceKm
}

// ParseEdge validates a single edge the same way BuildGraph does.
func ParseEdge(e model.RawEdge) (model.Weights, error) {
	return coerceEdge(0, e)
}

func coerceEdge(i int, e model.RawEdge) (model.Weights, error) {
	if e.From == "" {
		return model.Weights{}, &MalformedEdgeError{Index: i, From: e.From, To: e.To, Field: "from", Value: e.From, Reason: "empty node id"}
	}
	if e.To == "" {
		return model.Weights{}, &MalformedEdgeError{Index: i, From: e.From, To: e.To, Field: "to", Value: e.To, Reason: "empty node id"}
	}

	var w model.Weights
	fields := []struct {
		name string
		raw  any
		dst  *float64
	}{
		{"distanceKm", e.DistanceKm, &w.DistanceKm},
		{"timeHours", e.TimeHours, &w.TimeHours},
		{"costEUR", e.CostEUR, &w.CostEUR},
	}
	for _, f := range fields {
		v, reason := toNumber(f.raw)
		if reason != "" {
			return model.Weights{}, &MalformedEdgeError{Index: i, From: e.From, To: e.To, Field: f.name, Value: f.raw, Reason: reason}
		}
		*f.dst = v
	}
	return w, nil
}

// toNumber accepts JSON numbers and numeric strings. A non-empty reason
// means the value is unusable as an edge weight.
func toNumber(raw any) (float64, string) {
	var v float64
	switch x := raw.(type) {
	case nil:
		return 0, "missing"
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case interface{ Float64() (float64, error) }:
		f, err := x.Float64()
		if err != nil {
			return 0, "not a number"
		}
		v = f
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, "empty string"
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, "not a number"
		}
		v = f
	default:
		return 0, fmt.Sprintf("unsupported type %T", raw)
	}

	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return 0, "not finite"
	case v < 0:
		return 0, "negative weight"
	}
	return v, ""
}
