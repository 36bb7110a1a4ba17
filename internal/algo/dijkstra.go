package algo

import "github.com/atharv3903/freightpath/internal/model"

// trail is a node sequence shared between queue entries: every entry points
// at its parent instead of copying the whole prefix.
type trail struct {
	node   model.NodeID
	parent *trail
	depth  int
}

func (t *trail) extend(n model.NodeID) *trail {
	return &trail{node: n, parent: t, depth: t.depth + 1}
}

func (t *trail) nodes() []model.NodeID {
	out := make([]model.NodeID, t.depth)
	for cur := t; cur != nil; cur = cur.parent {
		out[cur.depth-1] = cur.node
	}
	return out
}

// Solve finds the minimum-weight path from origin to destination, ranking
// edges by key. Weights must be non-negative. Each queue entry carries the
// full path taken to reach it; the first pop of destination is minimal.
// An unreachable destination (including one missing from g) yields +Inf and
// an empty path.
func Solve(g *Graph, origin, destination model.NodeID, key model.WeightKey) model.PathResult {
	q := NewPriorityQueue[*trail](16)
	q.Push(0, &trail{node: origin, depth: 1})

	visited := make(map[model.NodeID]struct{})
	explored := 0

	for q.Len() > 0 {
		w, cur, _ := q.Pop()
		u := cur.node

		if u == destination {
			return model.PathResult{TotalWeight: w, Path: cur.nodes(), Explored: explored}
		}

		if _, done := visited[u]; done {
			continue
		}
		visited[u] = struct{}{}
		explored++

		for _, e := range g.Neighbors(u) {
			q.Push(w+key.Of(e.Weights), cur.extend(e.To))
		}
	}

	return model.Unreachable(explored)
}
