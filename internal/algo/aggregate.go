package algo

import (
	"math"

	"github.com/atharv3903/freightpath/internal/model"
)

// Aggregate sums distance, time and cost over consecutive pairs of path,
// regardless of which key produced it. A path shorter than two nodes sums
// to zero.
func Aggregate(g *Graph, path []model.NodeID) (model.Totals, error) {
	var t model.Totals
	for i := 0; i+1 < len(path); i++ {
		w, ok := g.Edge(path[i], path[i+1])
		if !ok {
			return model.Totals{}, &InconsistentPathError{From: path[i], To: path[i+1]}
		}
		t.DistanceKm += w.DistanceKm
		t.TimeHours += w.TimeHours
		t.CostEUR += w.CostEUR
	}
	return t, nil
}

// Round1 rounds to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundTotals applies Round1 to every attribute.
func RoundTotals(t model.Totals) model.Totals {
	return model.Totals{
		DistanceKm: Round1(t.DistanceKm),
		TimeHours:  Round1(t.TimeHours),
		CostEUR:    Round1(t.CostEUR),
	}
}
