package model

import "strings"

// WeightKey names the edge attribute a search minimises.
type WeightKey string

const (
	WeightTime WeightKey = "timeHours"
	WeightCost WeightKey = "costEUR"
)

const DefaultPriority = "low"

// Of returns the attribute of w selected by k. Unknown keys select cost.
func (k WeightKey) Of(w Weights) float64 {
	if k == WeightTime {
		return w.TimeHours
	}
	return w.CostEUR
}

// NormalizePriority lowercases p, defaulting to "low" when absent.
func NormalizePriority(p *string) string {
	if p == nil {
		return DefaultPriority
	}
	return strings.ToLower(*p)
}

// KeyForPriority maps a normalized priority onto the search criterion:
// express and high shipments optimise time, everything else cost.
func KeyForPriority(normalized string) WeightKey {
	switch normalized {
	case "express", "high":
		return WeightTime
	default:
		return WeightCost
	}
}
