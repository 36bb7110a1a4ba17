package model

import "math"

type NodeID = string

// RawEdge is an edge as it arrives from the data source. Weight fields stay
// untyped until the graph builder coerces them.
type RawEdge struct {
	From       NodeID `json:"from"`
	To         NodeID `json:"to"`
	DistanceKm any    `json:"distanceKm"`
	TimeHours  any    `json:"timeHours"`
	CostEUR    any    `json:"costEUR"`
}

type Weights struct {
	DistanceKm float64
	TimeHours  float64
	CostEUR    float64
}

type Shipment struct {
	ShipmentID  string  `json:"shipmentId"`
	Origin      NodeID  `json:"origin"`
	Destination NodeID  `json:"destination"`
	Priority    *string `json:"priority"`
	Batches     []any   `json:"batches"`
}

// PathResult is the outcome of one solve. TotalWeight is +Inf and Path is
// empty when the destination cannot be reached.
type PathResult struct {
	TotalWeight float64
	Path        []NodeID
	Explored    int
}

func Unreachable(explored int) PathResult {
	return PathResult{TotalWeight: math.Inf(1), Path: []NodeID{}, Explored: explored}
}

func (r PathResult) Reachable() bool { return !math.IsInf(r.TotalWeight, 1) }

type Totals struct {
	DistanceKm float64
	TimeHours  float64
	CostEUR    float64
}

type SummaryEdge struct {
	From      NodeID  `json:"from"`
	To        NodeID  `json:"to"`
	TimeHours float64 `json:"timeHours"`
	CostEUR   float64 `json:"costEUR"`
}

type LogisticsNetwork struct {
	Edges []SummaryEdge `json:"edges"`
}

type RouteRecord struct {
	ShipmentID       string           `json:"shipmentId"`
	Origin           NodeID           `json:"origin"`
	Destination      NodeID           `json:"destination"`
	Route            []NodeID         `json:"route"`
	DistanceKm       float64          `json:"distanceKm"`
	TimeHours        float64          `json:"timeHours"`
	CostEUR          float64          `json:"costEUR"`
	Priority         *string          `json:"priority"`
	LogisticsNetwork LogisticsNetwork `json:"logisticsNetwork"`
	Batches          []any            `json:"batches"`
}

// Input is one invocation's worth of data.
type Input struct {
	Shipments []Shipment `json:"shipments"`
	Edges     []RawEdge  `json:"edges"`
}

type Output struct {
	Shipments []RouteRecord `json:"shipments"`
}
