package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharv3903/freightpath/internal/algo"
	"github.com/atharv3903/freightpath/internal/logging"
	"github.com/atharv3903/freightpath/internal/metrics"
	"github.com/atharv3903/freightpath/internal/model"
)

func strp(s string) *string { return &s }

func triangleEdges() []model.RawEdge {
	return []model.RawEdge{
		{From: "A", To: "B", DistanceKm: 10.0, TimeHours: 1.0, CostEUR: 5.0},
		{From: "B", To: "C", DistanceKm: 10.0, TimeHours: 1.0, CostEUR: 5.0},
		{From: "A", To: "C", DistanceKm: 15.0, TimeHours: 2.0, CostEUR: 7.0},
	}
}

func newRouter(workers int) *Router {
	return NewRouter(workers, logging.Discard(), nil)
}

func route(t *testing.T, r *Router, edges []model.RawEdge, shipments ...model.Shipment) []model.RouteRecord {
	t.Helper()
	g, err := algo.BuildGraph(edges)
	require.NoError(t, err)
	out, err := r.Route(context.Background(), shipments, g)
	require.NoError(t, err)
	require.Len(t, out, len(shipments))
	return out
}

func TestRoute_CostOptimized(t *testing.T) {
	rec := route(t, newRouter(1), triangleEdges(), model.Shipment{
		ShipmentID: "S1", Origin: "A", Destination: "C", Priority: strp("low"),
		Batches: []any{map[string]any{"batchId": "B1"}},
	})[0]

	assert.Equal(t, []model.NodeID{"A", "C"}, rec.Route)
	assert.Equal(t, 15.0, rec.DistanceKm)
	assert.Equal(t, 2.0, rec.TimeHours)
	assert.Equal(t, 7.0, rec.CostEUR)
	assert.Equal(t, "low", *rec.Priority)
	assert.Equal(t, []model.SummaryEdge{{From: "A", To: "C", TimeHours: 2, CostEUR: 7}}, rec.LogisticsNetwork.Edges)
	assert.Equal(t, []any{map[string]any{"batchId": "B1"}}, rec.Batches)
}

func TestRoute_TimeOptimizedTieIsConsistent(t *testing.T) {
	for _, pr := range []string{"express", "HIGH"} {
		rec := route(t, newRouter(1), triangleEdges(), model.Shipment{
			ShipmentID: "S1", Origin: "A", Destination: "C", Priority: strp(pr),
		})[0]

		assert.Equal(t, 2.0, rec.TimeHours)
		switch len(rec.Route) {
		case 2:
			assert.Equal(t, 7.0, rec.CostEUR)
			assert.Equal(t, 15.0, rec.DistanceKm)
		case 3:
			assert.Equal(t, 10.0, rec.CostEUR)
			assert.Equal(t, 20.0, rec.DistanceKm)
		default:
			t.Fatalf("unexpected route %v", rec.Route)
		}
		assert.Equal(t, rec.CostEUR, rec.LogisticsNetwork.Edges[0].CostEUR)
	}
}

func TestRoute_TimeOptimizedPrefersFasterPath(t *testing.T) {
	edges := append(triangleEdges(), model.RawEdge{From: "C", To: "D", DistanceKm: 1.0, TimeHours: 0.5, CostEUR: 1.0})
	edges[2].TimeHours = 3.0

	rec := route(t, newRouter(1), edges, model.Shipment{
		ShipmentID: "S1", Origin: "A", Destination: "D", Priority: strp("express"),
	})[0]
	assert.Equal(t, []model.NodeID{"A", "B", "C", "D"}, rec.Route)
	assert.Equal(t, 2.5, rec.TimeHours)
	assert.Equal(t, 11.0, rec.CostEUR)
	assert.Equal(t, 21.0, rec.DistanceKm)
}

func TestRoute_MissingPriorityDefaultsToCost(t *testing.T) {
	rec := route(t, newRouter(1), triangleEdges(), model.Shipment{
		ShipmentID: "S1", Origin: "A", Destination: "C",
	})[0]
	assert.Equal(t, []model.NodeID{"A", "C"}, rec.Route)
	assert.Nil(t, rec.Priority)
	assert.NotNil(t, rec.Batches)
	assert.Empty(t, rec.Batches)
}

func TestRoute_UnknownOrigin(t *testing.T) {
	rec := route(t, newRouter(1), triangleEdges(), model.Shipment{
		ShipmentID: "S1", Origin: "X", Destination: "C",
	})[0]

	assert.NotNil(t, rec.Route)
	assert.Empty(t, rec.Route)
	assert.Zero(t, rec.DistanceKm)
	assert.Zero(t, rec.TimeHours)
	assert.Zero(t, rec.CostEUR)
	assert.NotNil(t, rec.LogisticsNetwork.Edges)
	assert.Empty(t, rec.LogisticsNetwork.Edges)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"route":[]`)
	assert.Contains(t, string(b), `"logisticsNetwork":{"edges":[]}`)
	assert.Contains(t, string(b), `"batches":[]`)
}

func TestRoute_SameOriginAndDestination(t *testing.T) {
	rec := route(t, newRouter(1), triangleEdges(), model.Shipment{
		ShipmentID: "S1", Origin: "B", Destination: "B",
	})[0]
	assert.Equal(t, []model.NodeID{"B"}, rec.Route)
	assert.Zero(t, rec.CostEUR)
	assert.Empty(t, rec.LogisticsNetwork.Edges)
}

func TestRoute_RoundsTotals(t *testing.T) {
	edges := []model.RawEdge{
		{From: "A", To: "B", DistanceKm: 0.14, TimeHours: 0.26, CostEUR: "1.01"},
		{From: "B", To: "C", DistanceKm: 0.14, TimeHours: 0.26, CostEUR: "1.01"},
	}
	rec := route(t, newRouter(1), edges, model.Shipment{ShipmentID: "S", Origin: "A", Destination: "C"})[0]
	assert.Equal(t, 0.3, rec.DistanceKm)
	assert.Equal(t, 0.5, rec.TimeHours)
	assert.Equal(t, 2.0, rec.CostEUR)
}

func manyShipments(n int) []model.Shipment {
	prios := []*string{nil, strp("express"), strp("medium"), strp("High")}
	nodes := []string{"A", "B", "C", "X"}
	out := make([]model.Shipment, n)
	for i := range out {
		out[i] = model.Shipment{
			ShipmentID:  fmt.Sprintf("S%03d", i),
			Origin:      nodes[i%len(nodes)],
			Destination: nodes[(i+2)%len(nodes)],
			Priority:    prios[i%len(prios)],
		}
	}
	return out
}

func TestRoute_ParallelPreservesOrder(t *testing.T) {
	shipments := manyShipments(64)
	seq := route(t, newRouter(1), triangleEdges(), shipments...)
	par := route(t, newRouter(8), triangleEdges(), shipments...)

	assert.Equal(t, seq, par)
	for i, rec := range par {
		assert.Equal(t, shipments[i].ShipmentID, rec.ShipmentID)
	}
}

func TestRoute_Idempotent(t *testing.T) {
	shipments := manyShipments(20)
	a, err := json.Marshal(route(t, newRouter(4), triangleEdges(), shipments...))
	require.NoError(t, err)
	b, err := json.Marshal(route(t, newRouter(4), triangleEdges(), shipments...))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRoute_RecordsDoNotShareRoutes(t *testing.T) {
	s := model.Shipment{ShipmentID: "S", Origin: "A", Destination: "C"}
	out := route(t, newRouter(1), triangleEdges(), s, s)
	out[0].Route[0] = "mutated"
	assert.Equal(t, "A", out[1].Route[0])
}

func TestRoute_Canceled(t *testing.T) {
	g, err := algo.BuildGraph(triangleEdges())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		_, err := newRouter(workers).Route(ctx, manyShipments(4), g)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestRoute_CountsEveryShipment(t *testing.T) {
	m := metrics.New()
	r := NewRouter(1, logging.Discard(), m)

	route(t, r, triangleEdges(),
		model.Shipment{ShipmentID: "S1", Origin: "A", Destination: "C"},
		model.Shipment{ShipmentID: "S2", Origin: "A", Destination: "C"},
		model.Shipment{ShipmentID: "S3", Origin: "A", Destination: "C"},
		model.Shipment{ShipmentID: "S4", Origin: "B", Destination: "B"},
	)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.ShipmentsRouted.WithLabelValues("costEUR", "routed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ShipmentsRouted.WithLabelValues("costEUR", "unreachable")))
	// the repeated A->C shipments are answered from the memo
	assert.Equal(t, uint64(2), solveCount(t, m))
}

func solveCount(t *testing.T, m *metrics.Metrics) uint64 {
	t.Helper()
	mfs, err := m.Registry().Gather()
	require.NoError(t, err)
	var n uint64
	for _, mf := range mfs {
		if mf.GetName() != "freightpath_solve_duration_seconds" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			n += metric.GetHistogram().GetSampleCount()
		}
	}
	return n
}
