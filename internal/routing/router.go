package routing

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/atharv3903/freightpath/internal/algo"
	"github.com/atharv3903/freightpath/internal/cache"
	"github.com/atharv3903/freightpath/internal/metrics"
	"github.com/atharv3903/freightpath/internal/model"
)

// Router turns shipments into route records against one built graph.
type Router struct {
	// Workers bounds how many shipments are solved at once. Values below 2
	// process shipments sequentially.
	Workers int
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func NewRouter(workers int, logger *slog.Logger, m *metrics.Metrics) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{Workers: workers, Logger: logger, Metrics: m}
}

// Route processes every shipment independently. Output order matches input
// order. An unreachable destination yields a record with an empty route and
// zero totals; only internal inconsistencies and cancellation abort.
func (r *Router) Route(ctx context.Context, shipments []model.Shipment, g *algo.Graph) ([]model.RouteRecord, error) {
	out := make([]model.RouteRecord, len(shipments))
	memo := cache.NewRouteCache()

	if r.Workers < 2 {
		for i, s := range shipments {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rec, err := r.routeOne(s, g, memo)
			if err != nil {
				return nil, err
			}
			out[i] = rec
		}
		return out, nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.Workers)
	for i, s := range shipments {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := r.routeOne(s, g, memo)
			if err != nil {
				return err
			}
			out[i] = rec
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Router) routeOne(s model.Shipment, g *algo.Graph, memo *cache.RouteCache) (model.RouteRecord, error) {
	key := model.KeyForPriority(model.NormalizePriority(s.Priority))

	mk := cache.RouteKey{Origin: s.Origin, Destination: s.Destination, Key: key}
	res, hit := memo.Get(mk)
	if !hit {
		start := time.Now()
		res = algo.Solve(g, s.Origin, s.Destination, key)
		r.Metrics.ObserveSolve(string(key), res.Explored, time.Since(start))
		memo.Put(mk, res)
	}
	r.Metrics.ObserveShipment(string(key), len(res.Path) >= 2)

	rec := model.RouteRecord{
		ShipmentID:       s.ShipmentID,
		Origin:           s.Origin,
		Destination:      s.Destination,
		Route:            slices.Clone(res.Path),
		Priority:         s.Priority,
		LogisticsNetwork: model.LogisticsNetwork{Edges: []model.SummaryEdge{}},
		Batches:          lo.Ternary(s.Batches != nil, s.Batches, []any{}),
	}
	if rec.Route == nil {
		rec.Route = []model.NodeID{}
	}

	if len(res.Path) < 2 {
		r.Logger.Debug("no multi-hop route",
			"shipment", s.ShipmentID, "origin", s.Origin, "destination", s.Destination,
			"weightKey", key, "explored", res.Explored)
		return rec, nil
	}

	totals, err := algo.Aggregate(g, res.Path)
	if err != nil {
		return model.RouteRecord{}, fmt.Errorf("shipment %s: %w", s.ShipmentID, err)
	}
	totals = algo.RoundTotals(totals)

	rec.DistanceKm = totals.DistanceKm
	rec.TimeHours = totals.TimeHours
	rec.CostEUR = totals.CostEUR
	rec.LogisticsNetwork.Edges = []model.SummaryEdge{{
		From:      s.Origin,
		To:        s.Destination,
		TimeHours: totals.TimeHours,
		CostEUR:   totals.CostEUR,
	}}

	r.Logger.Debug("routed shipment",
		"shipment", s.ShipmentID, "weightKey", key, "hops", len(res.Path)-1,
		"weight", res.TotalWeight, "memoized", hit)
	return rec, nil
}
