package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/atharv3903/freightpath/internal/algo"
	"github.com/atharv3903/freightpath/internal/metrics"
	"github.com/atharv3903/freightpath/internal/model"
)

// Planner runs one invocation: build the graph from the input edges, route
// every shipment, then drop the graph.
type Planner struct {
	Router  *Router
	Policy  algo.DuplicatePolicy
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func NewPlanner(router *Router, policy algo.DuplicatePolicy, logger *slog.Logger, m *metrics.Metrics) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{Router: router, Policy: policy, Logger: logger, Metrics: m}
}

func (p *Planner) Plan(ctx context.Context, in model.Input) (model.Output, error) {
	start := time.Now()

	g, err := algo.BuildGraph(in.Edges, algo.WithDuplicatePolicy(p.Policy))
	if err != nil {
		p.Metrics.PlanFailed(failureReason(err))
		return model.Output{}, fmt.Errorf("build graph: %w", err)
	}
	p.Metrics.ObserveGraph(g.EdgeCount())

	records, err := p.Router.Route(ctx, in.Shipments, g)
	if err != nil {
		p.Metrics.PlanFailed(failureReason(err))
		return model.Output{}, fmt.Errorf("route shipments: %w", err)
	}

	unreachable := lo.CountBy(records, func(r model.RouteRecord) bool { return len(r.Route) < 2 })
	p.Logger.Info("planned shipments",
		"shipments", len(records),
		"withoutRoute", unreachable,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"elapsed", time.Since(start))

	return model.Output{Shipments: records}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, algo.ErrMalformedEdge):
		return "malformed_edge"
	case errors.Is(err, algo.ErrDuplicateEdge):
		return "duplicate_edge"
	case errors.Is(err, algo.ErrInconsistentPath):
		return "inconsistent_path"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
