package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "freightpath"

// Metrics holds the service collectors. All methods are no-ops on a nil
// receiver so the core can run without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ShipmentsRouted *prometheus.CounterVec
	SolveDuration   *prometheus.HistogramVec
	NodesExplored   prometheus.Histogram
	GraphEdges      prometheus.Histogram
	PlanFailures    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
	m.ShipmentsRouted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipments_routed_total",
			Help:      "Shipments processed, by weight key and outcome",
		},
		[]string{"weight_key", "outcome"},
	)
	m.SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Shortest path solve duration in seconds",
			Buckets:   []float64{.00001, .0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"weight_key"},
	)
	m.NodesExplored = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "solve_nodes_explored",
		Help:      "Nodes finalized per solve",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})
	m.GraphEdges = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "graph_edges",
		Help:      "Edges per built graph",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})
	m.PlanFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_failures_total",
			Help:      "Invocations aborted, by reason",
		},
		[]string{"reason"},
	)

	reg.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.ShipmentsRouted, m.SolveDuration, m.NodesExplored,
		m.GraphEdges, m.PlanFailures,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveShipment counts one processed shipment. A shipment without a
// multi-hop route counts as unreachable.
func (m *Metrics) ObserveShipment(key string, routed bool) {
	if m == nil {
		return
	}
	outcome := "routed"
	if !routed {
		outcome = "unreachable"
	}
	m.ShipmentsRouted.WithLabelValues(key, outcome).Inc()
}

// ObserveSolve records one shortest path search. Memoized answers are not
// searches and are not observed here.
func (m *Metrics) ObserveSolve(key string, explored int, d time.Duration) {
	if m == nil {
		return
	}
	m.SolveDuration.WithLabelValues(key).Observe(d.Seconds())
	m.NodesExplored.Observe(float64(explored))
}

func (m *Metrics) ObserveGraph(edges int) {
	if m == nil {
		return
	}
	m.GraphEdges.Observe(float64(edges))
}

func (m *Metrics) PlanFailed(reason string) {
	if m == nil {
		return
	}
	m.PlanFailures.WithLabelValues(reason).Inc()
}
