package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultFound      = "found"
	ResultNoRoute    = "no_route"
	ResultTimedOut   = "timed_out"
	ResultInvalid    = "invalid"
	ResultBadRequest = "bad_request"
)

var (
	RouteRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "navroute_route_requests_total",
		Help: "Route requests by result",
	}, []string{"result"})

	SearchIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "navroute_search_iterations",
		Help:    "Priority queue pops per route search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})

	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "navroute_search_duration_ms",
		Help:    "Route search duration in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 16), // 10us to ~330ms
	})

	EdgeAdjustments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "navroute_edge_adjustments_total",
		Help: "Edge closure and cost adjustment requests applied",
	})

	CostmapUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "navroute_costmap_updates_total",
		Help: "Costmap snapshots published by topic",
	}, []string{"topic"})
)
